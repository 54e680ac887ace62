package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/policy"
	"github.com/softdesk/softdesk-api/pkg/repositories"
)

// CreateProjectRequest is the payload for creating a project or fully
// replacing one. On replace the contributor set is rebuilt from Contributors
// with the author always re-added.
type CreateProjectRequest struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Type         string      `json:"type"`
	Contributors []uuid.UUID `json:"contributors"`
}

// PatchProjectRequest is the payload for a partial project update. A
// contributor list, when present, is added to the existing set.
type PatchProjectRequest struct {
	Name         *string      `json:"name"`
	Description  *string      `json:"description"`
	Type         *string      `json:"type"`
	Contributors *[]uuid.UUID `json:"contributors"`
}

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// Create makes the actor author and contributor of a new project.
	Create(ctx context.Context, actor *models.User, req *CreateProjectRequest) (*models.Project, error)
	// List returns the projects visible to the actor.
	List(ctx context.Context, actor *models.User) ([]*models.Project, error)
	// Get returns one project within the actor's visibility scope.
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error)
	// Replace fully updates a project. Author or elevated only.
	Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateProjectRequest) (*models.Project, error)
	// Patch partially updates a project. Author or elevated only.
	Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchProjectRequest) (*models.Project, error)
	// Delete removes a project and everything it owns. Author or elevated
	// only.
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

// projectService implements ProjectService.
type projectService struct {
	projects repositories.ProjectRepository
	users    repositories.UserRepository
}

// NewProjectService creates a new project service.
func NewProjectService(projects repositories.ProjectRepository, users repositories.UserRepository) ProjectService {
	return &projectService{projects: projects, users: users}
}

// Create validates the payload and inserts the project with the actor as
// author and first contributor.
func (s *projectService) Create(ctx context.Context, actor *models.User, req *CreateProjectRequest) (*models.Project, error) {
	if err := validateProjectFields(req.Name, req.Type); err != nil {
		return nil, err
	}
	taken, err := s.projects.NameTaken(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation("name", "project name already exists")
	}
	if err := s.checkContributorsExist(ctx, req.Contributors); err != nil {
		return nil, err
	}

	authorID := actor.ID
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		AuthorID:    &authorID,
	}

	contributorIDs := append([]uuid.UUID{actor.ID}, req.Contributors...)
	if err := s.projects.Create(ctx, project, contributorIDs); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns the projects visible to the actor.
func (s *projectService) List(ctx context.Context, actor *models.User) ([]*models.Project, error) {
	return s.projects.ListFor(ctx, actor)
}

// Get returns one project within the actor's visibility scope.
func (s *projectService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	return s.projects.GetFor(ctx, actor, id)
}

// Replace fully updates a project. The contributor set is rebuilt from the
// payload; the author is always re-added even when the payload omits them.
func (s *projectService) Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	project, err := s.projects.GetFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, project.AuthorID) {
		return nil, apperrors.ErrForbidden
	}

	if err := validateProjectFields(req.Name, req.Type); err != nil {
		return nil, err
	}
	taken, err := s.projects.NameTaken(ctx, req.Name, project.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation("name", "project name already exists")
	}
	if err := s.checkContributorsExist(ctx, req.Contributors); err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.Description = req.Description
	project.Type = req.Type

	contributorIDs := req.Contributors
	if project.AuthorID != nil {
		contributorIDs = append([]uuid.UUID{*project.AuthorID}, contributorIDs...)
	}
	if err := s.projects.Update(ctx, project, repositories.ContributorsReplace, contributorIDs); err != nil {
		return nil, err
	}
	return s.projects.GetFor(ctx, actor, id)
}

// Patch partially updates a project. A contributor list is strictly
// additive.
func (s *projectService) Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchProjectRequest) (*models.Project, error) {
	project, err := s.projects.GetFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, project.AuthorID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewValidation("name", "name is required")
		}
		taken, err := s.projects.NameTaken(ctx, *req.Name, project.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewValidation("name", "project name already exists")
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Type != nil {
		if !models.IsValidProjectType(*req.Type) {
			return nil, apperrors.NewValidation("type", "valid project types are: 'backend', 'frontend', 'ios', 'android'")
		}
		project.Type = *req.Type
	}

	mode := repositories.ContributorsUnchanged
	var contributorIDs []uuid.UUID
	if req.Contributors != nil {
		if err := s.checkContributorsExist(ctx, *req.Contributors); err != nil {
			return nil, err
		}
		mode = repositories.ContributorsMerge
		contributorIDs = *req.Contributors
	}

	if err := s.projects.Update(ctx, project, mode, contributorIDs); err != nil {
		return nil, err
	}
	return s.projects.GetFor(ctx, actor, id)
}

// Delete removes a project, its issues and their comments.
func (s *projectService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	project, err := s.projects.GetFor(ctx, actor, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(actor, project.AuthorID) {
		return apperrors.ErrForbidden
	}
	return s.projects.Delete(ctx, project.ID)
}

// checkContributorsExist rejects contributor ids that do not belong to
// active accounts.
func (s *projectService) checkContributorsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	active, err := s.users.ActiveIDs(ctx, ids)
	if err != nil {
		return err
	}
	activeSet := make(map[uuid.UUID]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}
	for _, id := range ids {
		if !activeSet[id] {
			return apperrors.NewValidation("contributors", "user %s does not exist or is inactive", id)
		}
	}
	return nil
}

func validateProjectFields(name, projectType string) error {
	if name == "" {
		return apperrors.NewValidation("name", "name is required")
	}
	if !models.IsValidProjectType(projectType) {
		return apperrors.NewValidation("type", "valid project types are: 'backend', 'frontend', 'ios', 'android'")
	}
	return nil
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
