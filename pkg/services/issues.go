package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/policy"
	"github.com/softdesk/softdesk-api/pkg/repositories"
)

// CreateIssueRequest is the payload for creating an issue or fully replacing
// one. Project is required on create and immutable afterwards: a replace
// payload may omit it (the current project is filled in) but may not change
// it.
type CreateIssueRequest struct {
	Project     uuid.UUID   `json:"project"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Priority    string      `json:"priority"`
	Status      string      `json:"status"`
	Assignees   []uuid.UUID `json:"assignees"`
}

// PatchIssueRequest is the payload for a partial issue update. Nil fields
// are left unchanged.
type PatchIssueRequest struct {
	Project     *uuid.UUID   `json:"project"`
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Type        *string      `json:"type"`
	Priority    *string      `json:"priority"`
	Status      *string      `json:"status"`
	Assignees   *[]uuid.UUID `json:"assignees"`
}

// providedFields lists the JSON names of the fields present in the payload,
// in a fixed order. The assignee permission rule counts fields, so this is
// the canonical notion of what an update "touches".
func (r *PatchIssueRequest) providedFields() []string {
	var fields []string
	if r.Project != nil {
		fields = append(fields, "project")
	}
	if r.Name != nil {
		fields = append(fields, "name")
	}
	if r.Description != nil {
		fields = append(fields, "description")
	}
	if r.Type != nil {
		fields = append(fields, "type")
	}
	if r.Priority != nil {
		fields = append(fields, "priority")
	}
	if r.Status != nil {
		fields = append(fields, "status")
	}
	if r.Assignees != nil {
		fields = append(fields, "assignees")
	}
	return fields
}

// IssueService defines the interface for issue operations.
type IssueService interface {
	// Create files an issue in a project the actor contributes to.
	Create(ctx context.Context, actor *models.User, req *CreateIssueRequest) (*models.Issue, error)
	// List returns the issues visible to the actor.
	List(ctx context.Context, actor *models.User) ([]*models.Issue, error)
	// Get returns one issue within the actor's visibility scope.
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Issue, error)
	// Replace fully updates an issue. Author or elevated only.
	Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateIssueRequest) (*models.Issue, error)
	// Patch partially updates an issue. Author or elevated, or an assignee
	// restricted to the status field.
	Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchIssueRequest) (*models.Issue, error)
	// Delete removes an issue and its comments. Author or elevated only.
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

// issueService implements IssueService.
type issueService struct {
	issues   repositories.IssueRepository
	projects repositories.ProjectRepository
}

// NewIssueService creates a new issue service.
func NewIssueService(issues repositories.IssueRepository, projects repositories.ProjectRepository) IssueService {
	return &issueService{issues: issues, projects: projects}
}

// Create validates the payload and files the issue with the actor as author.
// Only contributors of the target project may file issues there, elevated or
// not.
func (s *issueService) Create(ctx context.Context, actor *models.User, req *CreateIssueRequest) (*models.Issue, error) {
	if req.Project == uuid.Nil {
		return nil, apperrors.NewValidation("project", "project is required")
	}

	project, err := s.projects.Get(ctx, req.Project)
	if err != nil {
		return nil, err
	}
	if !project.HasContributor(actor.ID) {
		return nil, apperrors.ErrForbidden
	}

	if err := validateIssueFields(req.Name, req.Type, req.Priority, req.Status); err != nil {
		return nil, err
	}
	taken, err := s.issues.NameTakenInProject(ctx, project.ID, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation("name", "issue name already exists in this project")
	}
	if err := checkAssignees(project, req.Assignees); err != nil {
		return nil, err
	}

	authorID := actor.ID
	issue := &models.Issue{
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      req.Status,
		AuthorID:    &authorID,
	}

	if err := s.issues.Create(ctx, issue, req.Assignees); err != nil {
		return nil, err
	}
	return issue, nil
}

// List returns the issues visible to the actor.
func (s *issueService) List(ctx context.Context, actor *models.User) ([]*models.Issue, error) {
	return s.issues.ListFor(ctx, actor)
}

// Get returns one issue within the actor's visibility scope.
func (s *issueService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Issue, error) {
	return s.issues.GetFor(ctx, actor, id)
}

// Replace fully updates an issue. The owning project cannot change.
func (s *issueService) Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateIssueRequest) (*models.Issue, error) {
	issue, err := s.issues.GetFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, issue.AuthorID) {
		return nil, apperrors.ErrForbidden
	}

	// An omitted project is filled from the instance so the immutability
	// check does not fail on absence.
	if req.Project != uuid.Nil && req.Project != issue.ProjectID {
		return nil, apperrors.NewValidation("project", "the project of an issue cannot be changed")
	}

	if err := validateIssueFields(req.Name, req.Type, req.Priority, req.Status); err != nil {
		return nil, err
	}
	taken, err := s.issues.NameTakenInProject(ctx, issue.ProjectID, req.Name, issue.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidation("name", "issue name already exists in this project")
	}

	project, err := s.projects.Get(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := checkAssignees(project, req.Assignees); err != nil {
		return nil, err
	}

	issue.Name = req.Name
	issue.Description = req.Description
	issue.Type = req.Type
	issue.Priority = req.Priority
	issue.Status = req.Status

	if err := s.issues.Update(ctx, issue, true, req.Assignees); err != nil {
		return nil, err
	}
	return s.issues.GetFor(ctx, actor, id)
}

// Patch partially updates an issue. An assignee who is not the author may
// only touch the status field; anything else is forbidden before the payload
// is even validated.
func (s *issueService) Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchIssueRequest) (*models.Issue, error) {
	issue, err := s.issues.GetFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	isAuthor := issue.AuthorID != nil && *issue.AuthorID == actor.ID
	switch {
	case actor.Elevated() || isAuthor:
		// full update rights
	case issue.HasAssignee(actor.ID):
		if !policy.AssigneeMayPatch(req.providedFields()) {
			return nil, apperrors.ErrForbidden
		}
	default:
		return nil, apperrors.ErrForbidden
	}

	if req.Project != nil && *req.Project != issue.ProjectID {
		return nil, apperrors.NewValidation("project", "the project of an issue cannot be changed")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewValidation("name", "name is required")
		}
		taken, err := s.issues.NameTakenInProject(ctx, issue.ProjectID, *req.Name, issue.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewValidation("name", "issue name already exists in this project")
		}
		issue.Name = *req.Name
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Type != nil {
		if !models.IsValidIssueType(*req.Type) {
			return nil, apperrors.NewValidation("type", "valid issue types are: 'bug', 'feature', 'task'")
		}
		issue.Type = *req.Type
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			return nil, apperrors.NewValidation("priority", "valid priorities are: 'low', 'medium', 'high'")
		}
		issue.Priority = *req.Priority
	}
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			return nil, apperrors.NewValidation("status", "valid statuses are: 'todo', 'in_progress', 'finished'")
		}
		issue.Status = *req.Status
	}

	replaceAssignees := false
	var assigneeIDs []uuid.UUID
	if req.Assignees != nil {
		project, err := s.projects.Get(ctx, issue.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := checkAssignees(project, *req.Assignees); err != nil {
			return nil, err
		}
		replaceAssignees = true
		assigneeIDs = *req.Assignees
	}

	if err := s.issues.Update(ctx, issue, replaceAssignees, assigneeIDs); err != nil {
		return nil, err
	}
	return s.issues.GetFor(ctx, actor, id)
}

// Delete removes an issue and its comments.
func (s *issueService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	issue, err := s.issues.GetFor(ctx, actor, id)
	if err != nil {
		return err
	}
	if !policy.CanMutate(actor, issue.AuthorID) {
		return apperrors.ErrForbidden
	}
	return s.issues.Delete(ctx, issue.ID)
}

// checkAssignees rejects assignees who are not current contributors of the
// owning project.
func checkAssignees(project *models.Project, assignees []uuid.UUID) error {
	for _, id := range assignees {
		if !project.HasContributor(id) {
			return apperrors.NewValidation("assignees", "user %s is not a contributor of this project", id)
		}
	}
	return nil
}

func validateIssueFields(name, issueType, priority, status string) error {
	if name == "" {
		return apperrors.NewValidation("name", "name is required")
	}
	if !models.IsValidIssueType(issueType) {
		return apperrors.NewValidation("type", "valid issue types are: 'bug', 'feature', 'task'")
	}
	if !models.IsValidPriority(priority) {
		return apperrors.NewValidation("priority", "valid priorities are: 'low', 'medium', 'high'")
	}
	if !models.IsValidStatus(status) {
		return apperrors.NewValidation("status", "valid statuses are: 'todo', 'in_progress', 'finished'")
	}
	return nil
}

// Ensure issueService implements IssueService at compile time.
var _ IssueService = (*issueService)(nil)
