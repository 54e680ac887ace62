package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/policy"
	"github.com/softdesk/softdesk-api/pkg/repositories"
)

// CreateCommentRequest is the payload for creating a comment or fully
// replacing one. Issue is required on create and immutable afterwards.
type CreateCommentRequest struct {
	Issue       uuid.UUID `json:"issue"`
	Description string    `json:"description"`
}

// PatchCommentRequest is the payload for a partial comment update.
type PatchCommentRequest struct {
	Issue       *uuid.UUID `json:"issue"`
	Description *string    `json:"description"`
}

// CommentService defines the interface for comment operations.
type CommentService interface {
	// Create adds a comment to an issue of a project the actor contributes
	// to.
	Create(ctx context.Context, actor *models.User, req *CreateCommentRequest) (*models.Comment, error)
	// List returns the comments visible to the actor.
	List(ctx context.Context, actor *models.User) ([]*models.Comment, error)
	// Get returns one comment within the actor's visibility scope.
	Get(ctx context.Context, actor *models.User, uid uuid.UUID) (*models.Comment, error)
	// Replace fully updates a comment. Author or elevated only.
	Replace(ctx context.Context, actor *models.User, uid uuid.UUID, req *CreateCommentRequest) (*models.Comment, error)
	// Patch partially updates a comment. Author or elevated only.
	Patch(ctx context.Context, actor *models.User, uid uuid.UUID, req *PatchCommentRequest) (*models.Comment, error)
	// Delete removes a comment. Author or elevated only.
	Delete(ctx context.Context, actor *models.User, uid uuid.UUID) error
}

// commentService implements CommentService.
type commentService struct {
	comments repositories.CommentRepository
	issues   repositories.IssueRepository
	projects repositories.ProjectRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repositories.CommentRepository, issues repositories.IssueRepository, projects repositories.ProjectRepository) CommentService {
	return &commentService{comments: comments, issues: issues, projects: projects}
}

// Create validates the payload and adds the comment with the actor as
// author. Only contributors of the issue's project may comment.
func (s *commentService) Create(ctx context.Context, actor *models.User, req *CreateCommentRequest) (*models.Comment, error) {
	if req.Issue == uuid.Nil {
		return nil, apperrors.NewValidation("issue", "issue is required")
	}

	issue, err := s.issues.Get(ctx, req.Issue)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Get(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.HasContributor(actor.ID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Description == "" {
		return nil, apperrors.NewValidation("description", "description is required")
	}

	authorID := actor.ID
	comment := &models.Comment{
		IssueID:     issue.ID,
		Description: req.Description,
		AuthorID:    &authorID,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the comments visible to the actor.
func (s *commentService) List(ctx context.Context, actor *models.User) ([]*models.Comment, error) {
	return s.comments.ListFor(ctx, actor)
}

// Get returns one comment within the actor's visibility scope.
func (s *commentService) Get(ctx context.Context, actor *models.User, uid uuid.UUID) (*models.Comment, error) {
	return s.comments.GetFor(ctx, actor, uid)
}

// Replace fully updates a comment. The owning issue cannot change.
func (s *commentService) Replace(ctx context.Context, actor *models.User, uid uuid.UUID, req *CreateCommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetFor(ctx, actor, uid)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, comment.AuthorID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Issue != uuid.Nil && req.Issue != comment.IssueID {
		return nil, apperrors.NewValidation("issue", "the issue of a comment cannot be changed")
	}
	if req.Description == "" {
		return nil, apperrors.NewValidation("description", "description is required")
	}

	comment.Description = req.Description
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Patch partially updates a comment.
func (s *commentService) Patch(ctx context.Context, actor *models.User, uid uuid.UUID, req *PatchCommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetFor(ctx, actor, uid)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, comment.AuthorID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Issue != nil && *req.Issue != comment.IssueID {
		return nil, apperrors.NewValidation("issue", "the issue of a comment cannot be changed")
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, apperrors.NewValidation("description", "description is required")
		}
		comment.Description = *req.Description
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment.
func (s *commentService) Delete(ctx context.Context, actor *models.User, uid uuid.UUID) error {
	comment, err := s.comments.GetFor(ctx, actor, uid)
	if err != nil {
		return err
	}
	if !policy.CanMutate(actor, comment.AuthorID) {
		return apperrors.ErrForbidden
	}
	return s.comments.Delete(ctx, comment.UID)
}

// Ensure commentService implements CommentService at compile time.
var _ CommentService = (*commentService)(nil)
