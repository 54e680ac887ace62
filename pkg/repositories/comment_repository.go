package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/database"
	"github.com/softdesk/softdesk-api/pkg/models"
)

// CommentRepository defines the interface for comment data access. Comments
// are addressed everywhere by their exposed uid, never by the internal row
// key.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetFor retrieves a comment visible to the viewer.
	GetFor(ctx context.Context, viewer *models.User, uid uuid.UUID) (*models.Comment, error)
	// ListFor retrieves all comments visible to the viewer.
	ListFor(ctx context.Context, viewer *models.User) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, uid uuid.UUID) error
}

// commentRepository implements CommentRepository using PostgreSQL.
type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. The exposed uid is generated here and never
// changes afterwards.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.UID == uuid.Nil {
		comment.UID = uuid.New()
	}
	comment.CreatedAt = time.Now()

	query := `
		INSERT INTO comments (uid, issue_id, description, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		comment.UID,
		comment.IssueID,
		comment.Description,
		comment.AuthorID,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

const commentSelect = `
	SELECT cm.uid, cm.issue_id, cm.description, cm.author_id, cm.created_at
	FROM comments cm`

// GetFor retrieves a comment by uid within the viewer's scope: elevated
// viewers see everything, others only comments they authored or comments on
// issues of projects they contribute to.
func (r *commentRepository) GetFor(ctx context.Context, viewer *models.User, uid uuid.UUID) (*models.Comment, error) {
	query := commentSelect + `
		WHERE cm.uid = $1 AND ($2 OR cm.author_id = $3 OR EXISTS (
			SELECT 1 FROM issues i
			JOIN contributors c ON c.project_id = i.project_id
			WHERE i.id = cm.issue_id AND c.user_id = $3))`

	var comment models.Comment
	err := r.db.QueryRow(ctx, query, uid, viewer.Elevated(), viewer.ID).Scan(
		&comment.UID,
		&comment.IssueID,
		&comment.Description,
		&comment.AuthorID,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// ListFor retrieves all comments within the viewer's scope.
func (r *commentRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Comment, error) {
	query := commentSelect + `
		WHERE $1 OR cm.author_id = $2 OR EXISTS (
			SELECT 1 FROM issues i
			JOIN contributors c ON c.project_id = i.project_id
			WHERE i.id = cm.issue_id AND c.user_id = $2)
		ORDER BY cm.created_at, cm.id`

	rows, err := r.db.Query(ctx, query, viewer.Elevated(), viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.UID,
			&comment.IssueID,
			&comment.Description,
			&comment.AuthorID,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// Update persists the comment description. The owning issue is immutable, so
// issue_id is never in the SET list.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := `UPDATE comments SET description = $2 WHERE uid = $1`

	result, err := r.db.Exec(ctx, query, comment.UID, comment.Description)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a comment by uid.
func (r *commentRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Ensure commentRepository implements CommentRepository at compile time.
var _ CommentRepository = (*commentRepository)(nil)
