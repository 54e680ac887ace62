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

// IssueRepository defines the interface for issue data access.
type IssueRepository interface {
	// Create inserts the issue and its assignee rows in one transaction.
	Create(ctx context.Context, issue *models.Issue, assigneeIDs []uuid.UUID) error
	// Get retrieves an issue without visibility scoping. Used where the
	// policy needs the real object before deciding (comment creation tells
	// a missing issue apart from a membership rejection).
	Get(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	// GetFor retrieves an issue visible to the viewer.
	GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Issue, error)
	// ListFor retrieves all issues visible to the viewer.
	ListFor(ctx context.Context, viewer *models.User) ([]*models.Issue, error)
	// Update persists issue fields; when replaceAssignees is set the
	// assignee rows are rebuilt from assigneeIDs in the same transaction.
	Update(ctx context.Context, issue *models.Issue, replaceAssignees bool, assigneeIDs []uuid.UUID) error
	// Delete removes the issue, cascading to its comments.
	Delete(ctx context.Context, id uuid.UUID) error
	// NameTakenInProject reports whether another issue in the project
	// already uses the name.
	NameTakenInProject(ctx context.Context, projectID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
}

// issueRepository implements IssueRepository using PostgreSQL.
type issueRepository struct {
	db *database.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *database.DB) IssueRepository {
	return &issueRepository{db: db}
}

// Create inserts a new issue and its assignee rows.
func (r *issueRepository) Create(ctx context.Context, issue *models.Issue, assigneeIDs []uuid.UUID) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	issue.CreatedAt = time.Now()

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO issues (id, project_id, name, description, type, priority, status, author_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		_, err := tx.Exec(ctx, query,
			issue.ID,
			issue.ProjectID,
			issue.Name,
			issue.Description,
			issue.Type,
			issue.Priority,
			issue.Status,
			issue.AuthorID,
			issue.CreatedAt,
		)
		if err != nil {
			return err
		}

		return insertAssignees(ctx, tx, issue.ID, assigneeIDs)
	})
	if err != nil {
		if isUniqueViolation(err, "issues_project_name_key") {
			return apperrors.NewValidation("name", "issue name already exists in this project")
		}
		return fmt.Errorf("failed to create issue: %w", err)
	}

	issue.Assignees = dedupe(assigneeIDs)
	return nil
}

const issueSelect = `
	SELECT i.id, i.project_id, i.name, i.description, i.type, i.priority, i.status,
		i.author_id, i.created_at,
		COALESCE(array_agg(a.user_id) FILTER (WHERE a.user_id IS NOT NULL), '{}')
	FROM issues i
	LEFT JOIN issue_assignees a ON a.issue_id = i.id`

// Get retrieves an issue by ID without visibility scoping.
func (r *issueRepository) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	query := issueSelect + `
		WHERE i.id = $1
		GROUP BY i.id`

	var issue models.Issue
	err := r.db.QueryRow(ctx, query, id).Scan(
		&issue.ID,
		&issue.ProjectID,
		&issue.Name,
		&issue.Description,
		&issue.Type,
		&issue.Priority,
		&issue.Status,
		&issue.AuthorID,
		&issue.CreatedAt,
		&issue.Assignees,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return &issue, nil
}

// GetFor retrieves an issue by ID within the viewer's scope: elevated
// viewers see everything, others only issues they authored or issues of
// projects they contribute to.
func (r *issueRepository) GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Issue, error) {
	query := issueSelect + `
		WHERE i.id = $1 AND ($2 OR i.author_id = $3 OR EXISTS (
			SELECT 1 FROM contributors c WHERE c.project_id = i.project_id AND c.user_id = $3))
		GROUP BY i.id`

	var issue models.Issue
	err := r.db.QueryRow(ctx, query, id, viewer.Elevated(), viewer.ID).Scan(
		&issue.ID,
		&issue.ProjectID,
		&issue.Name,
		&issue.Description,
		&issue.Type,
		&issue.Priority,
		&issue.Status,
		&issue.AuthorID,
		&issue.CreatedAt,
		&issue.Assignees,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return &issue, nil
}

// ListFor retrieves all issues within the viewer's scope.
func (r *issueRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Issue, error) {
	query := issueSelect + `
		WHERE $1 OR i.author_id = $2 OR EXISTS (
			SELECT 1 FROM contributors c WHERE c.project_id = i.project_id AND c.user_id = $2)
		GROUP BY i.id
		ORDER BY i.created_at, i.id`

	rows, err := r.db.Query(ctx, query, viewer.Elevated(), viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		var issue models.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.ProjectID,
			&issue.Name,
			&issue.Description,
			&issue.Type,
			&issue.Priority,
			&issue.Status,
			&issue.AuthorID,
			&issue.CreatedAt,
			&issue.Assignees,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, &issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return issues, nil
}

// Update persists issue fields and optionally rebuilds the assignee set.
// The owning project is immutable, so project_id is never in the SET list.
func (r *issueRepository) Update(ctx context.Context, issue *models.Issue, replaceAssignees bool, assigneeIDs []uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE issues
			SET name = $2, description = $3, type = $4, priority = $5, status = $6
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			issue.ID,
			issue.Name,
			issue.Description,
			issue.Type,
			issue.Priority,
			issue.Status,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}

		if replaceAssignees {
			if _, err := tx.Exec(ctx, `DELETE FROM issue_assignees WHERE issue_id = $1`, issue.ID); err != nil {
				return err
			}
			return insertAssignees(ctx, tx, issue.ID, assigneeIDs)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if isUniqueViolation(err, "issues_project_name_key") {
			return apperrors.NewValidation("name", "issue name already exists in this project")
		}
		return fmt.Errorf("failed to update issue: %w", err)
	}
	return nil
}

// Delete removes an issue with explicit cascade to comments.
func (r *issueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, query := range []string{
			`DELETE FROM comments WHERE issue_id = $1`,
			`DELETE FROM issue_assignees WHERE issue_id = $1`,
		} {
			if _, err := tx.Exec(ctx, query, id); err != nil {
				return fmt.Errorf("failed to cascade issue delete: %w", err)
			}
		}

		result, err := tx.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete issue: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// NameTakenInProject reports whether another issue in the project uses the name.
func (r *issueRepository) NameTakenInProject(ctx context.Context, projectID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM issues WHERE project_id = $1 AND name = $2 AND id <> $3)`
	if err := r.db.QueryRow(ctx, query, projectID, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check issue name: %w", err)
	}
	return taken, nil
}

// insertAssignees adds assignment rows, ignoring ones already present.
func insertAssignees(ctx context.Context, tx pgx.Tx, issueID uuid.UUID, userIDs []uuid.UUID) error {
	now := time.Now()
	for _, userID := range dedupe(userIDs) {
		query := `
			INSERT INTO issue_assignees (issue_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (issue_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, query, issueID, userID, now); err != nil {
			return fmt.Errorf("failed to add assignee: %w", err)
		}
	}
	return nil
}

// Ensure issueRepository implements IssueRepository at compile time.
var _ IssueRepository = (*issueRepository)(nil)
