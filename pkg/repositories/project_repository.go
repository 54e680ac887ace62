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

// ContributorMode selects how a contributor list in an update payload is
// applied to the existing set.
type ContributorMode int

const (
	// ContributorsUnchanged leaves the contributor set alone.
	ContributorsUnchanged ContributorMode = iota
	// ContributorsReplace clears the set and rebuilds it from the list.
	ContributorsReplace
	// ContributorsMerge adds the list to the existing set.
	ContributorsMerge
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// Create inserts the project and its initial contributor set (author
	// first) in one transaction.
	Create(ctx context.Context, project *models.Project, contributorIDs []uuid.UUID) error
	// Get retrieves a project without visibility scoping. Used where the
	// policy needs the real object before deciding (issue creation tells a
	// missing project apart from a membership rejection).
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// GetFor retrieves a project visible to the viewer. Out-of-scope rows
	// are indistinguishable from missing ones.
	GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Project, error)
	// ListFor retrieves all projects visible to the viewer.
	ListFor(ctx context.Context, viewer *models.User) ([]*models.Project, error)
	// Update persists project fields and applies the contributor list per
	// mode, in one transaction.
	Update(ctx context.Context, project *models.Project, mode ContributorMode, contributorIDs []uuid.UUID) error
	// Delete removes the project, cascading to its issues and their
	// comments in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	// NameTaken reports whether another project already uses the name.
	NameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project and its contributor rows.
func (r *projectRepository) Create(ctx context.Context, project *models.Project, contributorIDs []uuid.UUID) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO projects (id, name, description, type, author_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`

		_, err := tx.Exec(ctx, query,
			project.ID,
			project.Name,
			project.Description,
			project.Type,
			project.AuthorID,
			project.CreatedAt,
		)
		if err != nil {
			return err
		}

		return insertContributors(ctx, tx, project.ID, contributorIDs)
	})
	if err != nil {
		if isUniqueViolation(err, "projects_name_key") {
			return apperrors.NewValidation("name", "project name already exists")
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	project.Contributors = dedupe(contributorIDs)
	return nil
}

const projectSelect = `
	SELECT p.id, p.name, p.description, p.type, p.author_id, p.created_at,
		COALESCE(array_agg(c.user_id) FILTER (WHERE c.user_id IS NOT NULL), '{}')
	FROM projects p
	LEFT JOIN contributors c ON c.project_id = p.id`

// visibleProject is the scoping predicate: elevated viewers ($2) see every
// project, others only those they authored or contribute to ($3).
const visibleProject = `($2 OR p.author_id = $3 OR EXISTS (
	SELECT 1 FROM contributors cv WHERE cv.project_id = p.id AND cv.user_id = $3))`

// Get retrieves a project by ID without visibility scoping.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := projectSelect + `
		WHERE p.id = $1
		GROUP BY p.id`

	var project models.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Type,
		&project.AuthorID,
		&project.CreatedAt,
		&project.Contributors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// GetFor retrieves a project by ID within the viewer's scope.
func (r *projectRepository) GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Project, error) {
	query := projectSelect + `
		WHERE p.id = $1 AND ` + visibleProject + `
		GROUP BY p.id`

	var project models.Project
	err := r.db.QueryRow(ctx, query, id, viewer.Elevated(), viewer.ID).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Type,
		&project.AuthorID,
		&project.CreatedAt,
		&project.Contributors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// ListFor retrieves all projects within the viewer's scope.
func (r *projectRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Project, error) {
	query := projectSelect + `
		WHERE $1 OR p.author_id = $2 OR EXISTS (
			SELECT 1 FROM contributors cv WHERE cv.project_id = p.id AND cv.user_id = $2)
		GROUP BY p.id
		ORDER BY p.created_at, p.id`

	rows, err := r.db.Query(ctx, query, viewer.Elevated(), viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.Type,
			&project.AuthorID,
			&project.CreatedAt,
			&project.Contributors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// Update persists project fields and applies the contributor list.
func (r *projectRepository) Update(ctx context.Context, project *models.Project, mode ContributorMode, contributorIDs []uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE projects
			SET name = $2, description = $3, type = $4
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			project.ID,
			project.Name,
			project.Description,
			project.Type,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}

		switch mode {
		case ContributorsReplace:
			if _, err := tx.Exec(ctx, `DELETE FROM contributors WHERE project_id = $1`, project.ID); err != nil {
				return err
			}
			return insertContributors(ctx, tx, project.ID, contributorIDs)
		case ContributorsMerge:
			return insertContributors(ctx, tx, project.ID, contributorIDs)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if isUniqueViolation(err, "projects_name_key") {
			return apperrors.NewValidation("name", "project name already exists")
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete removes a project with explicit cascade to issues and comments.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, query := range []string{
			`DELETE FROM comments WHERE issue_id IN (SELECT id FROM issues WHERE project_id = $1)`,
			`DELETE FROM issue_assignees WHERE issue_id IN (SELECT id FROM issues WHERE project_id = $1)`,
			`DELETE FROM issues WHERE project_id = $1`,
			`DELETE FROM contributors WHERE project_id = $1`,
		} {
			if _, err := tx.Exec(ctx, query, id); err != nil {
				return fmt.Errorf("failed to cascade project delete: %w", err)
			}
		}

		result, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// NameTaken reports whether another project already uses the name.
func (r *projectRepository) NameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1 AND id <> $2)`
	if err := r.db.QueryRow(ctx, query, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check project name: %w", err)
	}
	return taken, nil
}

// insertContributors adds membership rows, ignoring ones already present.
func insertContributors(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, userIDs []uuid.UUID) error {
	now := time.Now()
	for _, userID := range dedupe(userIDs) {
		query := `
			INSERT INTO contributors (project_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (project_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, query, projectID, userID, now); err != nil {
			return fmt.Errorf("failed to add contributor: %w", err)
		}
	}
	return nil
}

// dedupe removes duplicate ids preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
