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

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetActive returns the user only when the account is active.
	GetActive(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// List returns all users, or only active ones when includeInactive is
	// false.
	List(ctx context.Context, includeInactive bool) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes the account. Authored projects, issues and comments
	// survive with a null author; contributor and assignee memberships go
	// with the account. All within one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// ActiveIDs returns the subset of ids that belong to active accounts.
	ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, birth_date, can_be_contacted,
	can_data_be_shared, is_active, is_staff, is_superuser, created_at`

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()

	query := `
		INSERT INTO users (id, username, password_hash, birth_date, can_be_contacted,
			can_data_be_shared, is_active, is_staff, is_superuser, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.BirthDate,
		user.CanBeContacted,
		user.CanDataBeShared,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return apperrors.NewValidation("username", "username already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID regardless of activation state.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetActive retrieves a user by ID only if the account is active.
func (r *userRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`
	return r.scanOne(ctx, query, id)
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(ctx, query, username)
}

func (r *userRepository) scanOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.BirthDate,
		&user.CanBeContacted,
		&user.CanDataBeShared,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List retrieves users ordered by creation time.
func (r *userRepository) List(ctx context.Context, includeInactive bool) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE ($1 OR is_active)
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.BirthDate,
			&user.CanBeContacted,
			&user.CanDataBeShared,
			&user.IsActive,
			&user.IsStaff,
			&user.IsSuperuser,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Update persists mutable account fields.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2, password_hash = $3, birth_date = $4,
			can_be_contacted = $5, can_data_be_shared = $6, is_active = $7
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.BirthDate,
		user.CanBeContacted,
		user.CanDataBeShared,
		user.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return apperrors.NewValidation("username", "username already exists")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a user. Author references elsewhere are nulled, memberships
// and assignments are removed, all in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, query := range []string{
			`UPDATE projects SET author_id = NULL WHERE author_id = $1`,
			`UPDATE issues SET author_id = NULL WHERE author_id = $1`,
			`UPDATE comments SET author_id = NULL WHERE author_id = $1`,
			`DELETE FROM issue_assignees WHERE user_id = $1`,
			`DELETE FROM contributors WHERE user_id = $1`,
		} {
			if _, err := tx.Exec(ctx, query, id); err != nil {
				return fmt.Errorf("failed to detach user references: %w", err)
			}
		}

		result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// Count returns the total number of accounts.
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ActiveIDs returns the subset of ids belonging to active accounts.
func (r *userRepository) ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT id FROM users WHERE id = ANY($1) AND is_active`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active users: %w", err)
	}
	defer rows.Close()

	var active []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		active = append(active, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}
	return active, nil
}

// Ensure userRepository implements UserRepository at compile time.
var _ UserRepository = (*userRepository)(nil)
