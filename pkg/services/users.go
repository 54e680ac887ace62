// Package services contains the domain logic: payload validation and
// per-object permission enforcement for each entity. Services see repositories
// through interfaces and never touch SQL.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/config"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/policy"
	"github.com/softdesk/softdesk-api/pkg/repositories"
)

// birthDateLayout is the wire format for birth dates.
const birthDateLayout = "2006-01-02"

// CreateUserRequest is the payload for creating an account or fully
// replacing one. Password is optional on replace.
type CreateUserRequest struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	BirthDate            string `json:"birth_date"`
	CanBeContacted       bool   `json:"can_be_contacted"`
	CanDataBeShared      bool   `json:"can_data_be_shared"`
	IsActive             *bool  `json:"is_active"`
}

// PatchUserRequest is the payload for a partial account update. Nil fields
// are left unchanged.
type PatchUserRequest struct {
	Username             *string `json:"username"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
	BirthDate            *string `json:"birth_date"`
	CanBeContacted       *bool   `json:"can_be_contacted"`
	CanDataBeShared      *bool   `json:"can_data_be_shared"`
	IsActive             *bool   `json:"is_active"`
}

// UserService defines the interface for account operations.
type UserService interface {
	// Create registers a new account. Only elevated identities may do this.
	Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error)
	// List returns accounts visible to the actor: all of them for elevated
	// identities, active ones otherwise.
	List(ctx context.Context, actor *models.User) ([]*models.User, error)
	// Get returns one account's full detail. Owner or elevated only.
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error)
	// Replace fully updates an account. Owner or elevated only.
	Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateUserRequest) (*models.User, error)
	// Patch partially updates an account. Owner or elevated only.
	Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchUserRequest) (*models.User, error)
	// Delete removes an account. Owner or elevated only.
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
	// Authenticate checks a username/password pair against active accounts.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// GetActive resolves a token subject to an active account.
	GetActive(ctx context.Context, id uuid.UUID) (*models.User, error)
	// EnsureBootstrapUser creates the configured superuser when the user
	// table is empty. No-op otherwise.
	EnsureBootstrapUser(ctx context.Context, cfg *config.BootstrapConfig) error
}

// userService implements UserService.
type userService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

// Create registers a new account through the administrative flow.
func (s *userService) Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error) {
	if !policy.CanAdministerUsers(actor) {
		return nil, apperrors.ErrForbidden
	}
	return s.createUser(ctx, req, false)
}

func (s *userService) createUser(ctx context.Context, req *CreateUserRequest, superuser bool) (*models.User, error) {
	if req.Username == "" {
		return nil, apperrors.NewValidation("username", "username is required")
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperrors.NewValidation("password", "password is required")
	}
	if req.Password != req.PasswordConfirmation {
		return nil, apperrors.NewValidation("password_confirmation", "password and password_confirmation must match")
	}

	user := &models.User{
		Username:        req.Username,
		BirthDate:       birthDate,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
		IsActive:        true,
		IsStaff:         superuser,
		IsSuperuser:     superuser,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if !user.OldEnough(time.Now()) {
		return nil, apperrors.NewValidation("birth_date", "users must be at least 15 years old (RGPD)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns accounts within the actor's visibility scope.
func (s *userService) List(ctx context.Context, actor *models.User) ([]*models.User, error) {
	return s.users.List(ctx, actor.Elevated())
}

// Get returns one account's full detail. Only the account owner and
// elevated identities may read it; other callers get ErrForbidden.
func (s *userService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	user, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateAccount(actor, user.ID) {
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

// getScoped fetches an account within the actor's visibility scope. Inactive
// accounts are invisible to non-elevated actors, indistinguishable from
// missing ones.
func (s *userService) getScoped(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	if actor.Elevated() {
		return s.users.GetByID(ctx, id)
	}
	return s.users.GetActive(ctx, id)
}

// Replace fully updates an account.
func (s *userService) Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *CreateUserRequest) (*models.User, error) {
	user, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateAccount(actor, user.ID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Username == "" {
		return nil, apperrors.NewValidation("username", "username is required")
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.BirthDate = birthDate
	user.CanBeContacted = req.CanBeContacted
	user.CanDataBeShared = req.CanDataBeShared
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if !user.OldEnough(time.Now()) {
		return nil, apperrors.NewValidation("birth_date", "users must be at least 15 years old (RGPD)")
	}

	if req.Password != "" {
		if req.Password != req.PasswordConfirmation {
			return nil, apperrors.NewValidation("password_confirmation", "password and password_confirmation must match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Patch partially updates an account.
func (s *userService) Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *PatchUserRequest) (*models.User, error) {
	user, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateAccount(actor, user.ID) {
		return nil, apperrors.ErrForbidden
	}

	if req.Username != nil {
		if *req.Username == "" {
			return nil, apperrors.NewValidation("username", "username is required")
		}
		user.Username = *req.Username
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		user.BirthDate = birthDate
		if !user.OldEnough(time.Now()) {
			return nil, apperrors.NewValidation("birth_date", "users must be at least 15 years old (RGPD)")
		}
	}
	if req.CanBeContacted != nil {
		user.CanBeContacted = *req.CanBeContacted
	}
	if req.CanDataBeShared != nil {
		user.CanDataBeShared = *req.CanDataBeShared
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if req.Password != nil {
		if req.PasswordConfirmation == nil {
			return nil, apperrors.NewValidation("password_confirmation", "password_confirmation must be provided when updating password")
		}
		if *req.Password != *req.PasswordConfirmation {
			return nil, apperrors.NewValidation("password_confirmation", "password and password_confirmation must match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Authored content survives with a null author.
func (s *userService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	user, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if !policy.CanMutateAccount(actor, user.ID) {
		return apperrors.ErrForbidden
	}
	return s.users.Delete(ctx, user.ID)
}

// Authenticate checks credentials against active accounts. All failure modes
// look identical to the caller.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// GetActive resolves a token subject to an active account.
func (s *userService) GetActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetActive(ctx, id)
}

// EnsureBootstrapUser creates the configured superuser on first boot.
func (s *userService) EnsureBootstrapUser(ctx context.Context, cfg *config.BootstrapConfig) error {
	if cfg.Username == "" {
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.createUser(ctx, &CreateUserRequest{
		Username:             cfg.Username,
		Password:             cfg.Password,
		PasswordConfirmation: cfg.Password,
		BirthDate:            cfg.BirthDate,
	}, true)
	if err != nil {
		return fmt.Errorf("failed to bootstrap superuser: %w", err)
	}

	s.logger.Info("Bootstrapped initial superuser", zap.String("username", cfg.Username))
	return nil
}

func parseBirthDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.NewValidation("birth_date", "birth_date is required")
	}
	birthDate, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("birth_date", "birth_date must be formatted as YYYY-MM-DD")
	}
	return birthDate, nil
}

// Ensure userService implements UserService at compile time.
var _ UserService = (*userService)(nil)
