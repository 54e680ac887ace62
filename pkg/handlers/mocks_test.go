package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/config"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// Function-field stubs for the service seams. Unset fields panic, which in a
// test means the handler called something it should not have.

type stubProjectService struct {
	createFn  func(ctx context.Context, actor *models.User, req *services.CreateProjectRequest) (*models.Project, error)
	listFn    func(ctx context.Context, actor *models.User) ([]*models.Project, error)
	getFn     func(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error)
	replaceFn func(ctx context.Context, actor *models.User, id uuid.UUID, req *services.CreateProjectRequest) (*models.Project, error)
	patchFn   func(ctx context.Context, actor *models.User, id uuid.UUID, req *services.PatchProjectRequest) (*models.Project, error)
	deleteFn  func(ctx context.Context, actor *models.User, id uuid.UUID) error
}

func (s *stubProjectService) Create(ctx context.Context, actor *models.User, req *services.CreateProjectRequest) (*models.Project, error) {
	return s.createFn(ctx, actor, req)
}

func (s *stubProjectService) List(ctx context.Context, actor *models.User) ([]*models.Project, error) {
	return s.listFn(ctx, actor)
}

func (s *stubProjectService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubProjectService) Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *services.CreateProjectRequest) (*models.Project, error) {
	return s.replaceFn(ctx, actor, id, req)
}

func (s *stubProjectService) Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *services.PatchProjectRequest) (*models.Project, error) {
	return s.patchFn(ctx, actor, id, req)
}

func (s *stubProjectService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.deleteFn(ctx, actor, id)
}

type stubUserService struct {
	authenticateFn func(ctx context.Context, username, password string) (*models.User, error)
	getActiveFn    func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (s *stubUserService) Create(ctx context.Context, actor *models.User, req *services.CreateUserRequest) (*models.User, error) {
	panic("not stubbed")
}

func (s *stubUserService) List(ctx context.Context, actor *models.User) ([]*models.User, error) {
	panic("not stubbed")
}

func (s *stubUserService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.User, error) {
	panic("not stubbed")
}

func (s *stubUserService) Replace(ctx context.Context, actor *models.User, id uuid.UUID, req *services.CreateUserRequest) (*models.User, error) {
	panic("not stubbed")
}

func (s *stubUserService) Patch(ctx context.Context, actor *models.User, id uuid.UUID, req *services.PatchUserRequest) (*models.User, error) {
	panic("not stubbed")
}

func (s *stubUserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	panic("not stubbed")
}

func (s *stubUserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubUserService) GetActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getActiveFn(ctx, id)
}

func (s *stubUserService) EnsureBootstrapUser(ctx context.Context, cfg *config.BootstrapConfig) error {
	panic("not stubbed")
}

// Compile-time checks that the stubs track the service interfaces.
var (
	_ services.ProjectService = (*stubProjectService)(nil)
	_ services.UserService    = (*stubUserService)(nil)
	_ auth.UserLoader         = (*stubUserService)(nil)
)
