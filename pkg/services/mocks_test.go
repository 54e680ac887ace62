package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/repositories"
)

// Map-backed repository mocks. Visibility scoping mirrors what the SQL
// predicates do so service tests exercise the same 404-versus-403 seams.

type mockUserRepository struct {
	users map[uuid.UUID]*models.User
	err   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) List(ctx context.Context, includeInactive bool) ([]*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.User
	for _, user := range m.users {
		if includeInactive || user.IsActive {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.users)), nil
}

func (m *mockUserRepository) ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []uuid.UUID
	for _, id := range ids {
		if user, ok := m.users[id]; ok && user.IsActive {
			out = append(out, id)
		}
	}
	return out, nil
}

type mockProjectRepository struct {
	projects map[uuid.UUID]*models.Project
	err      error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project, contributorIDs []uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.Contributors = dedupeIDs(contributorIDs)
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	project, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return project, nil
}

func (m *mockProjectRepository) GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Project, error) {
	project, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !projectVisible(viewer, project) {
		return nil, apperrors.ErrNotFound
	}
	return project, nil
}

func (m *mockProjectRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Project
	for _, project := range m.projects {
		if projectVisible(viewer, project) {
			out = append(out, project)
		}
	}
	return out, nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *models.Project, mode repositories.ContributorMode, contributorIDs []uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	switch mode {
	case repositories.ContributorsReplace:
		project.Contributors = dedupeIDs(contributorIDs)
	case repositories.ContributorsMerge:
		project.Contributors = dedupeIDs(append(project.Contributors, contributorIDs...))
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepository) NameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, project := range m.projects {
		if project.Name == name && project.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type mockIssueRepository struct {
	issues   map[uuid.UUID]*models.Issue
	projects *mockProjectRepository
	err      error
}

func newMockIssueRepository(projects *mockProjectRepository) *mockIssueRepository {
	return &mockIssueRepository{issues: make(map[uuid.UUID]*models.Issue), projects: projects}
}

func (m *mockIssueRepository) Create(ctx context.Context, issue *models.Issue, assigneeIDs []uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	issue.Assignees = dedupeIDs(assigneeIDs)
	m.issues[issue.ID] = issue
	return nil
}

func (m *mockIssueRepository) Get(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	issue, ok := m.issues[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return issue, nil
}

func (m *mockIssueRepository) GetFor(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Issue, error) {
	issue, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.issueVisible(viewer, issue) {
		return nil, apperrors.ErrNotFound
	}
	return issue, nil
}

func (m *mockIssueRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Issue
	for _, issue := range m.issues {
		if m.issueVisible(viewer, issue) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *mockIssueRepository) Update(ctx context.Context, issue *models.Issue, replaceAssignees bool, assigneeIDs []uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if replaceAssignees {
		issue.Assignees = dedupeIDs(assigneeIDs)
	}
	m.issues[issue.ID] = issue
	return nil
}

func (m *mockIssueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.issues, id)
	return nil
}

func (m *mockIssueRepository) NameTakenInProject(ctx context.Context, projectID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, issue := range m.issues {
		if issue.ProjectID == projectID && issue.Name == name && issue.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockIssueRepository) issueVisible(viewer *models.User, issue *models.Issue) bool {
	if viewer.Elevated() {
		return true
	}
	if issue.AuthorID != nil && *issue.AuthorID == viewer.ID {
		return true
	}
	project, ok := m.projects.projects[issue.ProjectID]
	return ok && project.HasContributor(viewer.ID)
}

type mockCommentRepository struct {
	comments map[uuid.UUID]*models.Comment
	issues   *mockIssueRepository
	err      error
}

func newMockCommentRepository(issues *mockIssueRepository) *mockCommentRepository {
	return &mockCommentRepository{comments: make(map[uuid.UUID]*models.Comment), issues: issues}
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.err != nil {
		return m.err
	}
	if comment.UID == uuid.Nil {
		comment.UID = uuid.New()
	}
	m.comments[comment.UID] = comment
	return nil
}

func (m *mockCommentRepository) GetFor(ctx context.Context, viewer *models.User, uid uuid.UUID) (*models.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	comment, ok := m.comments[uid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if !m.commentVisible(viewer, comment) {
		return nil, apperrors.ErrNotFound
	}
	return comment, nil
}

func (m *mockCommentRepository) ListFor(ctx context.Context, viewer *models.User) ([]*models.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Comment
	for _, comment := range m.comments {
		if m.commentVisible(viewer, comment) {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (m *mockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if m.err != nil {
		return m.err
	}
	m.comments[comment.UID] = comment
	return nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.comments, uid)
	return nil
}

func (m *mockCommentRepository) commentVisible(viewer *models.User, comment *models.Comment) bool {
	if viewer.Elevated() {
		return true
	}
	if comment.AuthorID != nil && *comment.AuthorID == viewer.ID {
		return true
	}
	issue, ok := m.issues.issues[comment.IssueID]
	if !ok {
		return false
	}
	project, ok := m.issues.projects.projects[issue.ProjectID]
	return ok && project.HasContributor(viewer.ID)
}

func projectVisible(viewer *models.User, project *models.Project) bool {
	if viewer.Elevated() {
		return true
	}
	if project.AuthorID != nil && *project.AuthorID == viewer.ID {
		return true
	}
	return project.HasContributor(viewer.ID)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
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

// Compile-time checks that the mocks track the repository interfaces.
var (
	_ repositories.UserRepository    = (*mockUserRepository)(nil)
	_ repositories.ProjectRepository = (*mockProjectRepository)(nil)
	_ repositories.IssueRepository   = (*mockIssueRepository)(nil)
	_ repositories.CommentRepository = (*mockCommentRepository)(nil)
)
