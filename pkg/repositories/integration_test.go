//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/models"
	"github.com/softdesk/softdesk-api/pkg/testhelpers"
)

// repoTestContext holds the repositories under test, all backed by the
// shared containerized database. Rows are never truncated between tests, so
// every fixture carries unique names.
type repoTestContext struct {
	t        *testing.T
	testDB   *testhelpers.TestDB
	users    UserRepository
	projects ProjectRepository
	issues   IssueRepository
	comments CommentRepository
}

// setupRepoTest initializes the test context with the shared testcontainer.
func setupRepoTest(t *testing.T) *repoTestContext {
	testDB := testhelpers.GetTestDB(t)
	return &repoTestContext{
		t:        t,
		testDB:   testDB,
		users:    NewUserRepository(testDB.DB),
		projects: NewProjectRepository(testDB.DB),
		issues:   NewIssueRepository(testDB.DB),
		comments: NewCommentRepository(testDB.DB),
	}
}

// uniqueName makes prefix collision-free across tests sharing the database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8])
}

// seedAccount creates an active user directly through the repository.
func (tc *repoTestContext) seedAccount(ctx context.Context, prefix string) *models.User {
	tc.t.Helper()
	user := &models.User{
		Username:     uniqueName(prefix),
		PasswordHash: "not-a-real-hash",
		BirthDate:    time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}
	if err := tc.users.Create(ctx, user); err != nil {
		tc.t.Fatalf("failed to seed account: %v", err)
	}
	return user
}

// seedElevated creates an active staff user.
func (tc *repoTestContext) seedElevated(ctx context.Context, prefix string) *models.User {
	tc.t.Helper()
	user := &models.User{
		Username:     uniqueName(prefix),
		PasswordHash: "not-a-real-hash",
		BirthDate:    time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
		IsStaff:      true,
	}
	if err := tc.users.Create(ctx, user); err != nil {
		tc.t.Fatalf("failed to seed elevated account: %v", err)
	}
	return user
}

// seedProject creates a project authored by author with the given extra
// contributors. The author is always in the contributor set.
func (tc *repoTestContext) seedProject(ctx context.Context, author *models.User, contributors ...uuid.UUID) *models.Project {
	tc.t.Helper()
	project := &models.Project{
		Name:        uniqueName("project"),
		Description: "integration fixture",
		Type:        models.ProjectBackend,
		AuthorID:    &author.ID,
	}
	ids := append([]uuid.UUID{author.ID}, contributors...)
	if err := tc.projects.Create(ctx, project, ids); err != nil {
		tc.t.Fatalf("failed to seed project: %v", err)
	}
	return project
}

// seedIssue creates an issue on the project authored by author.
func (tc *repoTestContext) seedIssue(ctx context.Context, project *models.Project, author *models.User, assignees ...uuid.UUID) *models.Issue {
	tc.t.Helper()
	issue := &models.Issue{
		ProjectID:   project.ID,
		Name:        uniqueName("issue"),
		Description: "integration fixture",
		Type:        models.IssueBug,
		Priority:    models.PriorityMedium,
		Status:      models.StatusTodo,
		AuthorID:    &author.ID,
	}
	if err := tc.issues.Create(ctx, issue, assignees); err != nil {
		tc.t.Fatalf("failed to seed issue: %v", err)
	}
	return issue
}

// seedComment creates a comment on the issue authored by author.
func (tc *repoTestContext) seedComment(ctx context.Context, issue *models.Issue, author *models.User) *models.Comment {
	tc.t.Helper()
	comment := &models.Comment{
		IssueID:     issue.ID,
		Description: "integration fixture",
		AuthorID:    &author.ID,
	}
	if err := tc.comments.Create(ctx, comment); err != nil {
		tc.t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}

// countRows runs a COUNT(*) against the shared database.
func (tc *repoTestContext) countRows(ctx context.Context, query string, args ...interface{}) int {
	tc.t.Helper()
	var n int
	if err := tc.testDB.DB.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		tc.t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
