//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/models"
)

func TestIssueRepository_VisibilityFollowsProjectMembership(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "author")
	member := tc.seedAccount(ctx, "member")
	outsider := tc.seedAccount(ctx, "outsider")

	project := tc.seedProject(ctx, author, member.ID)
	issue := tc.seedIssue(ctx, project, author)

	// A contributor sees issues they did not author.
	if _, err := tc.issues.GetFor(ctx, member, issue.ID); err != nil {
		t.Errorf("expected contributor to see the issue, got %v", err)
	}
	if _, err := tc.issues.GetFor(ctx, outsider, issue.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected out-of-scope issue to look missing, got %v", err)
	}

	listed, err := tc.issues.ListFor(ctx, outsider)
	if err != nil {
		t.Fatalf("ListFor failed: %v", err)
	}
	for _, i := range listed {
		if i.ID == issue.ID {
			t.Error("expected out-of-scope issue to be absent from the list")
		}
	}
}

func TestIssueRepository_NameUniquePerProject(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "author")
	project := tc.seedProject(ctx, author)
	other := tc.seedProject(ctx, author)
	issue := tc.seedIssue(ctx, project, author)

	dup := &models.Issue{
		ProjectID: project.ID,
		Name:      issue.Name,
		Type:      models.IssueTask,
		Priority:  models.PriorityLow,
		Status:    models.StatusTodo,
		AuthorID:  &author.ID,
	}
	err := tc.issues.Create(ctx, dup, nil)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate name in project, got %v", err)
	}

	// Same name on another project is fine.
	elsewhere := &models.Issue{
		ProjectID: other.ID,
		Name:      issue.Name,
		Type:      models.IssueTask,
		Priority:  models.PriorityLow,
		Status:    models.StatusTodo,
		AuthorID:  &author.ID,
	}
	if err := tc.issues.Create(ctx, elsewhere, nil); err != nil {
		t.Fatalf("expected same name on another project to succeed, got %v", err)
	}

	taken, err := tc.issues.NameTakenInProject(ctx, project.ID, issue.Name, uuid.Nil)
	if err != nil {
		t.Fatalf("NameTakenInProject failed: %v", err)
	}
	if !taken {
		t.Error("expected name to be reported taken within the project")
	}
}

func TestIssueRepository_UpdateRenameCollision(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "author")
	project := tc.seedProject(ctx, author)
	existing := tc.seedIssue(ctx, project, author)
	victim := tc.seedIssue(ctx, project, author)

	// A rename losing the uniqueness race surfaces as the same validation
	// error the pre-check would have produced.
	victim.Name = existing.Name
	err := tc.issues.Update(ctx, victim, false, nil)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for colliding rename, got %v", err)
	}
}

func TestIssueRepository_UpdateRebuildsAssignees(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "author")
	first := tc.seedAccount(ctx, "first")
	second := tc.seedAccount(ctx, "second")

	project := tc.seedProject(ctx, author, first.ID, second.ID)
	issue := tc.seedIssue(ctx, project, author, first.ID)

	issue.Status = models.StatusInProgress
	if err := tc.issues.Update(ctx, issue, true, []uuid.UUID{second.ID}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := tc.issues.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Errorf("expected status %q, got %q", models.StatusInProgress, got.Status)
	}
	if got.HasAssignee(first.ID) {
		t.Error("expected replaced-out assignee to be gone")
	}
	if !got.HasAssignee(second.ID) {
		t.Error("expected replacement assignee to be present")
	}
}

func TestIssueRepository_DeleteCascadesComments(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "author")
	project := tc.seedProject(ctx, author)
	issue := tc.seedIssue(ctx, project, author, author.ID)
	comment := tc.seedComment(ctx, issue, author)

	if err := tc.issues.Delete(ctx, issue.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := tc.issues.Get(ctx, issue.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected issue to be gone, got %v", err)
	}
	if _, err := tc.comments.GetFor(ctx, author, comment.UID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected comment to cascade with the issue, got %v", err)
	}
	if n := tc.countRows(ctx, `SELECT COUNT(*) FROM issue_assignees WHERE issue_id = $1`, issue.ID); n != 0 {
		t.Errorf("expected assignment rows to cascade, found %d", n)
	}
}
