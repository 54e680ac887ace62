//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	user := tc.seedAccount(ctx, "alice")

	got, err := tc.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Username != user.Username {
		t.Errorf("expected username %q, got %q", user.Username, got.Username)
	}

	got, err = tc.users.GetByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected id %s, got %s", user.ID, got.ID)
	}

	if _, err := tc.users.GetByID(ctx, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestUserRepository_GetActiveExcludesDeactivated(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	user := tc.seedAccount(ctx, "dormant")
	user.IsActive = false
	if err := tc.users.Update(ctx, user); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := tc.users.GetActive(ctx, user.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deactivated account, got %v", err)
	}
	if _, err := tc.users.GetByID(ctx, user.ID); err != nil {
		t.Errorf("expected GetByID to still find the account, got %v", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first := tc.seedAccount(ctx, "taken")

	dup := *first
	dup.ID = uuid.Nil
	err := tc.users.Create(ctx, &dup)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate username, got %v", err)
	}
}

func TestUserRepository_ActiveIDs(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	active := tc.seedAccount(ctx, "active")
	inactive := tc.seedAccount(ctx, "inactive")
	inactive.IsActive = false
	if err := tc.users.Update(ctx, inactive); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	ids, err := tc.users.ActiveIDs(ctx, []uuid.UUID{active.ID, inactive.ID, uuid.New()})
	if err != nil {
		t.Fatalf("ActiveIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != active.ID {
		t.Errorf("expected only the active id, got %v", ids)
	}
}

func TestUserRepository_DeleteNullsAuthorshipKeepsContent(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	author := tc.seedAccount(ctx, "leaving")
	keeper := tc.seedAccount(ctx, "keeper")

	project := tc.seedProject(ctx, author, keeper.ID)
	issue := tc.seedIssue(ctx, project, author, author.ID)
	comment := tc.seedComment(ctx, issue, author)

	if err := tc.users.Delete(ctx, author.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := tc.users.GetByID(ctx, author.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected deleted account to be gone, got %v", err)
	}

	// Authored content survives with a null author.
	gotProject, err := tc.projects.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("expected project to survive author deletion: %v", err)
	}
	if gotProject.AuthorID != nil {
		t.Errorf("expected nil project author, got %v", gotProject.AuthorID)
	}
	if gotProject.HasContributor(author.ID) {
		t.Error("expected contributor membership to go with the account")
	}
	if !gotProject.HasContributor(keeper.ID) {
		t.Error("expected remaining contributor to survive")
	}

	gotIssue, err := tc.issues.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("expected issue to survive author deletion: %v", err)
	}
	if gotIssue.AuthorID != nil {
		t.Errorf("expected nil issue author, got %v", gotIssue.AuthorID)
	}
	if gotIssue.HasAssignee(author.ID) {
		t.Error("expected assignment to go with the account")
	}

	gotComment, err := tc.comments.GetFor(ctx, keeper, comment.UID)
	if err != nil {
		t.Fatalf("expected comment to survive author deletion: %v", err)
	}
	if gotComment.AuthorID != nil {
		t.Errorf("expected nil comment author, got %v", gotComment.AuthorID)
	}
}
