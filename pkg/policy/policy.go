// Package policy holds the authorization predicates consulted before every
// read or write. The predicates are pure functions over already-loaded
// domain objects; visibility scoping (which instances an identity can see at
// all) lives in the repository queries, so an out-of-scope identifier
// surfaces as not-found before any of these run.
package policy

import (
	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/models"
)

// CanMutate reports whether the actor may replace, merge-update or delete an
// object with the given author. Elevated identities may mutate anything;
// otherwise only the recorded author may. A nil author (the authoring account
// was deleted) leaves only elevated identities.
func CanMutate(actor *models.User, authorID *uuid.UUID) bool {
	if actor.Elevated() {
		return true
	}
	return authorID != nil && *authorID == actor.ID
}

// CanMutateAccount reports whether the actor may update or delete the given
// user account: the account owner or an elevated identity.
func CanMutateAccount(actor *models.User, accountID uuid.UUID) bool {
	return actor.Elevated() || actor.ID == accountID
}

// CanAdministerUsers reports whether the actor may create accounts through
// the administrative flow.
func CanAdministerUsers(actor *models.User) bool {
	return actor.Elevated()
}

// AssigneeMayPatch reports whether a partial update by an issue assignee who
// is not the author is permitted: the payload must touch exactly one field
// and that field must be status.
func AssigneeMayPatch(fields []string) bool {
	return len(fields) == 1 && fields[0] == "status"
}
