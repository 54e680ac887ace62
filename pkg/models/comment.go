package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on an issue. UID is the externally exposed
// identifier, generated at creation and decoupled from the storage row key.
// IssueID is immutable after creation.
type Comment struct {
	UID         uuid.UUID  `json:"uuid"`
	IssueID     uuid.UUID  `json:"issue"`
	Description string     `json:"description"`
	AuthorID    *uuid.UUID `json:"author"`
	CreatedAt   time.Time  `json:"created_time"`
}
