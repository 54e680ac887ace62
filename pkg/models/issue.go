package models

import (
	"time"

	"github.com/google/uuid"
)

// Issue type constants.
const (
	IssueBug     = "bug"
	IssueFeature = "feature"
	IssueTask    = "task"
)

// Issue priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Issue status constants.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// ValidIssueTypes contains all valid issue type values.
var ValidIssueTypes = []string{IssueBug, IssueFeature, IssueTask}

// ValidPriorities contains all valid priority values.
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusTodo, StatusInProgress, StatusFinished}

// IsValidIssueType checks if the given type is valid.
func IsValidIssueType(t string) bool {
	return contains(ValidIssueTypes, t)
}

// IsValidPriority checks if the given priority is valid.
func IsValidPriority(p string) bool {
	return contains(ValidPriorities, p)
}

// IsValidStatus checks if the given status is valid.
func IsValidStatus(s string) bool {
	return contains(ValidStatuses, s)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Issue represents an issue scoped to a project. ProjectID is immutable after
// creation. Assignees must be contributors of the owning project at the time
// they are assigned.
type Issue struct {
	ID          uuid.UUID   `json:"id"`
	ProjectID   uuid.UUID   `json:"project"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Priority    string      `json:"priority"`
	Status      string      `json:"status"`
	AuthorID    *uuid.UUID  `json:"author"`
	Assignees   []uuid.UUID `json:"assignees"`
	CreatedAt   time.Time   `json:"created_time"`
}

// HasAssignee reports whether the given user is assigned to the issue.
func (i *Issue) HasAssignee(userID uuid.UUID) bool {
	for _, id := range i.Assignees {
		if id == userID {
			return true
		}
	}
	return false
}
