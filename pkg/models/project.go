package models

import (
	"time"

	"github.com/google/uuid"
)

// Project type constants.
const (
	ProjectBackend  = "backend"
	ProjectFrontend = "frontend"
	ProjectIOS      = "ios"
	ProjectAndroid  = "android"
)

// ValidProjectTypes contains all valid project type values.
var ValidProjectTypes = []string{ProjectBackend, ProjectFrontend, ProjectIOS, ProjectAndroid}

// IsValidProjectType checks if the given type is valid.
func IsValidProjectType(t string) bool {
	for _, v := range ValidProjectTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Project represents a tracked project. AuthorID is nil after the authoring
// account has been deleted; the project itself survives author deletion.
type Project struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Type         string      `json:"type"`
	AuthorID     *uuid.UUID  `json:"author"`
	Contributors []uuid.UUID `json:"contributors"`
	CreatedAt    time.Time   `json:"created_time"`
}

// HasContributor reports whether the given user is in the contributor set.
func (p *Project) HasContributor(userID uuid.UUID) bool {
	for _, id := range p.Contributors {
		if id == userID {
			return true
		}
	}
	return false
}
