// Package models contains domain types for softdesk-api.
package models

import (
	"time"

	"github.com/google/uuid"
)

// MinimumAgeDays is the registration age floor, expressed the way the
// product rule is written: 15 years counted as 15*365 days (RGPD).
const MinimumAgeDays = 15 * 365

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	BirthDate       time.Time `json:"birth_date"`
	CanBeContacted  bool      `json:"can_be_contacted"`
	CanDataBeShared bool      `json:"can_data_be_shared"`
	IsActive        bool      `json:"is_active"`
	IsStaff         bool      `json:"is_staff"`
	IsSuperuser     bool      `json:"-"`
	CreatedAt       time.Time `json:"created_time"`
}

// Elevated reports whether the user bypasses ownership-based restrictions.
func (u *User) Elevated() bool {
	return u.IsSuperuser || u.IsStaff
}

// OldEnough reports whether the user meets the age floor at the given time.
func (u *User) OldEnough(now time.Time) bool {
	return now.Sub(u.BirthDate) >= MinimumAgeDays*24*time.Hour
}
