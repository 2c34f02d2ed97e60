// internal/models/user.go
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	DefaultPreferenceLevel = 5
	MinPreferenceLevel     = 1
	MaxPreferenceLevel     = 10
)

// Preference is a user's stance on one platform. There is at most one per
// (UserID, Platform) pair; a new submission replaces the previous one.
type Preference struct {
	UserID          string    `json:"userId"`
	Platform        string    `json:"platform"`
	PreferenceLevel int       `json:"preferenceLevel"`
	HasAccount      bool      `json:"hasAccount"`
	Notes           string    `json:"notes,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PreferenceKey identifies a preference record.
type PreferenceKey struct {
	UserID   string
	Platform string
}

func (p Preference) Key() PreferenceKey {
	return PreferenceKey{UserID: p.UserID, Platform: p.Platform}
}
