// internal/models/group.go
package models

import "time"

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupPreference is one preference row of a group member, joined with the
// member's name. It is the input shape of the recommendation engine.
type GroupPreference struct {
	MemberID        string `json:"memberId"`
	MemberName      string `json:"memberName"`
	Platform        string `json:"platform"`
	PreferenceLevel int    `json:"preferenceLevel"`
	HasAccount      bool   `json:"hasAccount"`
	Notes           string `json:"notes,omitempty"`
}

type Decision struct {
	ID             string    `json:"id"`
	GroupID        string    `json:"groupId"`
	ChosenPlatform string    `json:"chosenPlatform"`
	Reason         string    `json:"reason,omitempty"`
	DecidedAt      time.Time `json:"decidedAt"`
}

const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusCompleted = "completed"
	ScheduleStatusCancelled = "cancelled"

	DefaultScheduleMinutes = 60
)

type Schedule struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"groupId"`
	Platform        string    `json:"platform"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func IsValidScheduleStatus(status string) bool {
	switch status {
	case ScheduleStatusScheduled, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}
