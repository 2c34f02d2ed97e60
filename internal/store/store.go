// Package store persists users, preferences, groups, decisions and
// schedules. Implementations: in-memory, PostgreSQL, and a redis read-through
// cache that wraps either.
package store

import (
	"context"

	"getconnected/internal/models"
)

type UserStore interface {
	// CreateUser fails with USER_ALREADY_EXISTS when the name is taken.
	CreateUser(ctx context.Context, name, email string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByName(ctx context.Context, name string) (models.User, error)
	// ListUsers returns all users ordered by name.
	ListUsers(ctx context.Context) ([]models.User, error)
}

type PreferenceStore interface {
	// UpsertPreference stores p, replacing any previous record for the
	// same (user, platform) pair.
	UpsertPreference(ctx context.Context, p models.Preference) (models.Preference, error)
	// ListUserPreferences is ordered by level descending, then platform.
	ListUserPreferences(ctx context.Context, userID string) ([]models.Preference, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, name, description string) (models.Group, error)
	GetGroup(ctx context.Context, id string) (models.Group, error)
	// AddGroupMember is a no-op when the user is already a member.
	AddGroupMember(ctx context.Context, groupID, userID string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]models.User, error)
	CountGroupMembers(ctx context.Context, groupID string) (int, error)
	// GetGroupPreferences returns every preference row of the group's
	// current members, ordered by member name then level descending.
	GetGroupPreferences(ctx context.Context, groupID string) ([]models.GroupPreference, error)
}

type DecisionStore interface {
	SaveDecision(ctx context.Context, d models.Decision) (models.Decision, error)
	// ListDecisions returns the newest decision first.
	ListDecisions(ctx context.Context, groupID string) ([]models.Decision, error)
}

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
	// ListSchedules is ordered by meeting time, earliest first.
	ListSchedules(ctx context.Context, groupID string) ([]models.Schedule, error)
	UpdateScheduleStatus(ctx context.Context, id, status string) (models.Schedule, error)
}

type Store interface {
	UserStore
	PreferenceStore
	GroupStore
	DecisionStore
	ScheduleStore

	Ping(ctx context.Context) error
	Close() error
}
