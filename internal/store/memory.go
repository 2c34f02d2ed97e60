package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"getconnected/internal/common/errors"
	"getconnected/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory, optionally mirrored to a
// snapshot file (see OpenMemoryStore). It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	now       func() time.Time
	path      string
	users     map[string]models.User
	userNames map[string]string
	prefs     map[models.PreferenceKey]models.Preference
	groups    map[string]models.Group
	members   map[string]map[string]struct{}
	decisions map[string][]models.Decision
	schedules map[string]models.Schedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[string]models.User),
		userNames: make(map[string]string),
		prefs:     make(map[models.PreferenceKey]models.Preference),
		groups:    make(map[string]models.Group),
		members:   make(map[string]map[string]struct{}),
		decisions: make(map[string][]models.Decision),
		schedules: make(map[string]models.Schedule),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close writes the snapshot file when the store has one.
func (m *MemoryStore) Close() error {
	if m.path == "" {
		return nil
	}
	return m.save()
}

// ==========================
// Users
// ==========================

func (m *MemoryStore) CreateUser(_ context.Context, name, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.userNames[name]; taken {
		return models.User{}, errors.NewUserAlreadyExistsError(name)
	}
	u := models.User{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: m.now()}
	m.users[u.ID] = u
	m.userNames[name] = u.ID
	return u, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, errors.NewUserNotFoundError(id)
	}
	return u, nil
}

func (m *MemoryStore) GetUserByName(_ context.Context, name string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.userNames[name]
	if !ok {
		return models.User{}, errors.NewUserNotFoundError(name)
	}
	return m.users[id], nil
}

func (m *MemoryStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sortUsers(out)
	return out, nil
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
}

// ==========================
// Preferences
// ==========================

func (m *MemoryStore) UpsertPreference(_ context.Context, p models.Preference) (models.Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[p.UserID]; !ok {
		return models.Preference{}, errors.NewUserNotFoundError(p.UserID)
	}
	p.UpdatedAt = m.now()
	m.prefs[p.Key()] = p
	return p, nil
}

func (m *MemoryStore) ListUserPreferences(_ context.Context, userID string) ([]models.Preference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Preference{}
	for k, p := range m.prefs {
		if k.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PreferenceLevel != out[j].PreferenceLevel {
			return out[i].PreferenceLevel > out[j].PreferenceLevel
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

// ==========================
// Groups
// ==========================

func (m *MemoryStore) CreateGroup(_ context.Context, name, description string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := models.Group{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: m.now()}
	m.groups[g.ID] = g
	m.members[g.ID] = make(map[string]struct{})
	return g, nil
}

func (m *MemoryStore) GetGroup(_ context.Context, id string) (models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return models.Group{}, errors.NewGroupNotFoundError(id)
	}
	return g, nil
}

func (m *MemoryStore) AddGroupMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.members[groupID]
	if !ok {
		return errors.NewGroupNotFoundError(groupID)
	}
	if _, ok := m.users[userID]; !ok {
		return errors.NewUserNotFoundError(userID)
	}
	set[userID] = struct{}{}
	return nil
}

func (m *MemoryStore) ListGroupMembers(_ context.Context, groupID string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.members[groupID]))
	for id := range m.members[groupID] {
		out = append(out, m.users[id])
	}
	sortUsers(out)
	return out, nil
}

func (m *MemoryStore) CountGroupMembers(_ context.Context, groupID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members[groupID]), nil
}

func (m *MemoryStore) GetGroupPreferences(_ context.Context, groupID string) ([]models.GroupPreference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.members[groupID]
	out := []models.GroupPreference{}
	for k, p := range m.prefs {
		if _, member := set[k.UserID]; !member {
			continue
		}
		out = append(out, models.GroupPreference{
			MemberID:        p.UserID,
			MemberName:      m.users[p.UserID].Name,
			Platform:        p.Platform,
			PreferenceLevel: p.PreferenceLevel,
			HasAccount:      p.HasAccount,
			Notes:           p.Notes,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MemberName != b.MemberName {
			return a.MemberName < b.MemberName
		}
		if a.PreferenceLevel != b.PreferenceLevel {
			return a.PreferenceLevel > b.PreferenceLevel
		}
		return a.Platform < b.Platform
	})
	return out, nil
}

// ==========================
// Decisions
// ==========================

func (m *MemoryStore) SaveDecision(_ context.Context, d models.Decision) (models.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[d.GroupID]; !ok {
		return models.Decision{}, errors.NewGroupNotFoundError(d.GroupID)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = m.now()
	}
	m.decisions[d.GroupID] = append(m.decisions[d.GroupID], d)
	return d, nil
}

func (m *MemoryStore) ListDecisions(_ context.Context, groupID string) ([]models.Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.decisions[groupID]
	out := make([]models.Decision, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DecidedAt.After(out[j].DecidedAt) })
	return out, nil
}

// ==========================
// Schedules
// ==========================

func (m *MemoryStore) CreateSchedule(_ context.Context, s models.Schedule) (models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[s.GroupID]; !ok {
		return models.Schedule{}, errors.NewGroupNotFoundError(s.GroupID)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = models.ScheduleStatusScheduled
	}
	if s.DurationMinutes == 0 {
		s.DurationMinutes = models.DefaultScheduleMinutes
	}
	now := m.now()
	s.CreatedAt, s.UpdatedAt = now, now
	m.schedules[s.ID] = s
	return s, nil
}

func (m *MemoryStore) ListSchedules(_ context.Context, groupID string) ([]models.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Schedule{}
	for _, s := range m.schedules {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) UpdateScheduleStatus(_ context.Context, id, status string) (models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return models.Schedule{}, errors.NewScheduleNotFoundError(id)
	}
	s.Status = status
	s.UpdatedAt = m.now()
	m.schedules[id] = s
	return s, nil
}
