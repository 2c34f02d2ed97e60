package store

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"getconnected/internal/models"

	"github.com/goccy/go-json"
)

// snapshot is the on-disk form of a MemoryStore.
type snapshot struct {
	Users       []models.User                `json:"users"`
	Preferences []models.Preference          `json:"preferences"`
	Groups      []models.Group               `json:"groups"`
	Members     map[string][]string          `json:"members"`
	Decisions   map[string][]models.Decision `json:"decisions"`
	Schedules   []models.Schedule            `json:"schedules"`
}

// OpenMemoryStore returns a MemoryStore backed by a JSON snapshot file. The
// file is read now if it exists and rewritten on Close, so short-lived
// processes such as the CLI keep their data between runs.
func OpenMemoryStore(path string) (*MemoryStore, error) {
	m := NewMemoryStore()
	m.path = path

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	m.restore(snap)
	return m, nil
}

func (m *MemoryStore) restore(snap snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range snap.Users {
		m.users[u.ID] = u
		m.userNames[u.Name] = u.ID
	}
	for _, p := range snap.Preferences {
		m.prefs[p.Key()] = p
	}
	for _, g := range snap.Groups {
		m.groups[g.ID] = g
	}
	for groupID, userIDs := range snap.Members {
		set := make(map[string]struct{}, len(userIDs))
		for _, id := range userIDs {
			set[id] = struct{}{}
		}
		m.members[groupID] = set
	}
	for groupID, ds := range snap.Decisions {
		m.decisions[groupID] = append([]models.Decision(nil), ds...)
	}
	for _, s := range snap.Schedules {
		m.schedules[s.ID] = s
	}
}

func (m *MemoryStore) snapshot() snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := snapshot{
		Users:       make([]models.User, 0, len(m.users)),
		Preferences: make([]models.Preference, 0, len(m.prefs)),
		Groups:      make([]models.Group, 0, len(m.groups)),
		Members:     make(map[string][]string, len(m.members)),
		Decisions:   make(map[string][]models.Decision, len(m.decisions)),
		Schedules:   make([]models.Schedule, 0, len(m.schedules)),
	}
	for _, u := range m.users {
		snap.Users = append(snap.Users, u)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	for _, p := range m.prefs {
		snap.Preferences = append(snap.Preferences, p)
	}
	sort.Slice(snap.Preferences, func(i, j int) bool {
		a, b := snap.Preferences[i], snap.Preferences[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Platform < b.Platform
	})
	for _, g := range m.groups {
		snap.Groups = append(snap.Groups, g)
	}
	sort.Slice(snap.Groups, func(i, j int) bool { return snap.Groups[i].ID < snap.Groups[j].ID })
	for groupID, set := range m.members {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		snap.Members[groupID] = ids
	}
	for groupID, ds := range m.decisions {
		snap.Decisions[groupID] = append([]models.Decision(nil), ds...)
	}
	for _, s := range m.schedules {
		snap.Schedules = append(snap.Schedules, s)
	}
	sort.Slice(snap.Schedules, func(i, j int) bool { return snap.Schedules[i].ID < snap.Schedules[j].ID })
	return snap
}

// save writes the snapshot to a temp file and renames it over path so a
// crash mid-write leaves the previous snapshot intact.
func (m *MemoryStore) save() error {
	data, err := json.MarshalIndent(m.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), m.path)
}
