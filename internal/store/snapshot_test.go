package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"getconnected/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryStore_MissingFileStartsEmpty(t *testing.T) {
	s, err := OpenMemoryStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	first, err := OpenMemoryStore(path)
	require.NoError(t, err)
	alice := mustUser(t, first, "alice")
	bob := mustUser(t, first, "bob")
	mustPref(t, first, alice.ID, "signal", 9, true)
	mustPref(t, first, bob.ID, "signal", 7, true)
	group, err := first.CreateGroup(ctx, "friends", "")
	require.NoError(t, err)
	require.NoError(t, first.AddGroupMember(ctx, group.ID, alice.ID))
	require.NoError(t, first.AddGroupMember(ctx, group.ID, bob.ID))
	_, err = first.SaveDecision(ctx, models.Decision{GroupID: group.ID, ChosenPlatform: "signal"})
	require.NoError(t, err)
	_, err = first.CreateSchedule(ctx, models.Schedule{
		GroupID:         group.ID,
		Platform:        "signal",
		ScheduledAt:     time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenMemoryStore(path)
	require.NoError(t, err)

	byName, err := second.GetUserByName(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byName.ID)

	n, err := second.CountGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := second.GetGroupPreferences(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	decisions, err := second.ListDecisions(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "signal", decisions[0].ChosenPlatform)

	schedules, err := second.ListSchedules(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, 30, schedules[0].DurationMinutes)
}

func TestOpenMemoryStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenMemoryStore(path)
	assert.Error(t, err)
}

func TestMemoryStore_CloseWithoutPathWritesNothing(t *testing.T) {
	s := NewMemoryStore()
	mustUser(t, s, "alice")
	assert.NoError(t, s.Close())
}
