package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"getconnected/internal/common/errors"
	"getconnected/internal/common/logger"
	"getconnected/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewPostgresStore(db, logger.NewTestLogger(t))
	s.now = func() time.Time { return testNow }
	return s, mock, db
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

var userColumns = []string{"id", "name", "email", "created_at"}

// ==========================
// Schema & connectivity
// ==========================

func TestPostgresStore_EnsureSchema(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureSchema(context.Background()))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(fmt.Errorf("permission denied"))
	err := s.EnsureSchema(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryExecution))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Users
// ==========================

func TestPostgresStore_CreateUser(t *testing.T) {
	tests := []struct {
		name     string
		execErr  error
		wantCode errors.ErrorCode
	}{
		{name: "success"},
		{name: "duplicate name", execErr: &pq.Error{Code: "23505"}, wantCode: errors.ErrCodeUserAlreadyExists},
		{name: "connection lost", execErr: fmt.Errorf("driver: bad connection"), wantCode: errors.ErrCodeQueryExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, db := newMockStore(t)
			defer db.Close()

			exp := mock.ExpectExec(q(insertUserSQL)).
				WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", testNow)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			u, err := s.CreateUser(context.Background(), "alice", "alice@example.com")
			if tt.wantCode != "" {
				assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, u.ID)
				assert.Equal(t, testNow, u.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_GetUser(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(q(selectUserSQL)).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "alice", "", testNow))
	mock.ExpectQuery(q(selectUserSQL)).WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(q(selectUserByName)).WithArgs("bob").
		WillReturnError(fmt.Errorf("timeout"))

	u, err := s.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)

	_, err = s.GetUser(context.Background(), "u-2")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))

	_, err = s.GetUserByName(context.Background(), "bob")
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryExecution))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListUsers(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(q(listUsersSQL)).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow("u-1", "alice", "a@example.com", testNow).
		AddRow("u-2", "bob", "", testNow))

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, []string{users[0].Name, users[1].Name})
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Preferences
// ==========================

func TestPostgresStore_UpsertPreference(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectExec(q(upsertPreferenceSQL)).
		WithArgs("u-1", "signal", 9, true, "daily", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(upsertPreferenceSQL)).
		WithArgs("ghost", "signal", 5, true, "", testNow).
		WillReturnError(&pq.Error{Code: "23503"})

	saved, err := s.UpsertPreference(context.Background(), models.Preference{
		UserID: "u-1", Platform: "signal", PreferenceLevel: 9, HasAccount: true, Notes: "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, testNow, saved.UpdatedAt)

	_, err = s.UpsertPreference(context.Background(), models.Preference{
		UserID: "ghost", Platform: "signal", PreferenceLevel: 5, HasAccount: true,
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListUserPreferences(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	cols := []string{"user_id", "platform", "preference_level", "has_account", "notes", "updated_at"}
	mock.ExpectQuery(q(listPreferencesSQL)).WithArgs("u-1").WillReturnRows(sqlmock.NewRows(cols).
		AddRow("u-1", "telegram", 9, true, "", testNow).
		AddRow("u-1", "signal", 4, false, "rarely", testNow))

	prefs, err := s.ListUserPreferences(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "telegram", prefs[0].Platform)
	assert.False(t, prefs[1].HasAccount)
	assert.Equal(t, "rarely", prefs[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Groups
// ==========================

func TestPostgresStore_GroupLifecycle(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(q(insertGroupSQL)).
		WithArgs(sqlmock.AnyArg(), "family", "sunday call", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q(insertMemberSQL)).WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(insertMemberSQL)).WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q(countMembersSQL)).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q(groupPreferencesSQL)).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "platform", "preference_level", "has_account", "notes"}).
			AddRow("u-1", "alice", "signal", 9, true, "").
			AddRow("u-1", "alice", "whatsapp", 8, true, "family"))

	g, err := s.CreateGroup(ctx, "family", "sunday call")
	require.NoError(t, err)
	require.NoError(t, s.AddGroupMember(ctx, g.ID, "u-1"))
	require.NoError(t, s.AddGroupMember(ctx, g.ID, "u-1"))

	n, err := s.CountGroupMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := s.GetGroupPreferences(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.GroupPreference{
		{MemberID: "u-1", MemberName: "alice", Platform: "signal", PreferenceLevel: 9, HasAccount: true},
		{MemberID: "u-1", MemberName: "alice", Platform: "whatsapp", PreferenceLevel: 8, HasAccount: true, Notes: "family"},
	}, rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddGroupMemberForeignKeys(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectExec(q(insertMemberSQL)).WithArgs("g-x", "u-1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "group_members_group_id_fkey"})
	mock.ExpectExec(q(insertMemberSQL)).WithArgs("g-1", "u-x").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "group_members_user_id_fkey"})

	err := s.AddGroupMember(context.Background(), "g-x", "u-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeGroupNotFound))
	err = s.AddGroupMember(context.Background(), "g-1", "u-x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetGroupNotFound(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(q(selectGroupSQL)).WithArgs("g-x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}))

	_, err := s.GetGroup(context.Background(), "g-x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeGroupNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Decisions & Schedules
// ==========================

func TestPostgresStore_Decisions(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(q(insertDecisionSQL)).
		WithArgs(sqlmock.AnyArg(), "g-1", "signal", "Scheduled via signal", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(q(listDecisionsSQL)).WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "chosen_platform", "reason", "decided_at"}).
			AddRow("d-2", "g-1", "signal", "Scheduled via signal", testNow).
			AddRow("d-1", "g-1", "slack", "", testNow.Add(-time.Hour)))

	d, err := s.SaveDecision(ctx, models.Decision{GroupID: "g-1", ChosenPlatform: "signal", Reason: "Scheduled via signal"})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)

	list, err := s.ListDecisions(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d-2", "d-1"}, []string{list[0].ID, list[1].ID})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Schedules(t *testing.T) {
	s, mock, db := newMockStore(t)
	defer db.Close()
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	cols := []string{"id", "group_id", "platform", "scheduled_at", "duration_minutes", "notes", "status", "created_at", "updated_at"}

	mock.ExpectExec(q(insertScheduleSQL)).
		WithArgs(sqlmock.AnyArg(), "g-1", "discord", at, 60, "", "scheduled", testNow, testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(q(updateScheduleSQL)).WithArgs("s-1", "cancelled", testNow).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s-1", "g-1", "discord", at, 60, "", "cancelled", testNow, testNow))
	mock.ExpectQuery(q(updateScheduleSQL)).WithArgs("s-x", "cancelled", testNow).
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(q(listSchedulesSQL)).WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("s-1", "g-1", "discord", at, 60, "", "cancelled", testNow, testNow))

	sc, err := s.CreateSchedule(ctx, models.Schedule{GroupID: "g-1", Platform: "discord", ScheduledAt: at})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, sc.Status)

	updated, err := s.UpdateScheduleStatus(ctx, "s-1", models.ScheduleStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCancelled, updated.Status)

	_, err = s.UpdateScheduleStatus(ctx, "s-x", models.ScheduleStatusCancelled)
	assert.True(t, errors.HasCode(err, errors.ErrCodeScheduleNotFound))

	list, err := s.ListSchedules(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
