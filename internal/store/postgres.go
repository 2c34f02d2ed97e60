package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"getconnected/internal/common/errors"
	"getconnected/internal/common/logger"
	"getconnected/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_preferences (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	platform TEXT NOT NULL,
	preference_level INTEGER NOT NULL DEFAULT 5,
	has_account BOOLEAN NOT NULL DEFAULT TRUE,
	notes TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, platform)
);
CREATE TABLE IF NOT EXISTS groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE (group_id, user_id)
);
CREATE TABLE IF NOT EXISTS group_decisions (
	id TEXT PRIMARY KEY,
	group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	chosen_platform TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	decided_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS group_schedules (
	id TEXT PRIMARY KEY,
	group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	platform TEXT NOT NULL,
	scheduled_at TIMESTAMPTZ NOT NULL,
	duration_minutes INTEGER NOT NULL DEFAULT 60,
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'scheduled',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const (
	insertUserSQL    = `INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)`
	selectUserSQL    = `SELECT id, name, email, created_at FROM users WHERE id = $1`
	selectUserByName = `SELECT id, name, email, created_at FROM users WHERE name = $1`
	listUsersSQL     = `SELECT id, name, email, created_at FROM users ORDER BY name, id`

	upsertPreferenceSQL = `INSERT INTO user_preferences (user_id, platform, preference_level, has_account, notes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, platform) DO UPDATE
SET preference_level = EXCLUDED.preference_level, has_account = EXCLUDED.has_account,
    notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`
	listPreferencesSQL = `SELECT user_id, platform, preference_level, has_account, notes, updated_at
FROM user_preferences WHERE user_id = $1 ORDER BY preference_level DESC, platform`

	insertGroupSQL  = `INSERT INTO groups (id, name, description, created_at) VALUES ($1, $2, $3, $4)`
	selectGroupSQL  = `SELECT id, name, description, created_at FROM groups WHERE id = $1`
	insertMemberSQL = `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT (group_id, user_id) DO NOTHING`
	listMembersSQL  = `SELECT u.id, u.name, u.email, u.created_at FROM users u
JOIN group_members gm ON gm.user_id = u.id WHERE gm.group_id = $1 ORDER BY u.name, u.id`
	countMembersSQL     = `SELECT COUNT(*) FROM group_members WHERE group_id = $1`
	groupPreferencesSQL = `SELECT u.id, u.name, up.platform, up.preference_level, up.has_account, up.notes
FROM group_members gm
JOIN users u ON u.id = gm.user_id
JOIN user_preferences up ON up.user_id = u.id
WHERE gm.group_id = $1
ORDER BY u.name, up.preference_level DESC, up.platform`

	insertDecisionSQL = `INSERT INTO group_decisions (id, group_id, chosen_platform, reason, decided_at) VALUES ($1, $2, $3, $4, $5)`
	listDecisionsSQL  = `SELECT id, group_id, chosen_platform, reason, decided_at FROM group_decisions
WHERE group_id = $1 ORDER BY decided_at DESC`

	insertScheduleSQL = `INSERT INTO group_schedules (id, group_id, platform, scheduled_at, duration_minutes, notes, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	listSchedulesSQL = `SELECT id, group_id, platform, scheduled_at, duration_minutes, notes, status, created_at, updated_at
FROM group_schedules WHERE group_id = $1 ORDER BY scheduled_at, id`
	updateScheduleSQL = `UPDATE group_schedules SET status = $2, updated_at = $3 WHERE id = $1
RETURNING id, group_id, platform, scheduled_at, duration_minutes, notes, status, created_at, updated_at`
)

// PostgresStore implements Store on PostgreSQL through lib/pq.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.NewQueryExecutionFailedError("EnsureSchema", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) queryFailed(op string, err error) error {
	s.logger.Error("database operation failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return errors.NewQueryExecutionFailedError(op, err)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// ==========================
// Users
// ==========================

func (s *PostgresStore) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	u := models.User{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: s.now()}
	if _, err := s.db.ExecContext(ctx, insertUserSQL, u.ID, u.Name, u.Email, u.CreatedAt); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return models.User{}, errors.NewUserAlreadyExistsError(name)
		}
		return models.User{}, s.queryFailed("CreateUser", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	return u, err
}

func (s *PostgresStore) getUser(ctx context.Context, op, query, ref string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, ref))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.NewUserNotFoundError(ref)
		}
		return models.User{}, s.queryFailed(op, err)
	}
	return u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, "GetUser", selectUserSQL, id)
}

func (s *PostgresStore) GetUserByName(ctx context.Context, name string) (models.User, error) {
	return s.getUser(ctx, "GetUserByName", selectUserByName, name)
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsers(ctx, "ListUsers", listUsersSQL)
}

func (s *PostgresStore) listUsers(ctx context.Context, op, query string, args ...interface{}) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.queryFailed(op, err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, s.queryFailed(op, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailed(op, err)
	}
	return out, nil
}

// ==========================
// Preferences
// ==========================

func (s *PostgresStore) UpsertPreference(ctx context.Context, p models.Preference) (models.Preference, error) {
	p.UpdatedAt = s.now()
	_, err := s.db.ExecContext(ctx, upsertPreferenceSQL,
		p.UserID, p.Platform, p.PreferenceLevel, p.HasAccount, p.Notes, p.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return models.Preference{}, errors.NewUserNotFoundError(p.UserID)
		}
		return models.Preference{}, s.queryFailed("UpsertPreference", err)
	}
	return p, nil
}

func (s *PostgresStore) ListUserPreferences(ctx context.Context, userID string) ([]models.Preference, error) {
	rows, err := s.db.QueryContext(ctx, listPreferencesSQL, userID)
	if err != nil {
		return nil, s.queryFailed("ListUserPreferences", err)
	}
	defer rows.Close()

	out := []models.Preference{}
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.UserID, &p.Platform, &p.PreferenceLevel, &p.HasAccount, &p.Notes, &p.UpdatedAt); err != nil {
			return nil, s.queryFailed("ListUserPreferences", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailed("ListUserPreferences", err)
	}
	return out, nil
}

// ==========================
// Groups
// ==========================

func (s *PostgresStore) CreateGroup(ctx context.Context, name, description string) (models.Group, error) {
	g := models.Group{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: s.now()}
	if _, err := s.db.ExecContext(ctx, insertGroupSQL, g.ID, g.Name, g.Description, g.CreatedAt); err != nil {
		return models.Group{}, s.queryFailed("CreateGroup", err)
	}
	return g, nil
}

func (s *PostgresStore) GetGroup(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	err := s.db.QueryRowContext(ctx, selectGroupSQL, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.Group{}, errors.NewGroupNotFoundError(id)
		}
		return models.Group{}, s.queryFailed("GetGroup", err)
	}
	return g, nil
}

func (s *PostgresStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.db.ExecContext(ctx, insertMemberSQL, groupID, userID); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			if pqErr.Constraint == "group_members_group_id_fkey" {
				return errors.NewGroupNotFoundError(groupID)
			}
			return errors.NewUserNotFoundError(userID)
		}
		return s.queryFailed("AddGroupMember", err)
	}
	return nil
}

func (s *PostgresStore) ListGroupMembers(ctx context.Context, groupID string) ([]models.User, error) {
	return s.listUsers(ctx, "ListGroupMembers", listMembersSQL, groupID)
}

func (s *PostgresStore) CountGroupMembers(ctx context.Context, groupID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countMembersSQL, groupID).Scan(&n); err != nil {
		return 0, s.queryFailed("CountGroupMembers", err)
	}
	return n, nil
}

func (s *PostgresStore) GetGroupPreferences(ctx context.Context, groupID string) ([]models.GroupPreference, error) {
	rows, err := s.db.QueryContext(ctx, groupPreferencesSQL, groupID)
	if err != nil {
		return nil, s.queryFailed("GetGroupPreferences", err)
	}
	defer rows.Close()

	out := []models.GroupPreference{}
	for rows.Next() {
		var gp models.GroupPreference
		if err := rows.Scan(&gp.MemberID, &gp.MemberName, &gp.Platform, &gp.PreferenceLevel, &gp.HasAccount, &gp.Notes); err != nil {
			return nil, s.queryFailed("GetGroupPreferences", err)
		}
		out = append(out, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailed("GetGroupPreferences", err)
	}
	return out, nil
}

// ==========================
// Decisions
// ==========================

func (s *PostgresStore) SaveDecision(ctx context.Context, d models.Decision) (models.Decision, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = s.now()
	}
	if _, err := s.db.ExecContext(ctx, insertDecisionSQL, d.ID, d.GroupID, d.ChosenPlatform, d.Reason, d.DecidedAt); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return models.Decision{}, errors.NewGroupNotFoundError(d.GroupID)
		}
		return models.Decision{}, s.queryFailed("SaveDecision", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDecisions(ctx context.Context, groupID string) ([]models.Decision, error) {
	rows, err := s.db.QueryContext(ctx, listDecisionsSQL, groupID)
	if err != nil {
		return nil, s.queryFailed("ListDecisions", err)
	}
	defer rows.Close()

	out := []models.Decision{}
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.GroupID, &d.ChosenPlatform, &d.Reason, &d.DecidedAt); err != nil {
			return nil, s.queryFailed("ListDecisions", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailed("ListDecisions", err)
	}
	return out, nil
}

// ==========================
// Schedules
// ==========================

func (s *PostgresStore) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.Status == "" {
		sc.Status = models.ScheduleStatusScheduled
	}
	if sc.DurationMinutes == 0 {
		sc.DurationMinutes = models.DefaultScheduleMinutes
	}
	now := s.now()
	sc.CreatedAt, sc.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, insertScheduleSQL,
		sc.ID, sc.GroupID, sc.Platform, sc.ScheduledAt, sc.DurationMinutes, sc.Notes, sc.Status, sc.CreatedAt, sc.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return models.Schedule{}, errors.NewGroupNotFoundError(sc.GroupID)
		}
		return models.Schedule{}, s.queryFailed("CreateSchedule", err)
	}
	return sc, nil
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var sc models.Schedule
	err := row.Scan(&sc.ID, &sc.GroupID, &sc.Platform, &sc.ScheduledAt, &sc.DurationMinutes,
		&sc.Notes, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt)
	return sc, err
}

func (s *PostgresStore) ListSchedules(ctx context.Context, groupID string) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, listSchedulesSQL, groupID)
	if err != nil {
		return nil, s.queryFailed("ListSchedules", err)
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, s.queryFailed("ListSchedules", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailed("ListSchedules", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateScheduleStatus(ctx context.Context, id, status string) (models.Schedule, error) {
	sc, err := scanSchedule(s.db.QueryRowContext(ctx, updateScheduleSQL, id, status, s.now()))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, errors.NewScheduleNotFoundError(id)
		}
		return models.Schedule{}, s.queryFailed("UpdateScheduleStatus", err)
	}
	return sc, nil
}
