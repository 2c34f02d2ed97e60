package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"getconnected/internal/common/config"
	"getconnected/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ==========================
// Helpers
// ==========================

func flakyTarget(failures int, calls *int) Target {
	return Target{
		Name: "flaky",
		Ping: func(context.Context) error {
			*calls++
			if *calls <= failures {
				return errors.New("connection refused")
			}
			return nil
		},
	}
}

func fastPolicy(attempts uint) WaitPolicy {
	return WaitPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, PingTimeout: time.Second}
}

// ==========================
// WaitFor
// ==========================

func TestWaitFor_SucceedsAfterTransientFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calls := 0

	err := WaitFor(context.Background(), flakyTarget(2, &calls), fastPolicy(5), logger.NewZapAdapter(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	retries := logs.FilterMessage("backing service not ready, retrying").All()
	require.Len(t, retries, 2)
	assert.Equal(t, "flaky", retries[0].ContextMap()["target"])
	assert.Len(t, logs.FilterMessage("backing service ready").All(), 1)
}

func TestWaitFor_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), flakyTarget(10, &calls), fastPolicy(3), logger.NewNoOpLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flaky unreachable after 3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 3, calls)
}

func TestWaitFor_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	policy := WaitPolicy{MaxAttempts: 5, InitialInterval: time.Hour, PingTimeout: time.Second}

	err := WaitFor(ctx, flakyTarget(10, &calls), policy, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, calls, 1)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.StartupConfig{MaxAttempts: 4, InitialInterval: 250, PingTimeout: 1500})
	assert.Equal(t, WaitPolicy{MaxAttempts: 4, InitialInterval: 250 * time.Millisecond, PingTimeout: 1500 * time.Millisecond}, p)
}

// ==========================
// Clients
// ==========================

func TestPostgresTarget_Pings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	target := PostgresTarget(db)
	assert.Equal(t, "postgres", target.Name)
	require.NoError(t, target.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres_AppliesPoolSettings(t *testing.T) {
	db, err := OpenPostgres(config.PostgresConfig{
		Host: "127.0.0.1", Port: 1, User: "u", Database: "d", SSLMode: "disable",
		MaxConnections: 3, MaxIdle: 1, ConnMaxLifetime: 60000, ConnMaxIdleTime: 1000,
	})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 3, db.Stats().MaxOpenConnections)
}

func TestNewRedisClient_UsesConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedisClient(config.RedisConfig{
		Address: mr.Addr(), PoolSize: 4, DialTimeout: 1000, ReadTimeout: 250, WriteTimeout: 250,
	})
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, 4, opts.PoolSize)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)

	target := RedisTarget(client)
	assert.NoError(t, target.Ping(context.Background()))
	mr.Close()
	assert.Error(t, target.Ping(context.Background()))
}
