// Package database opens the PostgreSQL pool and redis client that back the
// store and its cache, and waits for them to answer at start-up.
package database

import (
	"database/sql"

	"getconnected/internal/common/config"
	"getconnected/internal/common/errors"

	_ "github.com/lib/pq"
)

// OpenPostgres configures the store's connection pool from cfg. sql.Open
// does not dial; WaitFor(ctx, PostgresTarget(db), ...) does.
func OpenPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(config.GetDuration(cfg.ConnMaxLifetime))
	db.SetConnMaxIdleTime(config.GetDuration(cfg.ConnMaxIdleTime))
	return db, nil
}

// PostgresTarget makes db waitable by name.
func PostgresTarget(db *sql.DB) Target {
	return Target{Name: "postgres", Ping: db.PingContext}
}
