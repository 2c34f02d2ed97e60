// internal/common/config/config.go
package config

import "fmt"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address            string   `mapstructure:"address"`
	ReadTimeout        int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout       int      `mapstructure:"write_timeout"` // milliseconds
	ShutdownTimeout    int      `mapstructure:"shutdown_timeout"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the store backend and the optional redis cache.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// SnapshotPath persists the memory driver to a JSON file; empty keeps
	// it purely in memory.
	SnapshotPath string `mapstructure:"snapshot_path"`
	Cache        struct {
		Enabled bool `mapstructure:"enabled"`
		TTL     int  `mapstructure:"ttl"` // seconds
	} `mapstructure:"cache"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Startup  StartupConfig  `mapstructure:"startup"`
}

// PostgresConfig describes the store database and its pool. Durations are
// milliseconds.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	MaxConnections  int    `mapstructure:"max_connections"`
	MaxIdle         int    `mapstructure:"max_idle"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
	SSLMode         string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig describes the preference cache connection. Durations are
// milliseconds.
type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StartupConfig bounds how long the services wait for their backing stores.
type StartupConfig struct {
	MaxAttempts     int `mapstructure:"max_attempts"`
	InitialInterval int `mapstructure:"initial_interval"` // milliseconds
	PingTimeout     int `mapstructure:"ping_timeout"`     // milliseconds
}

// CatalogConfig points at an optional platform registry file. An empty path
// means the built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
