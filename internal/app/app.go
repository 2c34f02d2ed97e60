// Package app assembles the catalog, store and services from configuration.
// Both the HTTP server and the CLI start through it.
package app

import (
	"context"
	"fmt"
	"time"

	"getconnected/internal/catalog"
	"getconnected/internal/common/config"
	"getconnected/internal/common/database"
	"getconnected/internal/common/logger"
	"getconnected/internal/common/observability"
	"getconnected/internal/recommendation"
	"getconnected/internal/services/analysis"
	"getconnected/internal/services/scheduler"
	"getconnected/internal/store"
)

type Options struct {
	// Wait overrides database.startup from the configuration when its
	// MaxAttempts is set.
	Wait          database.WaitPolicy
	Observability []observability.Option
}

// Runtime holds everything a front end needs.
type Runtime struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Store     store.Store
	Engine    *recommendation.Engine
	Analysis  *analysis.Service
	Scheduler *scheduler.Scheduler
	Obs       *observability.Observability

	logger  logger.Logger
	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Runtime, error) {
	if opts.Wait.MaxAttempts == 0 {
		opts.Wait = database.PolicyFromConfig(cfg.Database.Startup)
	}

	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	log.Info("platform catalog loaded", map[string]interface{}{
		"platforms": cat.Len(),
		"version":   cat.Version(),
		"path":      cfg.Catalog.Path,
	})

	rt := &Runtime{Config: cfg, Catalog: cat, logger: log}
	st, err := rt.openStore(ctx, opts)
	if err != nil {
		rt.runClosers()
		return nil, err
	}
	rt.Store = st

	rt.Obs = observability.New(cfg.App.Name, log, opts.Observability...)
	rt.Engine = recommendation.NewEngine(cat)
	rt.Analysis = analysis.NewService(st, rt.Engine, rt.Obs, log)
	rt.Scheduler = scheduler.New(st, cat, log)
	return rt, nil
}

// LoadCatalog returns the built-in catalog unless a registry file is
// configured.
func LoadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.Path)
}

func (rt *Runtime) openStore(ctx context.Context, opts Options) (store.Store, error) {
	var st store.Store
	switch rt.Config.Storage.Driver {
	case config.StorageMemory, "":
		if rt.Config.Storage.SnapshotPath == "" {
			st = store.NewMemoryStore()
			break
		}
		ms, err := store.OpenMemoryStore(rt.Config.Storage.SnapshotPath)
		if err != nil {
			return nil, err
		}
		st = ms
	case config.StoragePostgres:
		db, err := database.OpenPostgres(rt.Config.Database.Postgres)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, db.Close)
		if err := database.WaitFor(ctx, database.PostgresTarget(db), opts.Wait, rt.logger); err != nil {
			return nil, err
		}
		ps := store.NewPostgresStore(db, rt.logger)
		if err := ps.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		st = ps
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", rt.Config.Storage.Driver)
	}
	rt.logger.Info("store ready", map[string]interface{}{"driver": rt.Config.Storage.Driver})

	if !rt.Config.Storage.Cache.Enabled {
		return st, nil
	}
	rc := database.NewRedisClient(rt.Config.Database.Redis)
	if err := database.WaitFor(ctx, database.RedisTarget(rc), opts.Wait, rt.logger); err != nil {
		// The cache is optional; serve straight from the store.
		rt.logger.Warn("redis unavailable, continuing without cache", map[string]interface{}{
			"address": rt.Config.Database.Redis.Address,
			"error":   err.Error(),
		})
		_ = rc.Close()
		return st, nil
	}
	rt.closers = append(rt.closers, rc.Close)
	ttl := time.Duration(rt.Config.Storage.Cache.TTL) * time.Second
	return store.NewCachedStore(st, rc, ttl, rt.logger), nil
}

// Close flushes the store, then releases telemetry and connections in
// reverse order of creation.
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if rt.Obs != nil {
		if err := rt.Obs.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := rt.runClosers(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (rt *Runtime) runClosers() error {
	var firstErr error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	rt.closers = nil
	return firstErr
}
