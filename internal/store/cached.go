package store

import (
	"context"
	stderrors "errors"
	"time"

	"getconnected/internal/common/logger"
	"getconnected/internal/models"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix     = "gc:user:"
	userNameKeyPrefix = "gc:username:"
	prefsKeyPrefix    = "gc:prefs:"
)

// CachedStore adds a redis read-through cache in front of user and
// preference lookups. Group rows and analysis results are never cached, so
// recommendations always see current preferences. Redis failures are logged
// and the wrapped store answers instead.
type CachedStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{Store: inner, redis: client, ttl: ttl, logger: log}
}

func (c *CachedStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if c.lookup(ctx, userKeyPrefix+id, &u) {
		return u, nil
	}
	u, err := c.Store.GetUser(ctx, id)
	if err != nil {
		return u, err
	}
	c.fill(ctx, userKeyPrefix+id, u)
	return u, nil
}

func (c *CachedStore) GetUserByName(ctx context.Context, name string) (models.User, error) {
	var u models.User
	if c.lookup(ctx, userNameKeyPrefix+name, &u) {
		return u, nil
	}
	u, err := c.Store.GetUserByName(ctx, name)
	if err != nil {
		return u, err
	}
	c.fill(ctx, userNameKeyPrefix+name, u)
	return u, nil
}

func (c *CachedStore) ListUserPreferences(ctx context.Context, userID string) ([]models.Preference, error) {
	var prefs []models.Preference
	if c.lookup(ctx, prefsKeyPrefix+userID, &prefs) {
		return prefs, nil
	}
	prefs, err := c.Store.ListUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, prefsKeyPrefix+userID, prefs)
	return prefs, nil
}

func (c *CachedStore) UpsertPreference(ctx context.Context, p models.Preference) (models.Preference, error) {
	saved, err := c.Store.UpsertPreference(ctx, p)
	if err != nil {
		return saved, err
	}
	if err := c.redis.Del(ctx, prefsKeyPrefix+p.UserID).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"key":   prefsKeyPrefix + p.UserID,
			"error": err.Error(),
		})
	}
	return saved, nil
}

// Close closes the wrapped store. The redis client is owned by the caller.
func (c *CachedStore) Close() error {
	return c.Store.Close()
}

func (c *CachedStore) lookup(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("cache entry unreadable", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *CachedStore) fill(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
