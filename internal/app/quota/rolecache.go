package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// RoleLimitCache is an explicit read-through cache over the role-limit
// store, keyed per user. Call volumes are low, so a miss or a Redis outage
// simply falls through to the database; entries expire on their own and can
// be invalidated when the role subsystem changes a snapshot.
type RoleLimitCache struct {
	inner  repository.RoleLimitDAO
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRoleLimitCache wraps the role-limit store with a Redis cache.
func NewRoleLimitCache(inner repository.RoleLimitDAO, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RoleLimitCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleLimitCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

var _ LimitSource = (*RoleLimitCache)(nil)

func userKey(userID int64) string {
	return fmt.Sprintf("rolelimits:user:%d", userID)
}

// LimitsForUser returns the cached snapshot, fetching and caching on a miss.
func (c *RoleLimitCache) LimitsForUser(ctx context.Context, userID int64) (*model.RoleLimits, error) {
	key := userKey(userID)

	if c.client != nil {
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var limits model.RoleLimits
			if err := json.Unmarshal(raw, &limits); err == nil {
				return &limits, nil
			}
			// Unreadable entry; drop it and refetch.
			c.client.Del(ctx, key)
		} else if err != redis.Nil {
			c.logger.Warn("role limit cache read failed", "user_id", userID, "error", err)
		}
	}

	limits, err := c.inner.LimitsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(limits); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("role limit cache write failed", "user_id", userID, "error", err)
			}
		}
	}
	return limits, nil
}

// Invalidate drops the cached snapshot for a user.
func (c *RoleLimitCache) Invalidate(ctx context.Context, userID int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, userKey(userID)).Err()
}
