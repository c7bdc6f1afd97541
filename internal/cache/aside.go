package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"farmconnect/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userProfileKey  = "profile:user:%s"
	farmProfileKey  = "profile:farm:%s"
	storeProfileKey = "profile:store:%s"
)

// ProfileTTL bounds how stale a cached profile can be.
const ProfileTTL = 5 * time.Minute

func UserProfileKey(userID string) string {
	return fmt.Sprintf(userProfileKey, userID)
}

func FarmProfileKey(userID string) string {
	return fmt.Sprintf(farmProfileKey, userID)
}

func StoreProfileKey(userID string) string {
	return fmt.Sprintf(storeProfileKey, userID)
}

// Store is a JSON cache over Redis. A Store with a nil client is a no-op
// cache that always misses.
type Store struct {
	rdb  *redis.Client
	name string
}

// NewStore returns a Store labelled name in metrics.
func NewStore(rdb *redis.Client, name string) *Store {
	return &Store{rdb: rdb, name: name}
}

// Enabled reports whether the store is backed by Redis.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// then stores dest with ttl. Cache failures are logged and treated as misses.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := s.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		middleware.CacheLookups.WithLabelValues(s.name, "error").Inc()
		slog.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		middleware.CacheLookups.WithLabelValues(s.name, "hit").Inc()
		return nil
	case s.Enabled():
		middleware.CacheLookups.WithLabelValues(s.name, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes keys, logging failures.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidate failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
