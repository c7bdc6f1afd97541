// Package cache provides Redis utilities: client setup, cache-aside helpers and key naming.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"farmconnect/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout   = 5 * time.Second
	slowThreshold = 250 * time.Millisecond
)

// observeHook times every command and counts failures. redis.Nil is a miss,
// not a failure.
type observeHook struct{}

func (observeHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (observeHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		observe(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

func (observeHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		observe(ctx, "pipeline", time.Since(start), err)
		return err
	}
}

func observe(ctx context.Context, name string, took time.Duration, err error) {
	middleware.RedisCommandLatency.WithLabelValues(name).Observe(took.Seconds())
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(name).Inc()
	}
	if took > slowThreshold {
		slog.WarnContext(ctx, "slow redis command", slog.String("command", name), slog.Duration("took", took))
	}
}

// options accepts a bare host:port or a redis:// URL.
func options(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// Connect dials addr and pings it. An empty addr means Redis is not
// configured and yields a nil client without error.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}
	opts, err := options(addr)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid address: %w", err)
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(observeHook{})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
