// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avocado-market/avocado-api/internal/config"
)

const (
	redisConnectAttempts = 5
	redisOpTimeout       = 3 * time.Second
)

// Redis backs the access profile cache, OAuth state, rate limits and
// the order event channel.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.ReadTimeout = redisOpTimeout
	opts.WriteTimeout = redisOpTimeout

	r := &Redis{Client: redis.NewClient(opts)}
	if err := r.connect(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // startup failure
		return nil, err
	}

	return r, nil
}

// connect retries the first ping while the server is still starting.
func (r *Redis) connect(ctx context.Context) error {
	var err error
	backoff := 250 * time.Millisecond

	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		if err = r.Ping(ctx); err == nil {
			return nil
		}
		if attempt == redisConnectAttempts {
			break
		}

		slog.Warn("redis not ready", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(jitteredDuration(backoff)):
		}
		backoff *= 2
	}

	return fmt.Errorf("connect redis after %d attempts: %w", redisConnectAttempts, err)
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
