// Package redisclient dials the Redis instance backing the mail outbox.
// The api server (producer) and the mail worker (consumer) both connect
// through here so queue tuning lives in one place.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/healseek/appointment-service/internal/config"
)

// Dial connects using the outbox settings from the app config and
// verifies the instance answers before handing the client out. The
// worker's blocking pops carry their own deadline, derived by go-redis
// from the pop timeout rather than from ReadTimeout.
func Dial(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		// enqueue bursts during appointment traffic are small; a modest
		// pool with a warm connection covers both binaries
		PoolSize:     8,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}

	return rdb, nil
}
