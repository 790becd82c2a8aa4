// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package redis connects the optional REDIS_URL instance. Tubely keeps only
// the fixed-window counters of the credential endpoints there, so every API
// replica enforces the same budget.
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	poolSize     = 8
	opTimeout    = 2 * time.Second
	dialTimeout  = 3 * time.Second
	clientPrefix = "tubely"
)

// NewClient dials redisURL and pings it once. The URL may carry the database
// number and credentials, as accepted by [redis.ParseURL].
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_invalid: %w", err)
	}

	options.ClientName = clientPrefix
	options.PoolSize = poolSize
	options.DialTimeout = dialTimeout
	options.ReadTimeout = opTimeout
	options.WriteTimeout = opTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected", slog.String("addr", options.Addr), slog.Int("db", options.DB))
	return client, nil
}

// Ping backs the readiness probe.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, opTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}

// # Window Counting

// WindowCounter implements middleware.Counter on Redis keys that expire with
// their window.
type WindowCounter struct {
	client redis.Cmdable
}

// NewWindowCounter wraps client.
func NewWindowCounter(client redis.Cmdable) *WindowCounter {
	return &WindowCounter{client: client}
}

// Incr bumps key and returns the hits so far in the running window. The
// expiry is armed only by the first hit; INCR and EXPIRE NX share one MULTI.
func (counter *WindowCounter) Incr(context stdctx.Context, key string, window time.Duration) (int64, error) {
	var hits *redis.IntCmd

	_, err := counter.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		hits = pipe.Incr(context, key)
		pipe.ExpireNX(context, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_window_incr_failed: %w", err)
	}
	return hits.Val(), nil
}
