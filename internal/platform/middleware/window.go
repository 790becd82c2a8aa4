// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/constants"
	"github.com/taibuivan/tubely/internal/platform/ctxutil"
	"github.com/taibuivan/tubely/internal/platform/respond"
)

// Counter is a shared fixed-window hit counter (Redis in production).
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// WindowLimit caps requests per client IP and route inside a fixed window
// shared by every API instance.
//
// A nil counter disables the limit. Counter failures let the request through
// with a warning, so an unreachable Redis never locks users out.
func WindowLimit(counter Counter, limit int, window time.Duration, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			key := prefix + request.URL.Path + ":" + RealIP(request)

			hits, err := counter.Incr(ctx, key, window)
			if err != nil {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "window_limit_unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(writer, request)
				return
			}

			if hits > int64(limit) {
				retryAfter := int(math.Ceil(window.Seconds()))
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// MemoryCounter is a process-local [Counter] used when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
}

type memoryWindow struct {
	hits    int64
	expires time.Time
}

// NewMemoryCounter creates an empty in-process window counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]memoryWindow)}
}

// Incr implements [Counter].
func (counter *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := time.Now()
	current, found := counter.windows[key]
	if !found || now.After(current.expires) {
		current = memoryWindow{expires: now.Add(window)}

		// Expired windows are dropped lazily on the write path.
		for other, entry := range counter.windows {
			if now.After(entry.expires) {
				delete(counter.windows, other)
			}
		}
	}

	current.hits++
	counter.windows[key] = current
	return current.hits, nil
}
