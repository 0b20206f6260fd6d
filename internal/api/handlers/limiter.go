package handlers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/fundlens/backend/pkg/redis"
)

// UploadLimiter decides whether a client may upload another file
type UploadLimiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}

// RedisUploadLimiter shares the upload budget across API instances
type RedisUploadLimiter struct {
	limiter   *redis.RateLimiter
	perMinute int
}

// NewRedisUploadLimiter creates a sliding-window limiter backed by Redis
func NewRedisUploadLimiter(client *redis.Client, perMinute int) *RedisUploadLimiter {
	return &RedisUploadLimiter{
		limiter:   redis.NewRateLimiter(client, "fundlens"),
		perMinute: perMinute,
	}
}

// Allow implements UploadLimiter
func (l *RedisUploadLimiter) Allow(ctx context.Context, client string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, redis.UploadRateLimit(client, l.perMinute))
	return allowed, err
}

// LocalUploadLimiter is the in-process fallback (token bucket per client)
type LocalUploadLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rate.Limiter
	perMinute int
}

// NewLocalUploadLimiter creates an in-process limiter
func NewLocalUploadLimiter(perMinute int) *LocalUploadLimiter {
	return &LocalUploadLimiter{
		clients:   make(map[string]*rate.Limiter),
		perMinute: perMinute,
	}
}

// Allow implements UploadLimiter
func (l *LocalUploadLimiter) Allow(_ context.Context, client string) (bool, error) {
	if l.perMinute <= 0 {
		return true, nil
	}

	l.mu.Lock()
	lim, ok := l.clients[client]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.clients[client] = lim
	}
	l.mu.Unlock()

	return lim.Allow(), nil
}
