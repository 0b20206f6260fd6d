package snapshot

import (
	"context"
	"errors"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/pkg/logger"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

// CachedStore caches Get results in Redis. Writes invalidate affected ids.
// 캐시 실패는 조회 실패로 이어지지 않음 (경고만 남김)
type CachedStore struct {
	Store
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedStore wraps inner with a Redis read cache
func NewCachedStore(inner Store, client *redis.Client, log *logger.Logger) *CachedStore {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedStore{
		Store:  inner,
		cache:  redis.NewCache(client, "fundlens"),
		logger: log,
	}
}

// Get implements Store
func (c *CachedStore) Get(ctx context.Context, id string) (*contracts.Snapshot, error) {
	var cached contracts.Snapshot
	found, err := c.cache.Get(ctx, redis.SnapshotKey(id), &cached)
	if err != nil {
		c.logger.WithError(err).Warn("Snapshot cache read failed")
	}
	if found {
		return &cached, nil
	}

	snap, err := c.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, redis.SnapshotKey(id), snap, redis.TTLLong); err != nil {
		c.logger.WithError(err).Warn("Snapshot cache write failed")
	}
	return snap, nil
}

// Add implements Store
func (c *CachedStore) Add(ctx context.Context, snap contracts.Snapshot, id, note string) (string, error) {
	got, err := c.Store.Add(ctx, snap, id, note)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, got)
	return got, nil
}

// SetActive implements Store
func (c *CachedStore) SetActive(ctx context.Context, id string) error {
	previous, err := c.Store.GetActive(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := c.Store.SetActive(ctx, id); err != nil {
		return err
	}

	if previous != nil {
		c.invalidate(ctx, previous.ID)
	}
	c.invalidate(ctx, id)
	return nil
}

// SoftDelete implements Store
func (c *CachedStore) SoftDelete(ctx context.Context, id string) error {
	if err := c.Store.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedStore) invalidate(ctx context.Context, id string) {
	if err := c.cache.Delete(ctx, redis.SnapshotKey(id)); err != nil {
		c.logger.WithError(err).WithField("snapshot_id", id).Warn("Snapshot cache invalidation failed")
	}
}
