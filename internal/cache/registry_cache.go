package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"match-workers/internal/common/database"
	"match-workers/internal/common/logger"
	"match-workers/internal/matching"
	"match-workers/internal/models"
)

// SnapshotLoader is the source of truth for the domain registry.
type SnapshotLoader interface {
	Snapshot(ctx context.Context) (models.DomainRegistrySnapshot, error)
}

// RegistryCache serves registry snapshots through Redis and reuses the built
// Registry for as long as the snapshot version is unchanged.
type RegistryCache struct {
	loader SnapshotLoader
	rdb    redis.Cmdable
	key    string
	ttl    time.Duration
	logger logger.Logger

	mu    sync.Mutex
	built *matching.Registry
}

func NewRegistryCache(loader SnapshotLoader, rdb redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *RegistryCache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RegistryCache{loader: loader, rdb: rdb, key: prefix + ":registry", ttl: ttl, logger: log}
}

// Registry implements matching.RegistrySource.
func (c *RegistryCache) Registry(ctx context.Context) (*matching.Registry, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built == nil || c.built.Version() != snap.Version {
		c.built = matching.NewRegistry(snap)
	}
	return c.built, nil
}

func (c *RegistryCache) snapshot(ctx context.Context) (models.DomainRegistrySnapshot, error) {
	var snap models.DomainRegistrySnapshot
	err := database.GetJSON(ctx, c.rdb, c.key, &snap)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		c.logger.Warn("Registry cache read failed, loading from source", map[string]interface{}{"error": err})
	}

	snap, err = c.loader.Snapshot(ctx)
	if err != nil {
		return snap, err
	}
	if err := database.SetJSON(ctx, c.rdb, c.key, snap, c.ttl); err != nil {
		c.logger.Warn("Registry cache write failed", map[string]interface{}{"error": err})
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next call reloads it.
func (c *RegistryCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
