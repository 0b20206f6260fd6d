package snapshot

import (
	"context"
	"fmt"

	"github.com/wonny/fundlens/backend/internal/contracts"
	"github.com/wonny/fundlens/backend/pkg/config"
	"github.com/wonny/fundlens/backend/pkg/database"
	"github.com/wonny/fundlens/backend/pkg/logger"
	"github.com/wonny/fundlens/backend/pkg/redis"
)

// Open builds the store selected by STORE_DRIVER. When rdb is enabled the
// store is wrapped with a Redis read cache. The returned func releases resources.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client, log *logger.Logger) (Store, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithStage(contracts.StageSnapshot.ShortName())

	var (
		store   Store
		closeFn = func() error { return nil }
	)

	switch cfg.StoreDriver {
	case config.StoreMemory:
		store = NewMemoryStore()

	case config.StorePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect database: %w", err)
		}
		store = NewPostgresStore(db.Pool)
		closeFn = func() error {
			db.Close()
			return nil
		}

	case config.StoreSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = s
		closeFn = s.Close

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if rdb != nil && rdb.Enabled() {
		store = NewCachedStore(store, rdb, log)
	}

	log.WithFields(map[string]interface{}{
		"driver": cfg.StoreDriver,
		"cached": rdb != nil && rdb.Enabled(),
	}).Info("Snapshot store opened")

	return store, closeFn, nil
}
