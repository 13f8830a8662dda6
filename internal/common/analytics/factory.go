// internal/common/analytics/factory.go
package analytics

import (
	"context"
	"fmt"

	"scheme-finder/internal/common/config"
	"scheme-finder/internal/common/database"
)

// OpenStore builds the store named by cfg.Analytics.Store. The returned
// Pinger is nil for stores without a backing connection; closer releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, database.Pinger, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Analytics.Store {
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, noClose, err
		}
		store := NewPostgresStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, noClose, err
		}
		return store, pg, pg.Close, nil
	case "redis":
		rc := database.NewRedis(cfg.Database.Redis)
		return NewRedisStore(rc.Client, cfg.Analytics.RedisStream, cfg.Analytics.RedisMaxLen), rc, rc.Close, nil
	case "memory":
		return NewMemoryStore(), nil, noClose, nil
	case "none":
		return NoopStore{}, nil, noClose, nil
	default:
		return nil, nil, noClose, fmt.Errorf("unsupported analytics store %q", cfg.Analytics.Store)
	}
}
