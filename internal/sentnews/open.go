package sentnews

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/tickerwatch/internal/config"
	"github.com/rickgao/tickerwatch/internal/database"
)

// Open connects the configured driver and initializes its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var store Store

	switch cfg.Driver {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = NewPostgresStore(pool, nil)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = NewRedisStore(client, cfg.Redis.KeyPrefix, nil)
	case "memory":
		store = NewMemoryStore(nil)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init %s store: %w", cfg.Driver, err)
	}

	return store, nil
}
