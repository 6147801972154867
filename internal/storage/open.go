package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mpoksari/catering-api/internal/config"
)

// Backend is an opened Store with its health checks.
type Backend struct {
	Store  Store
	Checks map[string]func(ctx context.Context) error
	Close  func()
}

// Open connects the backend selected by cfg.StoreDriver. PostgreSQL is
// migrated before the pool is opened.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return &Backend{Store: NewMemory(), Close: func() {}}, nil

	case config.StorePostgres:
		if err := Migrate(cfg.DatabaseURL, cfg.MigrationsURL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return &Backend{
			Store:  NewPostgres(pool),
			Checks: map[string]func(context.Context) error{"postgres": pool.Ping},
			Close:  pool.Close,
		}, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return &Backend{
			Store: NewRedis(rdb, "catering:"),
			Checks: map[string]func(context.Context) error{
				"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			},
			Close: func() { rdb.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
