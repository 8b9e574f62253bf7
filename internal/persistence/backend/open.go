// Package backend opens the blob store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/config"
	"github.com/rajvarma2599/fitnessapp/internal/persistence"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/file"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/memory"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/postgres"
	redisstore "github.com/rajvarma2599/fitnessapp/internal/persistence/redis"
	"github.com/rajvarma2599/fitnessapp/internal/persistence/sqlite"
)

// Closer releases resources held by an opened backend.
type Closer func() error

func noopCloser() error { return nil }

// Open returns the BlobStore for cfg.StorageDriver and a Closer for it.
func Open(ctx context.Context, cfg config.Config, logger log.FieldLogger) (persistence.BlobStore, Closer, error) {
	logger = logger.WithField("storage_driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; workouts are lost on restart")
		return memory.NewStore(), noopCloser, nil

	case config.DriverFile:
		store, err := file.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		logger.WithField("data_dir", cfg.DataDir).Info("file storage ready")
		return store, noopCloser, nil

	case config.DriverSQLite:
		path := cfg.SQLitePath
		if path != ":memory:" && !filepath.IsAbs(path) {
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create data dir: %w", err)
			}
			path = filepath.Join(cfg.DataDir, path)
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		logger.WithField("path", path).Info("sqlite storage ready")
		return store, store.Close, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		logger.Info("postgres storage ready")
		return store, func() error { pool.Close(); return nil }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("redis storage ready")
		return redisstore.NewStore(client, cfg.RedisPrefix), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
