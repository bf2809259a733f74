package main

import (
	"context"
	"emailcount/internal/config"
	"emailcount/pkg/storage"
	"emailcount/pkg/storage/csvbackend"
	"emailcount/pkg/storage/jsonbackend"
	"emailcount/pkg/storage/postgres"
	"emailcount/pkg/storage/redisbackend"
	"emailcount/pkg/storage/sqlite"
	"emailcount/pkg/serrors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newSink opens the output backend selected in cfg for the run runID.
func newSink(ctx context.Context, cfg *config.Config, runID uuid.UUID) (storage.Sink, error) {
	switch cfg.Output.Backend {
	case "", config.BackendJSON:
		return jsonbackend.Open(cfg.Output.Path)
	case config.BackendStdout:
		return jsonbackend.NewWriter(os.Stdout), nil
	case config.BackendCSV:
		return csvbackend.Open(cfg.Output.Path)
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Output.Path, runID)
	case config.BackendPostgres:
		pg, err := getPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return postgres.NewSink(pg, runID), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()

			return nil, fmt.Errorf("could not ping redis: %w", err)
		}

		return redisbackend.New(rdb, runID.String(),
			redisbackend.WithPrefix(cfg.Redis.Prefix),
			redisbackend.WithTTL(cfg.Redis.TTL)), nil
	default:
		return nil, serrors.With(serrors.ErrBadRequest, "unknown output backend %q", cfg.Output.Backend)
	}
}
