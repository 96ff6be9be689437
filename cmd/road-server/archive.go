package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/hashroad-backend/internal/metrics"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/archive"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/repository/clickhouse"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/repository/redis"
	goredis "github.com/redis/go-redis/v9"
)

// newArchiveRepository opens the configured archive backend. It returns a nil
// repository when archiving is disabled.
func newArchiveRepository(ctx context.Context, cfg config) (archive.Repository, func(), error) {
	switch cfg.ArchiveBackend {
	case "redis":
		client := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, func() {}, fmt.Errorf("ping redis: %w", err)
		}
		repo, err := redis.NewRepository(client, metrics.NewRepository("redis"), cfg.Network, cfg.RedisMaxBlocks)
		if err != nil {
			_ = client.Close()
			return nil, func() {}, fmt.Errorf("init redis repository: %w", err)
		}
		return repo, func() { _ = client.Close() }, nil
	case "clickhouse":
		if cfg.ClickhouseDSN == "" {
			return nil, func() {}, errors.New("ClickHouse DSN is required")
		}
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewRepository("clickhouse"), cfg.Network)
		if err != nil {
			return nil, func() {}, fmt.Errorf("init clickhouse repository: %w", err)
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
