package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultMaxBlocks bounds the archive size.
const DefaultMaxBlocks = 100_000

// Repository stores blocks as JSON in a hash keyed by height, indexed by a
// sorted set scored by height.
type Repository struct {
	client    goredis.UniversalClient
	metrics   Metrics
	dataKey   string
	indexKey  string
	maxBlocks int64
}

// NewRepository constructs a Repository for network. A non-positive
// maxBlocks takes DefaultMaxBlocks.
func NewRepository(client goredis.UniversalClient, metrics Metrics, network model.Network, maxBlocks int) (*Repository, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if metrics == nil {
		return nil, errors.New("redis repository metrics is required")
	}
	if network == "" {
		return nil, errors.New("network is required")
	}
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}

	prefix := fmt.Sprintf("tron:%s:blocks", network)
	return &Repository{
		client:    client,
		metrics:   metrics,
		dataKey:   prefix + ":data",
		indexKey:  prefix + ":index",
		maxBlocks: int64(maxBlocks),
	}, nil
}

// InsertBlocks upserts blocks and trims the archive to the highest heights.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []model.ClassifiedBlock) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("insert_blocks", err, started)
	}()

	if len(blocks) == 0 {
		return nil
	}

	fields := make([]any, 0, len(blocks)*2)
	members := make([]goredis.Z, 0, len(blocks))
	for _, b := range blocks {
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode block %d: %w", b.Height, err)
		}
		member := strconv.FormatUint(b.Height, 10)
		fields = append(fields, member, payload)
		members = append(members, goredis.Z{Score: float64(b.Height), Member: member})
	}

	if _, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, r.dataKey, fields...)
		pipe.ZAdd(ctx, r.indexKey, members...)
		return nil
	}); err != nil {
		return fmt.Errorf("store blocks: %w", err)
	}

	return r.trim(ctx)
}

func (r *Repository) trim(ctx context.Context) error {
	count, err := r.client.ZCard(ctx, r.indexKey).Result()
	if err != nil {
		return fmt.Errorf("count blocks: %w", err)
	}
	if count <= r.maxBlocks {
		return nil
	}

	evicted, err := r.client.ZRange(ctx, r.indexKey, 0, count-r.maxBlocks-1).Result()
	if err != nil {
		return fmt.Errorf("select evicted blocks: %w", err)
	}
	if len(evicted) == 0 {
		return nil
	}

	members := make([]any, len(evicted))
	for i, m := range evicted {
		members[i] = m
	}
	if _, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HDel(ctx, r.dataKey, evicted...)
		pipe.ZRem(ctx, r.indexKey, members...)
		return nil
	}); err != nil {
		return fmt.Errorf("evict blocks: %w", err)
	}
	return nil
}

// RecentBlocks returns up to limit blocks, highest height first.
func (r *Repository) RecentBlocks(ctx context.Context, limit int) (blocks []model.ClassifiedBlock, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("recent_blocks", err, started)
	}()

	if limit <= 0 {
		return []model.ClassifiedBlock{}, nil
	}

	heights, err := r.client.ZRevRange(ctx, r.indexKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(heights) == 0 {
		return []model.ClassifiedBlock{}, nil
	}

	values, err := r.client.HMGet(ctx, r.dataKey, heights...).Result()
	if err != nil {
		return nil, fmt.Errorf("read blocks: %w", err)
	}

	blocks = make([]model.ClassifiedBlock, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var b model.ClassifiedBlock
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decode block %s: %w", heights[i], err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Stats aggregates every archived block.
func (r *Repository) Stats(ctx context.Context) (stats model.ArchiveStats, err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("stats", err, started)
	}()

	values, err := r.client.HVals(ctx, r.dataKey).Result()
	if err != nil {
		return model.ArchiveStats{}, fmt.Errorf("read blocks: %w", err)
	}

	for _, raw := range values {
		var b model.ClassifiedBlock
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return model.ArchiveStats{}, fmt.Errorf("decode block: %w", err)
		}
		if stats.Total == 0 || b.Height < stats.FirstHeight {
			stats.FirstHeight = b.Height
		}
		if b.Height > stats.LastHeight {
			stats.LastHeight = b.Height
		}
		stats.Total++
		if b.Parity == model.Odd {
			stats.Odd++
		} else {
			stats.Even++
		}
		if b.SizeClass == model.Big {
			stats.Big++
		} else {
			stats.Small++
		}
	}
	return stats, nil
}

// Clear removes every archived block.
func (r *Repository) Clear(ctx context.Context) (err error) {
	started := time.Now()
	defer func() {
		r.metrics.Observe("clear", err, started)
	}()

	if err := r.client.Del(ctx, r.dataKey, r.indexKey).Err(); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	return nil
}
