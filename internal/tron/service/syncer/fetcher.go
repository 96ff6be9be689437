package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/clock"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/outcome"
	"github.com/goodnatureofminers/hashroad-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// blockFetcher fetches and classifies blocks by height, dropping failures.
type blockFetcher struct {
	source     Source
	classifier *outcome.Classifier
	sleep      clock.SleepFunc
	logger     *zap.Logger
}

func (f *blockFetcher) fetch(ctx context.Context, height uint64) (model.ClassifiedBlock, error) {
	b, err := f.source.BlockByHeight(ctx, height)
	if err != nil {
		return model.ClassifiedBlock{}, err
	}
	if b == nil {
		return model.ClassifiedBlock{}, fmt.Errorf("block %d: empty response", height)
	}
	return f.classifier.Classify(*b)
}

// sequential fetches heights one at a time with pause between requests.
// It returns the fetched blocks and the number of dropped heights.
func (f *blockFetcher) sequential(ctx context.Context, heights []uint64, pause time.Duration) ([]model.ClassifiedBlock, int, error) {
	blocks := make([]model.ClassifiedBlock, 0, len(heights))
	dropped := 0
	for i, h := range heights {
		if i > 0 {
			if err := f.sleep(ctx, pause); err != nil {
				return nil, 0, err
			}
		}
		b, err := f.fetch(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			f.logger.Warn("backfill height dropped", zap.Uint64("height", h), zap.Error(err))
			dropped++
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, dropped, nil
}

// batched fetches heights in concurrent batches of batchSize with pause
// between batches. It returns the fetched blocks and the number of dropped heights.
func (f *blockFetcher) batched(ctx context.Context, heights []uint64, batchSize int, pause time.Duration) ([]model.ClassifiedBlock, int, error) {
	blocks := make([]model.ClassifiedBlock, 0, len(heights))
	dropped := 0
	for i, batch := range workerpool.Chunk(heights, batchSize) {
		if i > 0 {
			if err := f.sleep(ctx, pause); err != nil {
				return nil, 0, err
			}
		}

		fetched := make([]model.ClassifiedBlock, len(batch))
		errs := workerpool.Each(ctx, len(batch), indexes(len(batch)), func(ctx context.Context, idx int) error {
			b, err := f.fetch(ctx, batch[idx])
			if err != nil {
				return err
			}
			fetched[idx] = b
			return nil
		})
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		for idx, err := range errs {
			if err != nil {
				f.logger.Warn("refresh height dropped", zap.Uint64("height", batch[idx]), zap.Error(err))
				dropped++
				continue
			}
			blocks = append(blocks, fetched[idx])
		}
	}
	return blocks, dropped, nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
