package archive

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/pkg/batcher"
	"go.uber.org/zap"
)

const (
	DefaultFlushSize     = 200
	DefaultFlushInterval = 5 * time.Second

	publishTimeout = time.Second
)

// Config tunes an Archiver. Zero fields take the defaults.
type Config struct {
	FlushSize     int
	FlushInterval time.Duration
	// RPS caps flushes per second; zero disables the limit.
	RPS int
}

// Archiver batches published blocks into a Repository. Failures are logged
// and never reported back to the publisher.
type Archiver struct {
	logger  *zap.Logger
	metrics Metrics
	batcher *batcher.Batcher[model.ClassifiedBlock]
}

// NewArchiver constructs an Archiver writing into repo.
func NewArchiver(repo Repository, metrics Metrics, logger *zap.Logger, cfg Config) (*Archiver, error) {
	if repo == nil {
		return nil, errors.New("archive repository is required")
	}
	if metrics == nil {
		return nil, errors.New("archive metrics is required")
	}
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = DefaultFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}

	b := batcher.New(logger.Named("batcher"), repo.InsertBlocks, cfg.FlushSize, cfg.FlushInterval, cfg.RPS).
		WithFlushHook(metrics.ObserveFlush)

	return &Archiver{
		logger:  logger,
		metrics: metrics,
		batcher: b,
	}, nil
}

// Start begins flushing in the background.
func (a *Archiver) Start(ctx context.Context) {
	a.batcher.Start(ctx)
}

// Stop flushes what is queued and stops.
func (a *Archiver) Stop() {
	a.batcher.Stop()
}

// Publish queues blocks for archiving. Blocks that cannot be queued in time are dropped.
func (a *Archiver) Publish(ctx context.Context, blocks []model.ClassifiedBlock) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for i, b := range blocks {
		if err := a.batcher.Add(ctx, b); err != nil {
			dropped := len(blocks) - i
			a.metrics.ObserveDropped(dropped)
			a.logger.Warn("archive queue unavailable, blocks dropped",
				zap.Int("dropped", dropped),
				zap.Uint64("height", b.Height),
				zap.Error(err),
			)
			return
		}
	}
}
