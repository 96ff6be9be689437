package syncer

import (
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/window"
)

const (
	DefaultPollPeriod    = 3 * time.Second
	DefaultSamples       = 60
	DefaultBatchSize     = 5
	DefaultBatchPause    = 200 * time.Millisecond
	DefaultBackfillPause = 100 * time.Millisecond

	passPoll    = "poll"
	passRefresh = "refresh"
)

// Config tunes an Engine. Zero counts and periods, and negative pauses, take
// the defaults.
type Config struct {
	PollPeriod    time.Duration
	Samples       int
	BatchSize     int
	BatchPause    time.Duration
	BackfillPause time.Duration
	Capacity      int
	Interval      model.Interval
}

func (c Config) withDefaults() Config {
	if c.PollPeriod <= 0 {
		c.PollPeriod = DefaultPollPeriod
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchPause < 0 {
		c.BatchPause = DefaultBatchPause
	}
	if c.BackfillPause < 0 {
		c.BackfillPause = DefaultBackfillPause
	}
	if c.Capacity <= 0 {
		c.Capacity = window.DefaultCapacity
	}
	if c.Interval == 0 {
		c.Interval = model.EveryBlock
	}
	return c
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		PollPeriod:    DefaultPollPeriod,
		Samples:       DefaultSamples,
		BatchSize:     DefaultBatchSize,
		BatchPause:    DefaultBatchPause,
		BackfillPause: DefaultBackfillPause,
		Capacity:      window.DefaultCapacity,
		Interval:      model.EveryBlock,
	}
}
