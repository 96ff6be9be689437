package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/clock"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/outcome"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/road"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/window"
	"github.com/lightningnetwork/lnd/ticker"
	"go.uber.org/zap"
)

// Snapshot is a point-in-time view of the engine state.
type Snapshot struct {
	Status    Status         `json:"status"`
	PollState string         `json:"pollState"`
	Interval  model.Interval `json:"interval"`
	Filter    string         `json:"filter,omitempty"`
	Size      int            `json:"size"`
	Top       uint64         `json:"top"`
	Revision  uint64         `json:"revision"`
	// Error is the last failure of a full refresh.
	Error string `json:"error,omitempty"`
	// PollError is the last failure of a background poll pass.
	PollError string `json:"pollError,omitempty"`
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTicker replaces the poll ticker.
func WithTicker(t ticker.Ticker) Option {
	return func(e *Engine) {
		e.ticker = t
	}
}

// WithSleep replaces the pause used between fetches.
func WithSleep(sleep clock.SleepFunc) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// Engine owns the window. Poll ticks merge backfilled blocks into it and
// refreshes replace it; both are tagged with a generation so that a pass
// started before a newer refresh never overwrites its result.
type Engine struct {
	logger  *zap.Logger
	cfg     Config
	source  Source
	sink    Sink
	metrics Metrics
	fetcher *blockFetcher
	sleep   clock.SleepFunc
	ticker  ticker.Ticker
	wake    chan struct{}
	roads   *road.Cache

	pollState atomic.Int32

	// notifyMu orders status notifications.
	notifyMu  sync.Mutex
	listeners []func(Status)

	mu          sync.RWMutex
	window      window.Window
	filtered    window.Window
	filter      string
	interval    model.Interval
	generation  uint64
	revision    uint64
	ready       bool
	refreshing  int
	backfilling bool
	lastErr     error
	pollErr     error
	status      Status
}

// NewEngine builds an Engine. A nil sink discards installed blocks.
func NewEngine(
	source Source,
	classifier *outcome.Classifier,
	sink Sink,
	metrics Metrics,
	logger *zap.Logger,
	cfg Config,
	opts ...Option,
) (*Engine, error) {
	if source == nil {
		return nil, errors.New("syncer source is required")
	}
	if metrics == nil {
		return nil, errors.New("syncer metrics is required")
	}
	cfg = cfg.withDefaults()
	if _, err := model.ParseInterval(uint64(cfg.Interval)); err != nil {
		return nil, fmt.Errorf("initial interval: %w", err)
	}
	if classifier == nil {
		classifier = outcome.NewClassifier(nil)
	}

	e := &Engine{
		logger:   logger,
		cfg:      cfg,
		source:   source,
		sink:     sink,
		metrics:  metrics,
		sleep:    clock.SleepWithContext,
		wake:     make(chan struct{}, 1),
		roads:    road.NewCache(),
		interval: cfg.Interval,
		status:   StatusInitializing,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ticker == nil {
		e.ticker = ticker.New(cfg.PollPeriod)
	}
	e.fetcher = &blockFetcher{
		source:     source,
		classifier: classifier,
		sleep:      e.sleep,
		logger:     logger.Named("fetcher"),
	}
	return e, nil
}

// OnStatusChange registers fn and calls it with the current status. It is
// called again on every status change.
func (e *Engine) OnStatusChange(fn func(Status)) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.listeners = append(e.listeners, fn)
	e.mu.RLock()
	current := e.status
	e.mu.RUnlock()
	fn(current)
}

// Run performs the initial refresh and then polls on every tick until ctx is
// canceled. The ticker is paused while polling is suppressed.
func (e *Engine) Run(ctx context.Context) error {
	defer e.ticker.Stop()

	e.logger.Info("starting engine",
		zap.Duration("poll_period", e.cfg.PollPeriod),
		zap.Uint64("interval", uint64(e.currentInterval())),
	)
	if err := e.Refresh(ctx); err != nil && ctx.Err() == nil {
		e.logger.Error("initial refresh failed", zap.Error(err))
	}

	for {
		e.syncTicker()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
		case <-e.ticker.Ticks():
			if e.Tick(ctx) != TickEmpty {
				continue
			}
			if err := e.Refresh(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn("refresh of empty window failed", zap.Error(err))
			}
		}
	}
}

// syncTicker must only be called from Run.
func (e *Engine) syncTicker() {
	e.mu.RLock()
	suppressed := e.suppressedLocked()
	e.mu.RUnlock()

	if suppressed {
		e.ticker.Pause()
		return
	}
	e.ticker.Resume()
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Tick runs one reconciliation pass unless one is already in flight or
// polling is suppressed. Heights that fail to fetch are dropped from the pass.
func (e *Engine) Tick(ctx context.Context) (result TickOutcome) {
	if !e.pollState.CompareAndSwap(int32(PollIdle), int32(PollReconciling)) {
		e.metrics.ObserveTick(string(TickBusy))
		return TickBusy
	}
	defer func() {
		e.pollState.Store(int32(PollIdle))
		e.metrics.ObserveTick(string(result))
	}()

	e.mu.RLock()
	suppressed := e.suppressedLocked()
	empty := len(e.window) == 0
	gen := e.generation
	rc := ReconcileContext{
		Top:      e.window.Top(),
		Interval: e.interval,
		Limit:    e.cfg.Capacity,
	}
	e.mu.RUnlock()

	switch {
	case suppressed:
		return TickSuppressed
	case empty:
		return TickEmpty
	}

	started := time.Now()
	head, err := e.source.Head(ctx)
	if err != nil {
		e.metrics.ObservePass(passPoll, err, started)
		e.logger.Warn("poll head fetch failed", zap.Error(err))
		e.failPoll(gen, err)
		return TickHeadFailed
	}

	rc.Head = head.Height
	missed := MissedHeights(rc)
	if len(missed) == 0 {
		e.metrics.ObservePass(passPoll, nil, started)
		e.succeedPass(gen)
		return TickUpToDate
	}

	e.update(func() { e.backfilling = true })
	defer e.update(func() { e.backfilling = false })

	e.logger.Debug("backfilling",
		zap.Uint64("top", rc.Top),
		zap.Uint64("head", rc.Head),
		zap.Int("heights", len(missed)),
	)
	blocks, dropped, err := e.fetcher.sequential(ctx, missed, e.cfg.BackfillPause)
	if err != nil {
		e.metrics.ObservePass(passPoll, err, started)
		return TickFailed
	}
	e.metrics.ObserveHeights(passPoll, len(blocks), dropped)

	if len(blocks) == 0 {
		err = fmt.Errorf("backfill %d heights: %w", len(missed), ErrTotalFailure)
		e.metrics.ObservePass(passPoll, err, started)
		e.logger.Warn("poll pass failed", zap.Error(err))
		e.failPoll(gen, err)
		return TickFailed
	}

	if err := e.install(ctx, gen, blocks, false); err != nil {
		e.metrics.ObservePass(passPoll, err, started)
		e.logger.Debug("poll pass discarded", zap.Error(err))
		return TickStale
	}
	e.metrics.ObservePass(passPoll, nil, started)
	return TickBackfilled
}

// Refresh rebuilds the window from the current head. On failure the window is
// kept and the error is surfaced through Snapshot. A failure caused by ctx
// being canceled is returned but not surfaced.
func (e *Engine) Refresh(ctx context.Context) error {
	var (
		gen      uint64
		interval model.Interval
	)
	e.update(func() {
		e.generation++
		gen = e.generation
		interval = e.interval
		e.refreshing++
	})
	e.signal()
	defer func() {
		e.update(func() { e.refreshing-- })
		e.signal()
	}()

	started := time.Now()
	blocks, err := e.refresh(ctx, interval)
	if err == nil {
		err = e.install(ctx, gen, blocks, true)
	}
	e.metrics.ObservePass(passRefresh, err, started)

	switch {
	case errors.Is(err, ErrStaleRefresh):
		e.logger.Debug("refresh superseded", zap.Uint64("generation", gen))
		return err
	case err != nil && ctx.Err() != nil:
		e.logger.Info("refresh canceled", zap.Uint64("generation", gen), zap.Error(err))
		return err
	case err != nil:
		e.logger.Error("refresh failed", zap.Uint64("interval", uint64(interval)), zap.Error(err))
		e.failPass(gen, err)
		return err
	}

	e.logger.Info("window refreshed",
		zap.Uint64("interval", uint64(interval)),
		zap.Int("blocks", len(blocks)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

func (e *Engine) refresh(ctx context.Context, interval model.Interval) ([]model.ClassifiedBlock, error) {
	head, err := e.source.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head: %w", err)
	}

	heights := RefreshHeights(head.Height, interval, e.cfg.Samples)
	blocks, dropped, err := e.fetcher.batched(ctx, heights, e.cfg.BatchSize, e.cfg.BatchPause)
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveHeights(passRefresh, len(blocks), dropped)

	if len(blocks) == 0 {
		return nil, fmt.Errorf("refresh %d heights: %w", len(heights), ErrTotalFailure)
	}
	return blocks, nil
}

// install merges blocks into the window, or replaces it, unless gen is stale.
func (e *Engine) install(ctx context.Context, gen uint64, blocks []model.ClassifiedBlock, replace bool) error {
	var (
		stale bool
		next  window.Window
	)
	e.update(func() {
		if gen != e.generation {
			stale = true
			return
		}
		if replace {
			next = window.FromBlocks(blocks, e.cfg.Capacity)
		} else {
			next = window.Merge(e.window, blocks, e.cfg.Capacity)
		}
		e.window = next
		if e.filter != "" {
			e.filtered = next.Filter(e.filter)
		}
		e.revision++
		e.ready = true
		e.lastErr = nil
		e.pollErr = nil
	})
	if stale {
		return ErrStaleRefresh
	}

	e.metrics.ObserveWindow(len(next), next.Top())
	if e.sink != nil {
		kept := make([]model.ClassifiedBlock, 0, len(blocks))
		for _, b := range blocks {
			if next.Contains(b.Height) {
				kept = append(kept, b)
			}
		}
		if len(kept) > 0 {
			e.sink.Publish(ctx, kept)
		}
	}
	return nil
}

func (e *Engine) failPass(gen uint64, err error) {
	e.update(func() {
		if gen == e.generation {
			e.lastErr = err
		}
	})
}

// failPoll records a background poll failure without raising the refresh error.
func (e *Engine) failPoll(gen uint64, err error) {
	e.update(func() {
		if gen == e.generation {
			e.pollErr = err
		}
	})
}

func (e *Engine) succeedPass(gen uint64) {
	e.update(func() {
		if gen == e.generation {
			e.lastErr = nil
			e.pollErr = nil
		}
	})
}

// update applies fn under the write lock and notifies listeners when the
// status changed.
func (e *Engine) update(fn func()) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	fn()
	next := e.statusLocked()
	changed := next != e.status
	e.status = next
	e.mu.Unlock()

	if !changed {
		return
	}
	e.logger.Debug("status changed", zap.String("status", string(next)))
	for _, l := range e.listeners {
		l(next)
	}
}

func (e *Engine) statusLocked() Status {
	switch {
	case !e.ready:
		return StatusInitializing
	case e.refreshing > 0 || e.backfilling:
		return StatusSyncing
	default:
		return StatusStable
	}
}

func (e *Engine) suppressedLocked() bool {
	return e.filter != "" || e.refreshing > 0
}

func (e *Engine) currentInterval() model.Interval {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interval
}

// SetInterval switches the sampling interval and refreshes the window.
func (e *Engine) SetInterval(ctx context.Context, interval model.Interval) error {
	if _, err := model.ParseInterval(uint64(interval)); err != nil {
		return err
	}
	e.update(func() { e.interval = interval })
	e.logger.Info("interval changed", zap.Uint64("interval", uint64(interval)))
	return e.Refresh(ctx)
}

// SetFilter freezes the view to the window blocks matching query and
// suspends polling until ClearFilter.
func (e *Engine) SetFilter(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyFilter
	}
	e.update(func() {
		e.filter = query
		e.filtered = e.window.Filter(query)
		e.revision++
	})
	e.signal()
	return nil
}

// ClearFilter drops the filter, resumes polling and refreshes the window.
func (e *Engine) ClearFilter(ctx context.Context) error {
	e.update(func() {
		e.filter = ""
		e.filtered = nil
		e.revision++
	})
	e.signal()
	return e.Refresh(ctx)
}

func (e *Engine) viewLocked() window.Window {
	if e.filter != "" {
		return e.filtered
	}
	return e.window
}

// Window returns the current view, highest height first.
func (e *Engine) Window() window.Window {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.viewLocked())
}

// Road returns the grid of mode for the current view.
func (e *Engine) Road(mode model.Mode) (model.Grid, error) {
	e.mu.RLock()
	revision := e.revision
	view := e.viewLocked()
	e.mu.RUnlock()

	return e.roads.Get(revision, mode, view.Ascending)
}

// Summary returns the outcome counts of the current view.
func (e *Engine) Summary() window.Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return window.Summarize(e.viewLocked())
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Status:    e.status,
		PollState: PollState(e.pollState.Load()).String(),
		Interval:  e.interval,
		Filter:    e.filter,
		Size:      len(e.viewLocked()),
		Top:       e.window.Top(),
		Revision:  e.revision,
	}
	if e.lastErr != nil {
		s.Error = e.lastErr.Error()
	}
	if e.pollErr != nil {
		s.PollError = e.pollErr.Error()
	}
	return s
}

// PollState reports whether a poll pass is in flight.
func (e *Engine) PollState() PollState {
	return PollState(e.pollState.Load())
}
