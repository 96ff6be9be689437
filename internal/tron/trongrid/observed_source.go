package trongrid

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/chain"
)

// ObservedSource wraps a chain.Source with metrics instrumentation.
type ObservedSource struct {
	source     chain.Source
	rpcMetrics RPCMetrics
}

// NewObservedSource constructs an instrumented source.
func NewObservedSource(source chain.Source, rpcMetrics RPCMetrics) (*ObservedSource, error) {
	if source == nil {
		return nil, errors.New("trongrid source is required")
	}
	if rpcMetrics == nil {
		return nil, errors.New("trongrid rpc metrics is required")
	}
	return &ObservedSource{
		source:     source,
		rpcMetrics: rpcMetrics,
	}, nil
}

// Head returns the latest block.
func (s *ObservedSource) Head(ctx context.Context) (block *chain.Block, err error) {
	started := time.Now()
	defer func() {
		s.rpcMetrics.Observe("get_now_block", err, started)
	}()
	return s.source.Head(ctx)
}

// BlockByHeight returns the block at height.
func (s *ObservedSource) BlockByHeight(ctx context.Context, height uint64) (block *chain.Block, err error) {
	started := time.Now()
	defer func() {
		s.rpcMetrics.Observe("get_block_by_num", err, started)
	}()
	return s.source.BlockByHeight(ctx, height)
}
