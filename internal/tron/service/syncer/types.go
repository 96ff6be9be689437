// Package syncer keeps a window of classified blocks in step with the chain head.
package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/chain"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Source interface {
		Head(ctx context.Context) (*chain.Block, error)
		BlockByHeight(ctx context.Context, height uint64) (*chain.Block, error)
	}
	// Sink receives every block newly installed in the window.
	Sink interface {
		Publish(ctx context.Context, blocks []model.ClassifiedBlock)
	}
	Metrics interface {
		ObserveTick(outcome string)
		ObservePass(kind string, err error, started time.Time)
		ObserveHeights(kind string, fetched, dropped int)
		ObserveWindow(size int, top uint64)
	}
)
