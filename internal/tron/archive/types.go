// Package archive persists every block installed in the window.
package archive

import (
	"context"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Repository stores archived blocks keyed by height.
	Repository interface {
		InsertBlocks(ctx context.Context, blocks []model.ClassifiedBlock) error
		RecentBlocks(ctx context.Context, limit int) ([]model.ClassifiedBlock, error)
		Stats(ctx context.Context) (model.ArchiveStats, error)
		Clear(ctx context.Context) error
	}
	Metrics interface {
		ObserveFlush(size int, err error, started time.Time)
		ObserveDropped(n int)
	}
)
