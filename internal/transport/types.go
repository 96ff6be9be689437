// Package transport exposes the road engine over REST and gRPC health.
package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/service/syncer"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/window"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Engine is the read and control surface of the synchronization engine.
	Engine interface {
		Snapshot() syncer.Snapshot
		Window() window.Window
		Road(mode model.Mode) (model.Grid, error)
		Summary() window.Summary
		SetInterval(ctx context.Context, interval model.Interval) error
		Refresh(ctx context.Context) error
		SetFilter(query string) error
		ClearFilter(ctx context.Context) error
	}
	// Archive is the read and maintenance surface of the block archive.
	Archive interface {
		RecentBlocks(ctx context.Context, limit int) ([]model.ClassifiedBlock, error)
		Stats(ctx context.Context) (model.ArchiveStats, error)
		Clear(ctx context.Context) error
	}
	Metrics interface {
		Observe(method, route string, code int, started time.Time)
	}
)
