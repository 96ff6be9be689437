package syncer

import (
	"slices"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

// ReconcileContext is everything a poll pass needs to plan its backfill.
type ReconcileContext struct {
	// Top is the highest height in the window.
	Top uint64
	// Head is the current chain head height.
	Head uint64
	// Interval is the sampling interval selected when the pass started.
	Interval model.Interval
	// Limit caps the number of heights, keeping the highest.
	Limit int
}

// MissedHeights returns the aligned heights in (Top, Head], oldest first.
func MissedHeights(rc ReconcileContext) []uint64 {
	if rc.Head <= rc.Top || rc.Limit <= 0 {
		return nil
	}

	step := uint64(max(rc.Interval, model.EveryBlock))
	var heights []uint64
	for h := rc.Interval.AlignDown(rc.Head); h > rc.Top && len(heights) < rc.Limit; h -= step {
		heights = append(heights, h)
		if h < step {
			break
		}
	}
	slices.Reverse(heights)
	return heights
}

// RefreshHeights returns count heights stepping back by interval from head
// aligned down to interval, highest first. It stops early at genesis.
func RefreshHeights(head uint64, interval model.Interval, count int) []uint64 {
	step := uint64(max(interval, model.EveryBlock))
	start := interval.AlignDown(head)

	heights := make([]uint64, 0, max(count, 0))
	for i := 0; i < count; i++ {
		offset := uint64(i) * step
		if offset > start {
			break
		}
		heights = append(heights, start-offset)
	}
	return heights
}
