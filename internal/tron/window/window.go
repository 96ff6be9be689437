// Package window keeps the bounded, height-ordered set of classified blocks.
package window

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

// DefaultCapacity is the number of highest heights a window retains.
const DefaultCapacity = 150

// Window is a set of classified blocks keyed by height, highest first.
type Window []model.ClassifiedBlock

// Merge places incoming ahead of existing, keeps the first block seen for
// every height, sorts by height descending and keeps the capacity highest.
// Neither argument is modified.
func Merge(existing Window, incoming []model.ClassifiedBlock, capacity int) Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	seen := make(map[uint64]struct{}, len(incoming)+len(existing))
	merged := make(Window, 0, len(incoming)+len(existing))
	for _, src := range [][]model.ClassifiedBlock{incoming, existing} {
		for _, b := range src {
			if _, ok := seen[b.Height]; ok {
				continue
			}
			seen[b.Height] = struct{}{}
			merged = append(merged, b)
		}
	}

	slices.SortFunc(merged, func(a, b model.ClassifiedBlock) int {
		return cmp.Compare(b.Height, a.Height)
	})
	if len(merged) > capacity {
		merged = slices.Clip(merged[:capacity])
	}
	return merged
}

// FromBlocks builds a window from scratch.
func FromBlocks(blocks []model.ClassifiedBlock, capacity int) Window {
	return Merge(nil, blocks, capacity)
}

// Top returns the highest height held, or 0 for an empty window.
func (w Window) Top() uint64 {
	if len(w) == 0 {
		return 0
	}
	return w[0].Height
}

// Contains reports whether height is held.
func (w Window) Contains(height uint64) bool {
	_, ok := slices.BinarySearchFunc(w, height, func(b model.ClassifiedBlock, h uint64) int {
		return cmp.Compare(h, b.Height)
	})
	return ok
}

// Ascending returns the blocks oldest first.
func (w Window) Ascending() []model.ClassifiedBlock {
	out := slices.Clone([]model.ClassifiedBlock(w))
	slices.Reverse(out)
	return out
}

// Filter returns the blocks whose decimal height contains query or whose
// hash contains it, case-insensitively. An empty query matches everything.
func (w Window) Filter(query string) Window {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make(Window, 0, len(w))
	for _, b := range w {
		if query == "" ||
			strings.Contains(strconv.FormatUint(b.Height, 10), query) ||
			strings.Contains(strings.ToLower(b.Hash), query) {
			out = append(out, b)
		}
	}
	return out
}
