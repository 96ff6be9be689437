package road

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

// ErrUnknownMode rejects modes without a view.
var ErrUnknownMode = errors.New("unknown road mode")

// View binds a mode to its classifier and column height.
type View struct {
	Mode     model.Mode
	Classify Classifier
	Rows     int
}

var views = map[model.Mode]View{
	model.ModeTrend:      {Mode: model.ModeTrend, Classify: ByParity, Rows: TrendRows},
	model.ModeBeadParity: {Mode: model.ModeBeadParity, Classify: ByParity, Rows: BeadRows},
	model.ModeBeadSize:   {Mode: model.ModeBeadSize, Classify: BySize, Rows: BeadRows},
}

// ViewFor returns the view of mode.
func ViewFor(mode model.Mode) (View, error) {
	v, ok := views[mode]
	if !ok {
		return View{}, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	return v, nil
}

// Build lays blocks out for mode.
func Build(blocks []model.ClassifiedBlock, mode model.Mode) (model.Grid, error) {
	v, err := ViewFor(mode)
	if err != nil {
		return nil, err
	}
	return Layout(blocks, v.Classify, v.Rows), nil
}

type cacheKey struct {
	revision uint64
	mode     model.Mode
}

// Cache memoizes grids per window revision and mode. Only grids of the latest
// revision are retained. Returned grids are shared and must not be modified.
type Cache struct {
	mu     sync.Mutex
	latest uint64
	grids  map[cacheKey]model.Grid
}

// NewCache constructs an empty Cache.
func NewCache() *Cache {
	return &Cache{grids: make(map[cacheKey]model.Grid)}
}

// Get returns the grid of mode for revision, building it from blocks on a miss.
func (c *Cache) Get(revision uint64, mode model.Mode, blocks func() []model.ClassifiedBlock) (model.Grid, error) {
	key := cacheKey{revision: revision, mode: mode}

	c.mu.Lock()
	defer c.mu.Unlock()

	if grid, ok := c.grids[key]; ok {
		return grid, nil
	}
	grid, err := Build(blocks(), mode)
	if err != nil {
		return nil, err
	}
	if revision < c.latest {
		return grid, nil
	}
	c.latest = revision
	for k := range c.grids {
		if k.revision != revision {
			delete(c.grids, k)
		}
	}
	c.grids[key] = grid
	return grid, nil
}
