// Package road lays classified block sequences out as streak column grids.
package road

import (
	"cmp"
	"slices"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

const (
	// MinColumns is the minimum width of every grid.
	MinColumns = 50
	// TrendRows is the column height of the trend chart.
	TrendRows = 10
	// BeadRows is the column height of the bead roads.
	BeadRows = 6
)

// Classifier maps a block to the class plotted for it.
type Classifier func(model.ClassifiedBlock) model.Class

// ByParity plots odd/even.
func ByParity(b model.ClassifiedBlock) model.Class {
	return model.Class(b.Parity)
}

// BySize plots big/small.
func BySize(b model.ClassifiedBlock) model.Class {
	return model.Class(b.SizeClass)
}

// Layout sorts blocks oldest first and stacks every streak of one class into
// columns of rows cells, starting a new column on a class change or when the
// current column is full. Columns are padded with empty cells, and the grid
// with empty columns up to MinColumns. Layout of rows <= 0 is nil.
func Layout(blocks []model.ClassifiedBlock, classify Classifier, rows int) model.Grid {
	if rows <= 0 {
		return nil
	}

	ordered := slices.Clone(blocks)
	slices.SortStableFunc(ordered, func(a, b model.ClassifiedBlock) int {
		return cmp.Compare(a.Height, b.Height)
	})

	grid := make(model.Grid, 0, max(MinColumns, len(ordered)))
	var (
		current model.Column
		last    model.Class
	)
	closeColumn := func() {
		if len(current) == 0 {
			return
		}
		grid = append(grid, pad(current, rows))
		current = nil
	}

	for _, b := range ordered {
		class := classify(b)
		if len(current) > 0 && (class != last || len(current) >= rows) {
			closeColumn()
		}
		value := b.ResultValue
		current = append(current, model.RoadCell{Class: class, Value: &value})
		last = class
	}
	closeColumn()

	for len(grid) < MinColumns {
		grid = append(grid, pad(nil, rows))
	}
	return grid
}

func pad(column model.Column, rows int) model.Column {
	out := make(model.Column, rows)
	copy(out, column)
	for i := len(column); i < rows; i++ {
		out[i] = model.RoadCell{Class: model.ClassEmpty}
	}
	return out
}
