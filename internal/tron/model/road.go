package model

// Class is the value plotted in a road cell.
type Class string

var (
	ClassOdd   = Class(Odd)
	ClassEven  = Class(Even)
	ClassBig   = Class(Big)
	ClassSmall = Class(Small)
	// ClassEmpty pads columns; it is not a data point.
	ClassEmpty Class = "EMPTY"
)

// RoadCell is a single cell of a road grid. Value is nil for padding cells.
type RoadCell struct {
	Class Class `json:"class"`
	Value *int  `json:"value,omitempty"`
}

// Empty reports whether the cell is structural padding.
func (c RoadCell) Empty() bool {
	return c.Class == ClassEmpty
}

// Column is a fixed-height column of a road grid, top row first.
type Column []RoadCell

// Grid is a road chart, oldest column first.
type Grid []Column

// Mode selects a road view.
type Mode string

var (
	ModeTrend      Mode = "trend"
	ModeBeadParity Mode = "bead-parity"
	ModeBeadSize   Mode = "bead-size"
)
