// Package model defines domain models for hash road tracking.
package model

import "time"

// Parity is the odd/even class of a block result value.
type Parity string

var (
	// Odd marks a block whose result value is odd.
	Odd Parity = "ODD"
	// Even marks a block whose result value is even.
	Even Parity = "EVEN"
)

// SizeClass is the big/small class of a block result value.
type SizeClass string

var (
	// Big marks result values 5-9.
	Big SizeClass = "BIG"
	// Small marks result values 0-4.
	Small SizeClass = "SMALL"
)

// Outcome is the classification derived from a block hash.
type Outcome struct {
	ResultValue int
	Parity      Parity
	SizeClass   SizeClass
}

// ClassifiedBlock is a chain block together with its derived outcome.
type ClassifiedBlock struct {
	Height      uint64    `json:"height"`
	Hash        string    `json:"hash"`
	ResultValue int       `json:"resultValue"`
	Parity      Parity    `json:"parity"`
	SizeClass   SizeClass `json:"sizeClass"`
	ObservedAt  string    `json:"observedAt"`
	Timestamp   time.Time `json:"timestamp"`
	Witness     string    `json:"witness,omitempty"`
	TxCount     uint32    `json:"txCount"`
}

// ArchiveStats aggregates archived blocks.
type ArchiveStats struct {
	Total       uint64 `json:"total"`
	Odd         uint64 `json:"odd"`
	Even        uint64 `json:"even"`
	Big         uint64 `json:"big"`
	Small       uint64 `json:"small"`
	FirstHeight uint64 `json:"firstHeight"`
	LastHeight  uint64 `json:"lastHeight"`
}
