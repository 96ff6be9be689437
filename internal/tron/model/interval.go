package model

import (
	"errors"
	"fmt"
)

// Interval is the sampling step of the tracked block stream.
type Interval uint64

const (
	// EveryBlock tracks every block height.
	EveryBlock Interval = 1
	// Every20 tracks heights divisible by 20.
	Every20 Interval = 20
	// Every60 tracks heights divisible by 60.
	Every60 Interval = 60
	// Every100 tracks heights divisible by 100.
	Every100 Interval = 100
)

// ErrUnsupportedInterval rejects intervals outside Intervals.
var ErrUnsupportedInterval = errors.New("unsupported interval")

// Intervals lists the supported sampling intervals.
var Intervals = []Interval{EveryBlock, Every20, Every60, Every100}

// ParseInterval validates v against the supported intervals.
func ParseInterval(v uint64) (Interval, error) {
	for _, iv := range Intervals {
		if uint64(iv) == v {
			return iv, nil
		}
	}
	return 0, fmt.Errorf("%w %d", ErrUnsupportedInterval, v)
}

// Valid reports whether the interval is one of Intervals.
func (i Interval) Valid() bool {
	_, err := ParseInterval(uint64(i))
	return err == nil
}

// IsAligned reports whether height is a member of the stream sampled by interval.
func IsAligned(height uint64, interval Interval) bool {
	if interval <= 1 {
		return true
	}
	return height%uint64(interval) == 0
}

// AlignDown returns the highest aligned height not above height.
func (i Interval) AlignDown(height uint64) uint64 {
	if i <= 1 {
		return height
	}
	return height - height%uint64(i)
}
