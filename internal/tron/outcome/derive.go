// Package outcome derives the odd/even and big/small outcome of a block hash.
package outcome

import (
	"fmt"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/tron/chain"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
)

const (
	bigThreshold = 5

	// TimestampLayout is the display format of ClassifiedBlock.ObservedAt.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Derive returns the outcome of hash: the last decimal digit it contains, or 0
// when it contains none.
func Derive(hash string) model.Outcome {
	value := 0
	for i := len(hash) - 1; i >= 0; i-- {
		if c := hash[i]; c >= '0' && c <= '9' {
			value = int(c - '0')
			break
		}
	}

	parity := model.Even
	if value%2 != 0 {
		parity = model.Odd
	}
	size := model.Small
	if value >= bigThreshold {
		size = model.Big
	}

	return model.Outcome{
		ResultValue: value,
		Parity:      parity,
		SizeClass:   size,
	}
}

// Classifier turns chain blocks into classified blocks.
type Classifier struct {
	location *time.Location
}

// NewClassifier builds a Classifier formatting timestamps in location (UTC when nil).
func NewClassifier(location *time.Location) *Classifier {
	if location == nil {
		location = time.UTC
	}
	return &Classifier{location: location}
}

// Classify derives the outcome of b.
func (c *Classifier) Classify(b chain.Block) (model.ClassifiedBlock, error) {
	if b.Hash == "" {
		return model.ClassifiedBlock{}, fmt.Errorf("block %d without hash: %w", b.Height, chain.ErrMalformedResponse)
	}

	o := Derive(b.Hash)
	return model.ClassifiedBlock{
		Height:      b.Height,
		Hash:        b.Hash,
		ResultValue: o.ResultValue,
		Parity:      o.Parity,
		SizeClass:   o.SizeClass,
		ObservedAt:  c.Format(b.Timestamp),
		Timestamp:   b.Timestamp,
		Witness:     b.Witness,
		TxCount:     b.TxCount,
	}, nil
}

// Format renders ts in the classifier location.
func (c *Classifier) Format(ts time.Time) string {
	return ts.In(c.location).Format(TimestampLayout)
}
