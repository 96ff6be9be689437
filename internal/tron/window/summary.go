package window

import (
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the outcome counts of a window.
type Summary struct {
	Total        int             `json:"total"`
	Odd          int             `json:"odd"`
	Even         int             `json:"even"`
	Big          int             `json:"big"`
	Small        int             `json:"small"`
	OddPercent   decimal.Decimal `json:"oddPercent"`
	EvenPercent  decimal.Decimal `json:"evenPercent"`
	BigPercent   decimal.Decimal `json:"bigPercent"`
	SmallPercent decimal.Decimal `json:"smallPercent"`
	LatestHeight uint64          `json:"latestHeight"`
}

// Summarize counts outcomes in w. Percentages are rounded to two places.
func Summarize(w Window) Summary {
	s := Summary{Total: len(w), LatestHeight: w.Top()}
	for _, b := range w {
		if b.Parity == model.Odd {
			s.Odd++
		} else {
			s.Even++
		}
		if b.SizeClass == model.Big {
			s.Big++
		} else {
			s.Small++
		}
	}

	s.OddPercent = percent(s.Odd, s.Total)
	s.EvenPercent = percent(s.Even, s.Total)
	s.BigPercent = percent(s.Big, s.Total)
	s.SmallPercent = percent(s.Small, s.Total)
	return s
}

func percent(n, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(n)).Mul(hundred).DivRound(decimal.NewFromInt(int64(total)), 2)
}
