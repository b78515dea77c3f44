package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Supertrend is the classic ATR-banded trend-following overlay: a
// basic upper/lower band around the bar midpoint, flipping direction
// when price closes through the active band. Grounded on
// original_source's components/signal/supertrend.rs usage pattern
// (period + multiplier parameterization feeding an ATR band).
type Supertrend struct {
	Period     int
	Multiplier float64
}

func NewSupertrend(period int, mult float64) Supertrend {
	return Supertrend{Period: period, Multiplier: mult}
}

func (s Supertrend) Name() string      { return fmt.Sprintf("supertrend_%d_%.2f", s.Period, s.Multiplier) }
func (s Supertrend) WarmupLength() int { return s.Period }

// Compute returns the active Supertrend line value per bar: the upper
// band while the trend is down, the lower band while the trend is up.
func (s Supertrend) Compute(bars []domain.Bar) []float64 {
	atr := NewAtr(s.Period).Compute(bars)
	out := nanFill(len(bars))

	upTrend := true
	var finalUpper, finalLower float64

	for i := s.Period; i < len(bars); i++ {
		mid := (bars[i].High + bars[i].Low) / 2
		basicUpper := mid + s.Multiplier*atr[i]
		basicLower := mid - s.Multiplier*atr[i]

		if i == s.Period {
			finalUpper, finalLower = basicUpper, basicLower
		} else {
			if basicUpper < finalUpper || bars[i-1].Close > finalUpper {
				finalUpper = basicUpper
			}
			if basicLower > finalLower || bars[i-1].Close < finalLower {
				finalLower = basicLower
			}
		}

		switch {
		case upTrend && bars[i].Close < finalLower:
			upTrend = false
		case !upTrend && bars[i].Close > finalUpper:
			upTrend = true
		}

		if upTrend {
			out[i] = finalLower
		} else {
			out[i] = finalUpper
		}
	}
	return out
}
