package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Keltner is an EMA midline offset by Multiplier ATRs.
type Keltner struct {
	EmaPeriod  int
	AtrPeriod  int
	Multiplier float64
	Upper      bool
}

func NewKeltnerUpper(emaPeriod, atrPeriod int, mult float64) Keltner {
	return Keltner{EmaPeriod: emaPeriod, AtrPeriod: atrPeriod, Multiplier: mult, Upper: true}
}
func NewKeltnerLower(emaPeriod, atrPeriod int, mult float64) Keltner {
	return Keltner{EmaPeriod: emaPeriod, AtrPeriod: atrPeriod, Multiplier: mult, Upper: false}
}

func (k Keltner) Name() string {
	side := "upper"
	if !k.Upper {
		side = "lower"
	}
	return fmt.Sprintf("keltner_%s_%d_%d_%.2f", side, k.EmaPeriod, k.AtrPeriod, k.Multiplier)
}

func (k Keltner) WarmupLength() int {
	if k.EmaPeriod-1 > k.AtrPeriod {
		return k.EmaPeriod - 1
	}
	return k.AtrPeriod
}

func (k Keltner) Compute(bars []domain.Bar) []float64 {
	mid := NewEma(k.EmaPeriod).Compute(bars)
	rng := NewAtr(k.AtrPeriod).Compute(bars)

	out := nanFill(len(bars))
	for i := range bars {
		if i < k.WarmupLength() {
			continue
		}
		if k.Upper {
			out[i] = mid[i] + k.Multiplier*rng[i]
		} else {
			out[i] = mid[i] - k.Multiplier*rng[i]
		}
	}
	return out
}
