package indicators

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
)

// Bollinger is an N-period SMA offset by Multiplier standard deviations.
type Bollinger struct {
	Period     int
	Multiplier float64
	Upper      bool
}

func NewBollingerUpper(period int, mult float64) Bollinger {
	return Bollinger{Period: period, Multiplier: mult, Upper: true}
}
func NewBollingerLower(period int, mult float64) Bollinger {
	return Bollinger{Period: period, Multiplier: mult, Upper: false}
}

func (b Bollinger) Name() string {
	side := "upper"
	if !b.Upper {
		side = "lower"
	}
	return fmt.Sprintf("bollinger_%s_%d_%.2f", side, b.Period, b.Multiplier)
}

func (b Bollinger) WarmupLength() int { return b.Period - 1 }

func (b Bollinger) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	c := closes(bars)
	for i := b.Period - 1; i < len(bars); i++ {
		window := c[i-b.Period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(b.Period)

		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		stdDev := math.Sqrt(variance / float64(b.Period))

		if b.Upper {
			out[i] = mean + b.Multiplier*stdDev
		} else {
			out[i] = mean - b.Multiplier*stdDev
		}
	}
	return out
}
