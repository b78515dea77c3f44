package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Ema is the exponential moving average over Period closes, seeded by
// the simple average of the first Period closes (grounded on the
// teacher's EMA seeding in pkg/backtester/context.go).
type Ema struct{ Period int }

func NewEma(period int) Ema { return Ema{Period: period} }

func (e Ema) Name() string      { return fmt.Sprintf("ema_%d", e.Period) }
func (e Ema) WarmupLength() int { return e.Period - 1 }

func (e Ema) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	c := closes(bars)
	if len(c) < e.Period {
		return out
	}

	mult := 2.0 / (float64(e.Period) + 1.0)
	sum := 0.0
	for i := 0; i < e.Period; i++ {
		sum += c[i]
	}
	ema := sum / float64(e.Period)
	out[e.Period-1] = ema
	for i := e.Period; i < len(c); i++ {
		ema = (c[i]-ema)*mult + ema
		out[i] = ema
	}
	return out
}
