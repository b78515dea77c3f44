package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Atr is Wilder's average true range over Period bars.
type Atr struct{ Period int }

func NewAtr(period int) Atr { return Atr{Period: period} }

func (a Atr) Name() string      { return fmt.Sprintf("atr_%d", a.Period) }
func (a Atr) WarmupLength() int { return a.Period }

func (a Atr) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	if len(bars) <= a.Period {
		return out
	}

	sum := 0.0
	for i := 1; i <= a.Period; i++ {
		sum += trueRange(bars, i)
	}
	atr := sum / float64(a.Period)
	out[a.Period] = atr
	for i := a.Period + 1; i < len(bars); i++ {
		tr := trueRange(bars, i)
		atr = (atr*float64(a.Period-1) + tr) / float64(a.Period)
		out[i] = atr
	}
	return out
}
