package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Sma is the simple moving average over Period closes.
type Sma struct{ Period int }

func NewSma(period int) Sma { return Sma{Period: period} }

func (s Sma) Name() string      { return fmt.Sprintf("sma_%d", s.Period) }
func (s Sma) WarmupLength() int { return s.Period - 1 }

func (s Sma) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	c := closes(bars)
	sum := 0.0
	for i := range bars {
		sum += c[i]
		if i >= s.Period {
			sum -= c[i-s.Period]
		}
		if i >= s.Period-1 {
			out[i] = sum / float64(s.Period)
		}
	}
	return out
}
