package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Momentum is the simple close[t] - close[t-lookback] difference, used
// by time-series-momentum signals.
type Momentum struct{ Lookback int }

func NewMomentum(lookback int) Momentum { return Momentum{Lookback: lookback} }

func (m Momentum) Name() string      { return fmt.Sprintf("momentum_%d", m.Lookback) }
func (m Momentum) WarmupLength() int { return m.Lookback }

func (m Momentum) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	c := closes(bars)
	for i := m.Lookback; i < len(bars); i++ {
		out[i] = c[i] - c[i-m.Lookback]
	}
	return out
}

// Roc is the rate of change: percentage momentum over Period bars.
type Roc struct{ Period int }

func NewRoc(period int) Roc { return Roc{Period: period} }

func (r Roc) Name() string      { return fmt.Sprintf("roc_%d", r.Period) }
func (r Roc) WarmupLength() int { return r.Period }

func (r Roc) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	c := closes(bars)
	for i := r.Period; i < len(bars); i++ {
		if c[i-r.Period] == 0 {
			continue
		}
		out[i] = (c[i] - c[i-r.Period]) / c[i-r.Period] * 100
	}
	return out
}
