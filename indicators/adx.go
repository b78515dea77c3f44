package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Adx is Wilder's average directional index over Period bars.
type Adx struct{ Period int }

func NewAdx(period int) Adx { return Adx{Period: period} }

func (a Adx) Name() string      { return fmt.Sprintf("adx_%d", a.Period) }
func (a Adx) WarmupLength() int { return 2 * a.Period }

func (a Adx) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	n := len(bars)
	if n <= 2*a.Period {
		return out
	}

	tr := make([]float64, n)
	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars, i)
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			dmPlus[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			dmMinus[i] = downMove
		}
	}

	smooth := func(series []float64) []float64 {
		s := make([]float64, n)
		sum := 0.0
		for i := 1; i <= a.Period; i++ {
			sum += series[i]
		}
		s[a.Period] = sum
		for i := a.Period + 1; i < n; i++ {
			s[i] = s[i-1] - s[i-1]/float64(a.Period) + series[i]
		}
		return s
	}

	smTR := smooth(tr)
	smDMPlus := smooth(dmPlus)
	smDMMinus := smooth(dmMinus)

	dx := make([]float64, n)
	for i := a.Period; i < n; i++ {
		if smTR[i] == 0 {
			continue
		}
		diPlus := 100 * smDMPlus[i] / smTR[i]
		diMinus := 100 * smDMMinus[i] / smTR[i]
		denom := diPlus + diMinus
		if denom == 0 {
			continue
		}
		dx[i] = 100 * abs(diPlus-diMinus) / denom
	}

	sum := 0.0
	for i := a.Period; i < 2*a.Period; i++ {
		sum += dx[i]
	}
	adx := sum / float64(a.Period)
	out[2*a.Period] = adx
	for i := 2*a.Period + 1; i < n; i++ {
		adx = (adx*float64(a.Period-1) + dx[i]) / float64(a.Period)
		out[i] = adx
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
