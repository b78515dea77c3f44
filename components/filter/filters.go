package filter

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// AdxFilter rejects signals unless ADX is above MinAdx, i.e. the market
// is trending strongly enough to trade. factory.rs tag: "adx_filter".
type AdxFilter struct {
	Period int
	MinAdx float64
}

func (f AdxFilter) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAdx(f.Period)}
}

func (f AdxFilter) Evaluate(event domain.SignalEvent, _ []domain.Bar, barIndex int, values indicators.Values) domain.Evaluation {
	adx := values[fmt.Sprintf("adx_%d", f.Period)]
	if barIndex >= len(adx) || math.IsNaN(adx[barIndex]) {
		return rejected(event, "adx not yet available")
	}
	if adx[barIndex] < f.MinAdx {
		return rejected(event, fmt.Sprintf("adx %.2f below minimum %.2f", adx[barIndex], f.MinAdx))
	}
	return passed(event)
}

// RegimeDirection restricts MaRegime to trading with, or counter to,
// the dominant moving-average trend.
type RegimeDirection int

const (
	Above RegimeDirection = iota
	Below
)

// MaRegime rejects longs unless close is Above (or Below) a moving
// average regime filter, and the mirror condition for shorts.
// factory.rs tag: "ma_regime".
type MaRegime struct {
	Period    int
	Direction RegimeDirection
}

func (f MaRegime) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewSma(f.Period)}
}

func (f MaRegime) Evaluate(event domain.SignalEvent, bars []domain.Bar, barIndex int, values indicators.Values) domain.Evaluation {
	ma := values[indicators.NewSma(f.Period).Name()]
	if barIndex >= len(ma) || math.IsNaN(ma[barIndex]) {
		return rejected(event, "regime ma not yet available")
	}
	close := bars[barIndex].Close
	aboveRegime := close > ma[barIndex]
	wantAbove := f.Direction == Above

	switch event.Direction {
	case domain.DirectionLong:
		if aboveRegime != wantAbove {
			return rejected(event, "long signal against regime")
		}
	case domain.DirectionShort:
		if aboveRegime == wantAbove {
			return rejected(event, "short signal against regime")
		}
	}
	return passed(event)
}

// VolatilityFilter rejects signals when ATR-normalized volatility
// exceeds MaxAtrPct of price, avoiding entries into violent bars.
// factory.rs tag: "volatility_filter".
type VolatilityFilter struct {
	AtrPeriod int
	MaxAtrPct float64
}

func (f VolatilityFilter) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAtr(f.AtrPeriod)}
}

func (f VolatilityFilter) Evaluate(event domain.SignalEvent, bars []domain.Bar, barIndex int, values indicators.Values) domain.Evaluation {
	atr := values[fmt.Sprintf("atr_%d", f.AtrPeriod)]
	if barIndex >= len(atr) || math.IsNaN(atr[barIndex]) {
		return rejected(event, "atr not yet available")
	}
	close := bars[barIndex].Close
	if close == 0 {
		return passed(event)
	}
	pct := atr[barIndex] / close * 100
	if pct > f.MaxAtrPct {
		return rejected(event, fmt.Sprintf("atr pct %.2f exceeds max %.2f", pct, f.MaxAtrPct))
	}
	return passed(event)
}
