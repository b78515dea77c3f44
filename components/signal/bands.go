package signal

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// BollingerBreakout fires long on a close above the upper band, short
// on a close below the lower band. factory.rs tag: "bollinger_breakout".
type BollingerBreakout struct {
	Period     int
	Multiplier float64
}

func (s BollingerBreakout) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{
		indicators.NewBollingerUpper(s.Period, s.Multiplier),
		indicators.NewBollingerLower(s.Period, s.Multiplier),
	}
}

func (s BollingerBreakout) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	upper := values[fmt.Sprintf("bollinger_upper_%d_%.2f", s.Period, s.Multiplier)]
	lower := values[fmt.Sprintf("bollinger_lower_%d_%.2f", s.Period, s.Multiplier)]
	if barIndex >= len(upper) || barIndex >= len(lower) {
		return nil
	}
	up, lo := upper[barIndex], lower[barIndex]
	if math.IsNaN(up) || math.IsNaN(lo) {
		return nil
	}
	bar := bars[barIndex]
	if bar.Close > up {
		return longEvent(barIndex, bar, bar.Close-up)
	}
	if bar.Close < lo {
		return shortEvent(barIndex, bar, lo-bar.Close)
	}
	return nil
}

// KeltnerBreakout fires long on a close above the upper channel, short
// below the lower channel. factory.rs tag: "keltner_breakout".
type KeltnerBreakout struct {
	EmaPeriod  int
	AtrPeriod  int
	Multiplier float64
}

func (s KeltnerBreakout) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{
		indicators.NewKeltnerUpper(s.EmaPeriod, s.AtrPeriod, s.Multiplier),
		indicators.NewKeltnerLower(s.EmaPeriod, s.AtrPeriod, s.Multiplier),
	}
}

func (s KeltnerBreakout) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	upper := values[fmt.Sprintf("keltner_upper_%d_%d_%.2f", s.EmaPeriod, s.AtrPeriod, s.Multiplier)]
	lower := values[fmt.Sprintf("keltner_lower_%d_%d_%.2f", s.EmaPeriod, s.AtrPeriod, s.Multiplier)]
	if barIndex >= len(upper) || barIndex >= len(lower) {
		return nil
	}
	up, lo := upper[barIndex], lower[barIndex]
	if math.IsNaN(up) || math.IsNaN(lo) {
		return nil
	}
	bar := bars[barIndex]
	if bar.Close > up {
		return longEvent(barIndex, bar, bar.Close-up)
	}
	if bar.Close < lo {
		return shortEvent(barIndex, bar, lo-bar.Close)
	}
	return nil
}
