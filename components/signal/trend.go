package signal

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// SupertrendSignal fires on a close crossing through the Supertrend
// line: long when close moves above it, short when close moves below.
// factory.rs tag: "supertrend".
type SupertrendSignal struct {
	Period     int
	Multiplier float64
}

func (s SupertrendSignal) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewSupertrend(s.Period, s.Multiplier)}
}

func (s SupertrendSignal) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	line := values[fmt.Sprintf("supertrend_%d_%.2f", s.Period, s.Multiplier)]
	if barIndex < 1 || barIndex >= len(line) {
		return nil
	}
	cur, prev := line[barIndex], line[barIndex-1]
	if math.IsNaN(cur) || math.IsNaN(prev) {
		return nil
	}
	bar := bars[barIndex]
	prevBar := bars[barIndex-1]
	switch {
	case prevBar.Close <= prev && bar.Close > cur:
		return longEvent(barIndex, bar, bar.Close-cur)
	case prevBar.Close >= prev && bar.Close < cur:
		return shortEvent(barIndex, bar, cur-bar.Close)
	}
	return nil
}

// ParabolicSarSignal fires on a close crossing the SAR dot — long when
// price moves above it (SAR flips below price), short when it moves
// below. factory.rs tag: "parabolic_sar".
type ParabolicSarSignal struct {
	AfStart, AfStep, AfMax float64
}

func (s ParabolicSarSignal) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewParabolicSar(s.AfStart, s.AfStep, s.AfMax)}
}

func (s ParabolicSarSignal) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	sar := values[fmt.Sprintf("parabolic_sar_%.3f_%.3f_%.3f", s.AfStart, s.AfStep, s.AfMax)]
	if barIndex < 1 || barIndex >= len(sar) {
		return nil
	}
	cur, prev := sar[barIndex], sar[barIndex-1]
	if math.IsNaN(cur) || math.IsNaN(prev) {
		return nil
	}
	bar := bars[barIndex]
	prevBar := bars[barIndex-1]
	switch {
	case prevBar.Close <= prev && bar.Close > cur:
		return longEvent(barIndex, bar, bar.Close-cur)
	case prevBar.Close >= prev && bar.Close < cur:
		return shortEvent(barIndex, bar, cur-bar.Close)
	}
	return nil
}

// MaType selects the moving-average family used by MaCrossover.
type MaType int

const (
	MaSma MaType = iota
	MaEma
)

// MaCrossover fires long when the fast average crosses above the slow
// average, short on the opposite cross. factory.rs tag: "ma_crossover",
// with a Sma/Ema switch on MaType (factory.rs's MaType enum).
type MaCrossover struct {
	FastPeriod int
	SlowPeriod int
	Type       MaType
}

func (s MaCrossover) maIndicator(period int) indicators.Indicator {
	if s.Type == MaEma {
		return indicators.NewEma(period)
	}
	return indicators.NewSma(period)
}

func (s MaCrossover) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{s.maIndicator(s.FastPeriod), s.maIndicator(s.SlowPeriod)}
}

func (s MaCrossover) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	fast := values[s.maIndicator(s.FastPeriod).Name()]
	slow := values[s.maIndicator(s.SlowPeriod).Name()]
	if barIndex < 1 || barIndex >= len(fast) || barIndex >= len(slow) {
		return nil
	}
	curFast, curSlow := fast[barIndex], slow[barIndex]
	prevFast, prevSlow := fast[barIndex-1], slow[barIndex-1]
	if math.IsNaN(curFast) || math.IsNaN(curSlow) || math.IsNaN(prevFast) || math.IsNaN(prevSlow) {
		return nil
	}
	bar := bars[barIndex]
	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		return longEvent(barIndex, bar, curFast-curSlow)
	case prevFast >= prevSlow && curFast < curSlow:
		return shortEvent(barIndex, bar, curSlow-curFast)
	}
	return nil
}
