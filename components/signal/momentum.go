package signal

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// Tsmom is time-series momentum: long when the Lookback-bar return is
// positive, short when negative. factory.rs tag: "tsmom".
type Tsmom struct {
	Lookback int
}

func (s Tsmom) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewMomentum(s.Lookback)}
}

func (s Tsmom) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	mom := values[fmt.Sprintf("momentum_%d", s.Lookback)]
	if barIndex >= len(mom) {
		return nil
	}
	m := mom[barIndex]
	if math.IsNaN(m) || m == 0 {
		return nil
	}
	bar := bars[barIndex]
	if m > 0 {
		return longEvent(barIndex, bar, m)
	}
	return shortEvent(barIndex, bar, -m)
}

// RocMomentum fires long on every bar the percentage rate of change is
// above +Threshold and short on every bar it is below -Threshold; no
// crossing is required. factory.rs tag: "roc_momentum".
type RocMomentum struct {
	Period    int
	Threshold float64
}

func (s RocMomentum) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewRoc(s.Period)}
}

func (s RocMomentum) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	roc := values[fmt.Sprintf("roc_%d", s.Period)]
	if barIndex >= len(roc) {
		return nil
	}
	r := roc[barIndex]
	if math.IsNaN(r) {
		return nil
	}
	bar := bars[barIndex]
	if r > s.Threshold {
		return longEvent(barIndex, bar, r-s.Threshold)
	}
	if r < -s.Threshold {
		return shortEvent(barIndex, bar, -s.Threshold-r)
	}
	return nil
}

// AroonCrossover fires long when aroon-up crosses above aroon-down,
// short on the opposite cross. factory.rs tag: "aroon_crossover".
type AroonCrossover struct {
	Period int
}

func (s AroonCrossover) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAroonUp(s.Period), indicators.NewAroonDown(s.Period)}
}

func (s AroonCrossover) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	up := values[fmt.Sprintf("aroon_up_%d", s.Period)]
	down := values[fmt.Sprintf("aroon_down_%d", s.Period)]
	if barIndex < 1 || barIndex >= len(up) || barIndex >= len(down) {
		return nil
	}
	curUp, curDown := up[barIndex], down[barIndex]
	prevUp, prevDown := up[barIndex-1], down[barIndex-1]
	if math.IsNaN(curUp) || math.IsNaN(curDown) || math.IsNaN(prevUp) || math.IsNaN(prevDown) {
		return nil
	}
	bar := bars[barIndex]
	switch {
	case prevUp <= prevDown && curUp > curDown:
		return longEvent(barIndex, bar, curUp-curDown)
	case prevUp >= prevDown && curUp < curDown:
		return shortEvent(barIndex, bar, curDown-curUp)
	}
	return nil
}
