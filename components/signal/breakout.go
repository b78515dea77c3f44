package signal

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// BreakoutFiftyTwoWeek fires long when the close makes a new
// Lookback-bar high and short when it makes a new Lookback-bar low.
// factory.rs tag: "breakout_52w".
type BreakoutFiftyTwoWeek struct {
	Lookback int
}

func (s BreakoutFiftyTwoWeek) RequiredIndicators() []indicators.Indicator { return nil }

func (s BreakoutFiftyTwoWeek) Evaluate(bars []domain.Bar, barIndex int, _ indicators.Values) *domain.SignalEvent {
	if barIndex < s.Lookback {
		return nil
	}
	window := bars[barIndex-s.Lookback : barIndex]
	hi, lo := window[0].High, window[0].Low
	for _, b := range window {
		hi = math.Max(hi, b.High)
		lo = math.Min(lo, b.Low)
	}
	bar := bars[barIndex]
	if bar.Close > hi {
		return longEvent(barIndex, bar, bar.Close-hi)
	}
	if bar.Close < lo {
		return shortEvent(barIndex, bar, lo-bar.Close)
	}
	return nil
}

// DonchianBreakout fires off the precomputed Donchian upper/lower
// channel rather than recomputing the window itself. factory.rs tag:
// "donchian_breakout".
type DonchianBreakout struct {
	Lookback int
}

func (s DonchianBreakout) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{
		indicators.NewDonchianUpper(s.Lookback),
		indicators.NewDonchianLower(s.Lookback),
	}
}

func (s DonchianBreakout) Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent {
	upper := values[fmt.Sprintf("donchian_upper_%d", s.Lookback)]
	lower := values[fmt.Sprintf("donchian_lower_%d", s.Lookback)]
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
