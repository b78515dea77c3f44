// Package signal implements entry-signal generators: pure functions of
// a symbol's bar history and precomputed indicators that decide
// whether a new long or short opportunity exists at a given bar index.
// Grounded on
// original_source/trendlab-core/src/components/factory.rs's
// create_signal tag catalogue.
package signal

import (
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// Generator evaluates one symbol at one bar index and optionally
// returns a SignalEvent. It must only be called for symbols currently
// flat — the loop never asks a generator to evaluate a held position.
type Generator interface {
	Evaluate(bars []domain.Bar, barIndex int, values indicators.Values) *domain.SignalEvent
	RequiredIndicators() []indicators.Indicator
}

func longEvent(barIndex int, bar domain.Bar, strength float64) *domain.SignalEvent {
	return &domain.SignalEvent{BarIndex: barIndex, Date: bar.Date, Symbol: bar.Symbol, Direction: domain.DirectionLong, Strength: strength}
}

func shortEvent(barIndex int, bar domain.Bar, strength float64) *domain.SignalEvent {
	return &domain.SignalEvent{BarIndex: barIndex, Date: bar.Date, Symbol: bar.Symbol, Direction: domain.DirectionShort, Strength: strength}
}
