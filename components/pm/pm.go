// Package pm implements position managers: pure functions of a
// position snapshot, the current bar, and indicator state that decide
// whether to hold, tighten a stop, force an exit, or adjust a target.
// The ratchet invariant (stops only tighten, never loosen) is enforced
// by the caller (engine/loop), not here — a PM may return any stop
// price and the loop clamps it. Grounded on
// original_source/trendlab-core/src/components/factory.rs's
// create_pm tag catalogue.
package pm

import (
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// Manager evaluates one symbol's held position on one bar.
type Manager interface {
	OnBar(position *domain.Position, bar domain.Bar, barIndex int, status domain.MarketStatus, values indicators.Values) domain.OrderIntent
	RequiredIndicators() []indicators.Indicator
}

// NoOpPm never adjusts the position. factory.rs tag: "no_op".
type NoOpPm struct{}

func (NoOpPm) RequiredIndicators() []indicators.Indicator { return nil }

func (NoOpPm) OnBar(_ *domain.Position, _ domain.Bar, _ int, _ domain.MarketStatus, _ indicators.Values) domain.OrderIntent {
	return domain.HoldIntent()
}
