package pm

import (
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// FixedStopLoss sets a stop Percent below (long) or above (short) the
// average entry price and never moves it again — the ratchet invariant
// makes repeated identical AdjustStop intents a no-op once set.
// factory.rs tag: "fixed_stop_loss".
type FixedStopLoss struct {
	Percent float64
}

func (FixedStopLoss) RequiredIndicators() []indicators.Indicator { return nil }

func (m FixedStopLoss) OnBar(position *domain.Position, _ domain.Bar, _ int, _ domain.MarketStatus, _ indicators.Values) domain.OrderIntent {
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.AvgEntryPrice * (1 - m.Percent/100))
	}
	return domain.AdjustStopIntent(position.AvgEntryPrice * (1 + m.Percent/100))
}

// BreakevenThenTrail sets no stop while unrealized profit is below
// TriggerPercent of entry price. From TriggerPercent up to
// TriggerPercent+0.01 it moves the stop to the entry price; above that
// it delegates to an ATR-multiple trail behind the extreme.
// factory.rs tag: "breakeven_then_trail".
type BreakevenThenTrail struct {
	TriggerPercent float64
	AtrTrail       AtrTrailing
}

func (m BreakevenThenTrail) RequiredIndicators() []indicators.Indicator {
	return m.AtrTrail.RequiredIndicators()
}

func (m BreakevenThenTrail) OnBar(position *domain.Position, bar domain.Bar, barIndex int, status domain.MarketStatus, values indicators.Values) domain.OrderIntent {
	if position.AvgEntryPrice == 0 {
		return domain.HoldIntent()
	}
	favorableMove := (position.MarkPrice - position.AvgEntryPrice) / position.AvgEntryPrice * 100
	if position.Side == domain.Short {
		favorableMove = -favorableMove
	}
	if favorableMove < m.TriggerPercent {
		return domain.HoldIntent()
	}
	if favorableMove < m.TriggerPercent+0.01 {
		return domain.AdjustStopIntent(position.AvgEntryPrice)
	}
	return m.AtrTrail.OnBar(position, bar, barIndex, status, values)
}

// TimeDecay tightens the stop toward the current mark price as the
// position ages: distance shrinks linearly from InitialPercent at entry
// to a floor of MinPercent after DecayBars bars held.
// factory.rs tag: "time_decay".
type TimeDecay struct {
	InitialPercent float64
	MinPercent     float64
	DecayBars      int
}

func (TimeDecay) RequiredIndicators() []indicators.Indicator { return nil }

func (m TimeDecay) OnBar(position *domain.Position, _ domain.Bar, _ int, _ domain.MarketStatus, _ indicators.Values) domain.OrderIntent {
	progress := 1.0
	if m.DecayBars > 0 {
		progress = float64(position.BarsHeld) / float64(m.DecayBars)
		if progress > 1 {
			progress = 1
		}
	}
	pct := m.InitialPercent - (m.InitialPercent-m.MinPercent)*progress
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.MarkPrice * (1 - pct/100))
	}
	return domain.AdjustStopIntent(position.MarkPrice * (1 + pct/100))
}

// FrozenReference sets the stop at Multiplier ATRs behind entry price —
// a reference that never moves with the extreme, unlike AtrTrailing.
// Because the ratchet still only tightens, this acts as a
// once-computed floor. factory.rs tag: "frozen_reference".
type FrozenReference struct {
	Period     int
	Multiplier float64
}

func (m FrozenReference) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAtr(m.Period)}
}

func (m FrozenReference) OnBar(position *domain.Position, _ domain.Bar, barIndex int, _ domain.MarketStatus, values indicators.Values) domain.OrderIntent {
	atrKey := indicators.NewAtr(m.Period).Name()
	atr := values[atrKey]
	if barIndex >= len(atr) {
		return domain.HoldIntent()
	}
	entryAtr := 0.0
	if position.EntryBar < len(atr) {
		entryAtr = atr[position.EntryBar]
	}
	offset := m.Multiplier * entryAtr
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.AvgEntryPrice - offset)
	}
	return domain.AdjustStopIntent(position.AvgEntryPrice + offset)
}

// MaxHoldingPeriod forces an exit once the position has been held for
// MaxBars bars, regardless of price. factory.rs tag:
// "max_holding_period".
type MaxHoldingPeriod struct {
	MaxBars int
}

func (MaxHoldingPeriod) RequiredIndicators() []indicators.Indicator { return nil }

func (m MaxHoldingPeriod) OnBar(position *domain.Position, _ domain.Bar, _ int, _ domain.MarketStatus, _ indicators.Values) domain.OrderIntent {
	if position.BarsHeld >= m.MaxBars {
		return domain.ForceExitIntent()
	}
	return domain.HoldIntent()
}
