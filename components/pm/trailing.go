package pm

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// AtrTrailing trails the stop at Multiplier ATRs behind the position's
// extreme-since-entry price. Because the ratchet invariant only ever
// tightens a stop (see engine/loop.enforceRatchet), a falling ATR
// tightens the trail but a rising ATR never loosens an already-set
// stop — this is intentional, not a bug (spec Open Question
// resolution). factory.rs tag: "atr_trailing".
type AtrTrailing struct {
	Period     int
	Multiplier float64
}

func (m AtrTrailing) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAtr(m.Period)}
}

func (m AtrTrailing) OnBar(position *domain.Position, _ domain.Bar, barIndex int, _ domain.MarketStatus, values indicators.Values) domain.OrderIntent {
	atr := values[fmt.Sprintf("atr_%d", m.Period)]
	if barIndex >= len(atr) || math.IsNaN(atr[barIndex]) {
		return domain.HoldIntent()
	}
	offset := m.Multiplier * atr[barIndex]
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.HighestSinceEntry - offset)
	}
	return domain.AdjustStopIntent(position.LowestSinceEntry + offset)
}

// PercentTrailing trails the stop at Percent behind the extreme price.
// factory.rs tag: "percent_trailing".
type PercentTrailing struct {
	Percent float64
}

func (PercentTrailing) RequiredIndicators() []indicators.Indicator { return nil }

func (m PercentTrailing) OnBar(position *domain.Position, _ domain.Bar, _ int, _ domain.MarketStatus, _ indicators.Values) domain.OrderIntent {
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.HighestSinceEntry * (1 - m.Percent/100))
	}
	return domain.AdjustStopIntent(position.LowestSinceEntry * (1 + m.Percent/100))
}

// Chandelier is AtrTrailing using the position's own extreme rather
// than the raw close: functionally identical to AtrTrailing here since
// Position.HighestSinceEntry/LowestSinceEntry already track the
// extreme; kept distinct to match the teacher's factory tag catalogue
// and to allow an independently tunable Period/Multiplier pair per
// component config. factory.rs tag: "chandelier".
type Chandelier struct {
	Period     int
	Multiplier float64
}

func (m Chandelier) RequiredIndicators() []indicators.Indicator {
	return AtrTrailing(m).RequiredIndicators()
}

func (m Chandelier) OnBar(position *domain.Position, bar domain.Bar, barIndex int, status domain.MarketStatus, values indicators.Values) domain.OrderIntent {
	return AtrTrailing(m).OnBar(position, bar, barIndex, status, values)
}

// SinceEntryTrailing trails at Multiplier ATRs behind the extreme
// price reached since entry, re-anchoring the distance every bar from
// the position's own bars-held-scaled tightening factor — it narrows
// the trail the longer a position has run. factory.rs tag:
// "since_entry_trailing".
type SinceEntryTrailing struct {
	Period       int
	Multiplier   float64
	TightenEvery int // bars held per 1% multiplier reduction
}

func (m SinceEntryTrailing) RequiredIndicators() []indicators.Indicator {
	return []indicators.Indicator{indicators.NewAtr(m.Period)}
}

func (m SinceEntryTrailing) OnBar(position *domain.Position, _ domain.Bar, barIndex int, _ domain.MarketStatus, values indicators.Values) domain.OrderIntent {
	atr := values[fmt.Sprintf("atr_%d", m.Period)]
	if barIndex >= len(atr) || math.IsNaN(atr[barIndex]) {
		return domain.HoldIntent()
	}
	mult := m.Multiplier
	if m.TightenEvery > 0 {
		steps := float64(position.BarsHeld / m.TightenEvery)
		mult = math.Max(m.Multiplier*(1-0.01*steps), m.Multiplier*0.25)
	}
	offset := mult * atr[barIndex]
	if position.Side == domain.Long {
		return domain.AdjustStopIntent(position.HighestSinceEntry - offset)
	}
	return domain.AdjustStopIntent(position.LowestSinceEntry + offset)
}
