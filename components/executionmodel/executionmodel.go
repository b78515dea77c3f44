// Package executionmodel implements entry-order-type selectors: given a
// confirmed signal, decide what kind of order enters the position.
// Grounded on
// original_source/trendlab-core/src/components/factory.rs's
// create_execution tag catalogue.
package executionmodel

import "github.com/ridopark/trendlab/domain"

// Model selects the entry OrderType for a confirmed signal.
type Model interface {
	EntryOrderType(event domain.SignalEvent, bar domain.Bar, instrument domain.Instrument) domain.OrderType
}

// NextBarOpen enters at the next bar's open via MarketOnOpen.
// factory.rs tag: "next_bar_open".
type NextBarOpen struct{}

func (NextBarOpen) EntryOrderType(_ domain.SignalEvent, _ domain.Bar, _ domain.Instrument) domain.OrderType {
	return domain.NewMarketOnOpen()
}

// CloseOnSignal enters immediately at the signal bar's own close via
// MarketImmediate. factory.rs tag: "close_on_signal".
type CloseOnSignal struct{}

func (CloseOnSignal) EntryOrderType(_ domain.SignalEvent, _ domain.Bar, _ domain.Instrument) domain.OrderType {
	return domain.NewMarketImmediate()
}

// StopEntry enters on a breakout OffsetBps basis points beyond the
// signal bar's close, in the direction of the signal.
// factory.rs tag: "stop_entry".
type StopEntry struct {
	OffsetBps float64
}

func (m StopEntry) EntryOrderType(event domain.SignalEvent, bar domain.Bar, _ domain.Instrument) domain.OrderType {
	offset := bar.Close * m.OffsetBps / 10000
	if event.Direction == domain.DirectionLong {
		return domain.NewStopMarket(bar.Close + offset)
	}
	return domain.NewStopMarket(bar.Close - offset)
}

// LimitEntry enters on a pullback OffsetBps away from the signal bar's
// close, against the direction of the breakout. factory.rs tag:
// "limit_entry" (with an offset_bps parameter).
type LimitEntry struct {
	OffsetBps float64
}

func (m LimitEntry) EntryOrderType(event domain.SignalEvent, bar domain.Bar, _ domain.Instrument) domain.OrderType {
	offset := bar.Close * m.OffsetBps / 10000
	if event.Direction == domain.DirectionLong {
		return domain.NewLimit(bar.Close - offset)
	}
	return domain.NewLimit(bar.Close + offset)
}
