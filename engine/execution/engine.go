// Package execution implements the stateless fill engine: start-of-bar,
// intrabar, and end-of-bar phase processing over an order book, trigger
// evaluation, gap resolution, cost application, and liquidity
// constraint. Grounded on
// original_source/trendlab-core/src/engine/execution/mod.rs and
// trigger.rs.
package execution

import (
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/engine/orderbook"
)

// Engine evaluates order-book phases against a bar under one Config. It
// holds no state of its own between calls; every method takes the bar,
// the instrument, and the order book as parameters.
type Engine struct {
	config Config
}

// New returns an Engine bound to config.
func New(config Config) *Engine {
	return &Engine{config: config}
}

// ProcessStartOfBar fills every active MarketOnOpen/MarketImmediate
// order for symbol at bar.open. Void bars are skipped entirely — the
// orders remain active untouched.
func (e *Engine) ProcessStartOfBar(book *orderbook.OrderBook, symbol string, bar domain.Bar, barIndex int, instrument domain.Instrument) []domain.Fill {
	if bar.IsVoid() {
		return nil
	}
	var fills []domain.Fill
	for _, o := range book.ActiveOrdersForSymbol(symbol) {
		if o.Type.Kind != domain.MarketOnOpen && o.Type.Kind != domain.MarketImmediate {
			continue
		}
		fill := e.fillOrder(book, o, bar.Open, bar, barIndex, domain.StartOfBar, false, instrument)
		fills = append(fills, fill)
	}
	return fills
}

// ProcessIntrabar evaluates active StopMarket/Limit/StopLimit orders
// for symbol against bar's high-low range, in the order given by the
// configured path policy. Orders whose ActivatedBar equals barIndex are
// excluded — a bracket child that activated this bar may not fill this
// bar.
func (e *Engine) ProcessIntrabar(book *orderbook.OrderBook, symbol string, bar domain.Bar, barIndex int, positionSide domain.PositionSide, instrument domain.Instrument) []domain.Fill {
	if bar.IsVoid() {
		return nil
	}

	var candidates []*domain.Order
	for _, o := range book.ActiveOrdersForSymbol(symbol) {
		switch o.Type.Kind {
		case domain.StopMarket, domain.Limit, domain.StopLimit:
		default:
			continue
		}
		if o.ActivatedBar != nil && *o.ActivatedBar == barIndex {
			continue
		}
		candidates = append(candidates, o)
	}
	if len(candidates) == 0 {
		return nil
	}

	sequence := e.config.PathPolicy.OrderEvaluationSequence(candidates, positionSide, bar)

	var fills []domain.Fill
	for _, o := range sequence {
		fresh, ok := book.GetOrder(o.ID)
		if !ok || !fresh.IsActive() {
			continue // a prior fill in this sequence may have OCO-cancelled it
		}

		result := evaluateTrigger(fresh, bar, e.config.GapPolicy)
		if !result.Triggered {
			continue
		}
		if fresh.Status.Kind == domain.Pending {
			_ = book.Trigger(fresh.ID, barIndex)
		}
		if !result.Filled {
			continue
		}

		fill := e.fillOrder(book, fresh, result.FillPrice, bar, barIndex, domain.Intrabar, result.GapThrough, instrument)
		fills = append(fills, fill)
	}
	return fills
}

// ProcessEndOfBar fills every active MarketOnClose order for symbol at
// bar.close.
func (e *Engine) ProcessEndOfBar(book *orderbook.OrderBook, symbol string, bar domain.Bar, barIndex int, instrument domain.Instrument) []domain.Fill {
	if bar.IsVoid() {
		return nil
	}
	var fills []domain.Fill
	for _, o := range book.ActiveOrdersForSymbol(symbol) {
		if o.Type.Kind != domain.MarketOnClose {
			continue
		}
		fill := e.fillOrder(book, o, bar.Close, bar, barIndex, domain.EndOfBar, false, instrument)
		fills = append(fills, fill)
	}
	return fills
}

func (e *Engine) fillOrder(book *orderbook.OrderBook, o *domain.Order, rawPrice float64, bar domain.Bar, barIndex int, phase domain.FillPhase, gapThrough bool, instrument domain.Instrument) domain.Fill {
	desiredQty := o.RemainingQuantity()
	effectiveQty := desiredQty
	if e.config.LiquidityPolicy != nil {
		effectiveQty, _ = e.config.LiquidityPolicy.Constrain(desiredQty, float64(bar.Volume))
	}
	if effectiveQty <= 0 {
		effectiveQty = desiredQty
	}

	adjPrice, commission, slippage := e.config.CostModel.ComputeFill(rawPrice, o.Side, effectiveQty, instrument)

	_, _ = book.RecordFill(o.ID, effectiveQty, barIndex)

	return domain.Fill{
		OrderID:    o.ID,
		BarIndex:   barIndex,
		Date:       bar.Date,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Price:      adjPrice,
		Quantity:   effectiveQty,
		Commission: commission,
		Slippage:   slippage,
		Phase:      phase,
		GapThrough: gapThrough,
	}
}
