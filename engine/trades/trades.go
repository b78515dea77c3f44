// Package trades extracts closed TradeRecords from a fill stream via
// FIFO lot matching per symbol, tracking MAE/MFE by replaying the bars
// spanned by each open lot, and computes stickiness diagnostics for a
// finished run. Grounded on the teacher's
// pkg/backtester/results.go PositionTracker.ProcessTrade (FIFO
// entry/exit pairing), generalized to also carry MAE/MFE and
// component-tag metadata per spec.md §4.6.
package trades

import (
	"math"
	"sort"
	"time"

	"github.com/ridopark/trendlab/domain"
)

// ComponentTags names the four pluggable components active when a
// position was opened, attached to every TradeRecord it produces for
// traceability.
type ComponentTags struct {
	SignalType         string
	PositionManagerType string
	ExecutionModelType string
	SignalFilterType   string
}

type openLot struct {
	Symbol       string
	Side         domain.OrderSide // side of the entry fill: Buy => long lot, Sell => short lot
	EntryBar     int
	EntryDate    time.Time
	EntryPrice   float64
	Quantity     float64
	Commission   float64
	Slippage     float64
	worstPrice   float64
	bestPrice    float64
	tags         ComponentTags
}

// Extractor accumulates fills and bar marks over the course of a run
// and yields closed TradeRecords as positions are reduced or reversed.
type Extractor struct {
	openLots map[string][]*openLot
	closed   []domain.TradeRecord
}

// NewExtractor returns an empty extractor.
func NewExtractor() *Extractor {
	return &Extractor{openLots: make(map[string][]*openLot)}
}

func oppositeSide(s domain.OrderSide) domain.OrderSide {
	if s == domain.Buy {
		return domain.Sell
	}
	return domain.Buy
}

// OnFill records one fill against the FIFO lot queue for its symbol.
// tags is only consulted when the fill opens a new lot (an entry); it
// is ignored on a fill that purely reduces existing lots.
func (e *Extractor) OnFill(f domain.Fill, tags ComponentTags) {
	lots := e.openLots[f.Symbol]
	remaining := f.Quantity
	reduceSide := oppositeSide(f.Side)

	for remaining > 0 && len(lots) > 0 && lots[0].Side == reduceSide {
		lot := lots[0]
		closeQty := math.Min(lot.Quantity, remaining)
		proportion := closeQty / lot.Quantity

		record := e.closeLot(lot, closeQty, proportion, f)
		e.closed = append(e.closed, record)

		lot.Quantity -= closeQty
		lot.Commission -= lot.Commission * proportion
		lot.Slippage -= lot.Slippage * proportion
		remaining -= closeQty
		if lot.Quantity <= 1e-9 {
			lots = lots[1:]
		}
	}

	if remaining > 1e-9 {
		lots = append(lots, &openLot{
			Symbol:     f.Symbol,
			Side:       f.Side,
			EntryBar:   f.BarIndex,
			EntryDate:  f.Date,
			EntryPrice: f.Price,
			Quantity:   remaining,
			Commission: f.Commission * (remaining / f.Quantity),
			Slippage:   f.Slippage * (remaining / f.Quantity),
			worstPrice: f.Price,
			bestPrice:  f.Price,
			tags:       tags,
		})
	}
	e.openLots[f.Symbol] = lots
}

func (e *Extractor) closeLot(lot *openLot, closeQty, proportion float64, exit domain.Fill) domain.TradeRecord {
	var grossPnL float64
	if lot.Side == domain.Buy {
		grossPnL = (exit.Price - lot.EntryPrice) * closeQty
	} else {
		grossPnL = (lot.EntryPrice - exit.Price) * closeQty
	}
	commission := lot.Commission*proportion + exit.Commission*(closeQty/exit.Quantity)
	slippage := lot.Slippage*proportion + exit.Slippage*(closeQty/exit.Quantity)

	mae, mfe := lotExtremes(lot, closeQty)

	return domain.TradeRecord{
		Symbol:              lot.Symbol,
		Side:                lot.Side,
		EntryBar:            lot.EntryBar,
		ExitBar:              exit.BarIndex,
		EntryDate:            lot.EntryDate,
		ExitDate:             exit.Date,
		Quantity:             closeQty,
		EntryPrice:           lot.EntryPrice,
		ExitPrice:            exit.Price,
		GrossPnL:             grossPnL,
		Commission:           commission,
		Slippage:             slippage,
		NetPnL:               grossPnL - commission - slippage,
		BarsHeld:             exit.BarIndex - lot.EntryBar,
		MAE:                  mae,
		MFE:                  mfe,
		SignalType:           lot.tags.SignalType,
		PositionManagerType:  lot.tags.PositionManagerType,
		ExecutionModelType:   lot.tags.ExecutionModelType,
		SignalFilterType:     lot.tags.SignalFilterType,
	}
}

func lotExtremes(lot *openLot, qty float64) (mae, mfe float64) {
	if lot.Side == domain.Buy {
		mae = (lot.worstPrice - lot.EntryPrice) * qty
		mfe = (lot.bestPrice - lot.EntryPrice) * qty
	} else {
		mae = (lot.EntryPrice - lot.worstPrice) * qty
		mfe = (lot.EntryPrice - lot.bestPrice) * qty
	}
	if mae > 0 {
		mae = 0
	}
	if mfe < 0 {
		mfe = 0
	}
	return mae, mfe
}

// OnBarMark replays an Open-status bar against every lot still open
// for symbol, updating the running worst/best price seen since entry
// so the eventual close can compute MAE/MFE. Void bars must not be
// passed — callers should skip marking on Closed-status symbols.
func (e *Extractor) OnBarMark(symbol string, bar domain.Bar) {
	for _, lot := range e.openLots[symbol] {
		if lot.Side == domain.Buy {
			lot.worstPrice = math.Min(lot.worstPrice, bar.Low)
			lot.bestPrice = math.Max(lot.bestPrice, bar.High)
		} else {
			lot.worstPrice = math.Max(lot.worstPrice, bar.High)
			lot.bestPrice = math.Min(lot.bestPrice, bar.Low)
		}
	}
}

// Trades returns every closed trade record produced so far, in the
// order fills closed them.
func (e *Extractor) Trades() []domain.TradeRecord {
	return e.closed
}

// Stickiness summarizes how long positions are held and how often the
// position manager acted; exits are not broken down by trigger type.
// Reconstructed from the call-site inputs visible in
// loop_runner.rs (compute_stickiness's own body was not retained in
// the pack).
type Stickiness struct {
	MedianHoldingBars   float64
	P25HoldingBars      float64
	P75HoldingBars      float64
	ReferenceChaseRatio float64 // pm_calls_active / pm_calls_total
}

// ComputeStickiness derives holding-period percentiles from closed
// trades and folds in the PM-maintenance call counters the loop
// tracks across the run.
func ComputeStickiness(closed []domain.TradeRecord, pmCallsTotal, pmCallsActive int) Stickiness {
	if len(closed) == 0 {
		return Stickiness{}
	}
	held := make([]int, len(closed))
	for i, t := range closed {
		held[i] = t.BarsHeld
	}
	sort.Ints(held)

	ratio := 0.0
	if pmCallsTotal > 0 {
		ratio = float64(pmCallsActive) / float64(pmCallsTotal)
	}

	return Stickiness{
		MedianHoldingBars:   percentile(held, 0.5),
		P25HoldingBars:      percentile(held, 0.25),
		P75HoldingBars:      percentile(held, 0.75),
		ReferenceChaseRatio: ratio,
	}
}

func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
