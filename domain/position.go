package domain

import "math"

// PositionSide is the directional state of a Position.
type PositionSide int

const (
	Flat PositionSide = iota
	Long
	Short
)

func (s PositionSide) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Position tracks one symbol's holding. It transitions Flat -> Long|Short
// on first fill, grows on same-side fills via a weighted-average entry
// price (grounded on the teacher's ExecuteTrade averaging, pkg/backtester/portfolio.go),
// and returns to Flat on an opposite-side fill that covers the full
// quantity.
type Position struct {
	Symbol                 string
	Side                   PositionSide
	Quantity               float64 // always >= 0; Side carries direction
	AvgEntryPrice          float64
	EntryBar               int
	BarsHeld               int
	HighestSinceEntry      float64
	LowestSinceEntry       float64
	UnrealizedPnL          float64
	RealizedPnL            float64
	CurrentStop            *float64
	MarkPrice              float64
}

// NewLongPosition opens a new long position.
func NewLongPosition(symbol string, qty, price float64, bar int) *Position {
	return &Position{
		Symbol:            symbol,
		Side:              Long,
		Quantity:          qty,
		AvgEntryPrice:     price,
		EntryBar:          bar,
		HighestSinceEntry: price,
		LowestSinceEntry:  price,
		MarkPrice:         price,
	}
}

// NewShortPosition opens a new short position.
func NewShortPosition(symbol string, qty, price float64, bar int) *Position {
	return &Position{
		Symbol:            symbol,
		Side:              Short,
		Quantity:          qty,
		AvgEntryPrice:     price,
		EntryBar:          bar,
		HighestSinceEntry: price,
		LowestSinceEntry:  price,
		MarkPrice:         price,
	}
}

// IsFlat reports whether the position carries no quantity.
func (p *Position) IsFlat() bool {
	return p == nil || p.Side == Flat || p.Quantity == 0
}

// TickBar increments bars_held. It is called every bar the position is
// open, including void bars, per the post-bar step of the loop.
func (p *Position) TickBar() {
	p.BarsHeld++
}

// UpdateMark marks the position to price, refreshing the
// highest/lowest-since-entry extremes and unrealized PnL. It must only
// be called for Open-status bars; void bars carry the mark forward
// unchanged.
func (p *Position) UpdateMark(price float64) {
	p.MarkPrice = price
	if price > p.HighestSinceEntry {
		p.HighestSinceEntry = price
	}
	if price < p.LowestSinceEntry {
		p.LowestSinceEntry = price
	}
	switch p.Side {
	case Long:
		p.UnrealizedPnL = (price - p.AvgEntryPrice) * p.Quantity
	case Short:
		p.UnrealizedPnL = (p.AvgEntryPrice - price) * p.Quantity
	default:
		p.UnrealizedPnL = 0
	}
}

// ApplyFill updates the position for one fill on the given side and
// returns the realized PnL produced by any portion that reduced an
// existing opposite-side position. Weighted-average entry price
// accounting mirrors the teacher's Portfolio.ExecuteTrade.
func (p *Position) ApplyFill(side OrderSide, qty, price float64, bar int) (realizedPnL float64) {
	signedFill := qty
	if side == Sell {
		signedFill = -qty
	}

	current := p.signedQuantity()
	resulting := current + signedFill

	switch {
	case current == 0:
		// Opening a fresh position.
		p.AvgEntryPrice = price
		p.EntryBar = bar
		p.HighestSinceEntry = price
		p.LowestSinceEntry = price
		p.BarsHeld = 0
	case sameSign(current, signedFill):
		// Adding to an existing position: weighted-average entry.
		p.AvgEntryPrice = (p.AvgEntryPrice*math.Abs(current) + price*qty) / math.Abs(resulting)
	default:
		// Reducing or reversing.
		closingQty := math.Min(math.Abs(current), qty)
		if current > 0 {
			realizedPnL = (price - p.AvgEntryPrice) * closingQty
		} else {
			realizedPnL = (p.AvgEntryPrice - price) * closingQty
		}
		p.RealizedPnL += realizedPnL
		if math.Abs(signedFill) > math.Abs(current) {
			// Reversed through flat into the opposite side.
			p.AvgEntryPrice = price
			p.EntryBar = bar
			p.HighestSinceEntry = price
			p.LowestSinceEntry = price
			p.BarsHeld = 0
		}
	}

	p.setSignedQuantity(resulting)
	p.MarkPrice = price
	return realizedPnL
}

func (p *Position) signedQuantity() float64 {
	switch p.Side {
	case Long:
		return p.Quantity
	case Short:
		return -p.Quantity
	default:
		return 0
	}
}

func (p *Position) setSignedQuantity(signed float64) {
	switch {
	case signed > 0:
		p.Side = Long
		p.Quantity = signed
	case signed < 0:
		p.Side = Short
		p.Quantity = -signed
	default:
		p.Side = Flat
		p.Quantity = 0
		p.CurrentStop = nil
	}
}

func sameSign(a, b float64) bool {
	return (a >= 0 && b >= 0) || (a <= 0 && b <= 0)
}
