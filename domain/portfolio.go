package domain

// Portfolio holds cash, one Position per symbol that has ever traded,
// and cumulative trading costs. Equity identity invariant:
// equity(prices) == cash + sum(signed_quantity(s) * prices[s]) for
// every symbol s with a supplied price.
type Portfolio struct {
	Cash               float64
	Positions          map[string]*Position
	CumulativeCommission float64
	CumulativeSlippage   float64
}

// NewPortfolio returns a portfolio seeded with initialCapital cash and
// no open positions.
func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		Cash:      initialCapital,
		Positions: make(map[string]*Position),
	}
}

// GetPosition returns the position for symbol, or nil if none exists yet.
func (p *Portfolio) GetPosition(symbol string) *Position {
	return p.Positions[symbol]
}

// GetPositionMut returns the position for symbol, creating a flat
// placeholder if none exists. Used by post-bar mark-to-market and PM
// maintenance, which need a stable pointer to mutate.
func (p *Portfolio) GetPositionMut(symbol string) *Position {
	pos, ok := p.Positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol, Side: Flat}
		p.Positions[symbol] = pos
	}
	return pos
}

// HasPosition reports whether symbol currently carries a non-flat quantity.
func (p *Portfolio) HasPosition(symbol string) bool {
	pos, ok := p.Positions[symbol]
	return ok && !pos.IsFlat()
}

// ApplyFill routes a fill to its symbol's position and updates cash by
// the signed notional net of commission. f.Price already carries the
// directional slippage adjustment applied by the cost model (buys
// fill higher, sells fill lower) — f.Slippage is a diagnostic amount,
// accumulated for reporting but never subtracted from cash again.
func (p *Portfolio) ApplyFill(f Fill) {
	pos := p.GetPositionMut(f.Symbol)
	realizedPnL := pos.ApplyFill(f.Side, f.Quantity, f.Price, f.BarIndex)
	_ = realizedPnL // realized PnL already folded into pos.RealizedPnL

	notional := f.Quantity * f.Price
	if f.Side == Buy {
		p.Cash -= notional + f.Commission
	} else {
		p.Cash += notional - f.Commission
	}
	p.CumulativeCommission += f.Commission
	p.CumulativeSlippage += f.Slippage
}

// Equity computes cash + sum(signed_quantity * price) over the supplied
// per-symbol mark prices. Symbols without an open position contribute 0.
func (p *Portfolio) Equity(prices map[string]float64) float64 {
	equity := p.Cash
	for symbol, pos := range p.Positions {
		if pos.IsFlat() {
			continue
		}
		price, ok := prices[symbol]
		if !ok {
			price = pos.MarkPrice
		}
		signed := pos.Quantity
		if pos.Side == Short {
			signed = -pos.Quantity
		}
		equity += signed * price
	}
	return equity
}
