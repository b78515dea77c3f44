package execution

// LiquidityPolicy caps the quantity an order may fill against a bar's
// traded volume. The remainder is left to the caller's resting-order
// logic; this package never cancels or re-sizes the underlying order.
type LiquidityPolicy interface {
	Constrain(desiredQty, barVolume float64) (effectiveQty, remainder float64)
}

// ParticipationRateLiquidity fills at most Rate of a bar's volume.
type ParticipationRateLiquidity struct {
	Rate float64
}

func (p ParticipationRateLiquidity) Constrain(desiredQty, barVolume float64) (float64, float64) {
	capQty := p.Rate * barVolume
	if desiredQty <= capQty {
		return desiredQty, 0
	}
	return capQty, desiredQty - capQty
}

// NoLiquidityConstraint fills the full desired quantity unconditionally
// — a nil Config.LiquidityPolicy behaves this way.
type NoLiquidityConstraint struct{}

func (NoLiquidityConstraint) Constrain(desiredQty, _ float64) (float64, float64) {
	return desiredQty, 0
}
