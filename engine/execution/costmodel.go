package execution

import (
	"github.com/shopspring/decimal"

	"github.com/ridopark/trendlab/domain"
)

// CostModel turns a raw fill price into an adjusted price plus the
// monetary commission and slippage applied. Slippage is directional:
// buys push the fill price up, sells push it down.
type CostModel interface {
	ComputeFill(rawPrice float64, side domain.OrderSide, qty float64, instrument domain.Instrument) (adjPrice, commission, slippage float64)
}

// PercentCostModel applies slippage as a fixed basis-point fraction of
// price and commission as a fixed fraction of notional. Constructing it
// with both fields zero reproduces a frictionless fill.
type PercentCostModel struct {
	SlippageBps   float64
	CommissionRate float64
}

func (m PercentCostModel) ComputeFill(rawPrice float64, side domain.OrderSide, qty float64, _ domain.Instrument) (float64, float64, float64) {
	slippage := rawPrice * m.SlippageBps / 10000 * qty
	adj := rawPrice
	perShareSlip := rawPrice * m.SlippageBps / 10000
	if side == domain.Buy {
		adj = rawPrice + perShareSlip
	} else {
		adj = rawPrice - perShareSlip
	}
	notional := adj * qty
	commission := notional * m.CommissionRate
	if commission < 0 {
		commission = -commission
	}
	return adj, commission, absF(slippage)
}

// RegulatoryCostModel layers the SEC Section 31 fee and FINRA Trading
// Activity Fee on top of a PercentCostModel, matching the fee schedule
// in the teacher's broker: SEC fee is $0.0000278 per dollar of sell
// notional; FINRA TAF is $0.000145 per share sold, capped at $7.27. Both
// apply to sells only. Computed in decimal to avoid float drift
// accumulating across a long trade tape, then converted back to
// float64 for the Fill record.
type RegulatoryCostModel struct {
	PercentCostModel
}

var (
	secFeeRate  = decimal.NewFromFloat(0.0000278)
	finraTAFFee = decimal.NewFromFloat(0.000145)
	finraTAFCap = decimal.NewFromFloat(7.27)
)

func (m RegulatoryCostModel) ComputeFill(rawPrice float64, side domain.OrderSide, qty float64, instrument domain.Instrument) (float64, float64, float64) {
	adj, commission, slippage := m.PercentCostModel.ComputeFill(rawPrice, side, qty, instrument)
	if side != domain.Sell {
		return adj, commission, slippage
	}

	notional := decimal.NewFromFloat(adj).Mul(decimal.NewFromFloat(qty))
	secFee := notional.Mul(secFeeRate)

	taf := decimal.NewFromFloat(qty).Mul(finraTAFFee)
	if taf.GreaterThan(finraTAFCap) {
		taf = finraTAFCap
	}

	total := decimal.NewFromFloat(commission).Add(secFee).Add(taf)
	f, _ := total.Float64()
	return adj, f, slippage
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
