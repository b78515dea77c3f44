package execution

import "github.com/ridopark/trendlab/domain"

// GapPolicyKind resolves a stop's fill price when the bar's open has
// already gapped through the trigger in the adverse direction.
type GapPolicyKind int

const (
	FillAtOpen GapPolicyKind = iota
	FillAtTrigger
	FillAtWorst
)

// resolveGapSell resolves the fill price for a sell stop that gapped
// through (open <= trigger).
func resolveGapSell(policy GapPolicyKind, open, trigger float64) float64 {
	switch policy {
	case FillAtOpen:
		return open
	case FillAtTrigger:
		return trigger
	case FillAtWorst:
		return minF(open, trigger)
	default:
		return open
	}
}

// resolveGapBuy resolves the fill price for a buy stop that gapped
// through (open >= trigger).
func resolveGapBuy(policy GapPolicyKind, open, trigger float64) float64 {
	switch policy {
	case FillAtOpen:
		return open
	case FillAtTrigger:
		return trigger
	case FillAtWorst:
		return maxF(open, trigger)
	default:
		return open
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// triggerResult describes the outcome of evaluating one order's
// trigger rule against a bar.
type triggerResult struct {
	Triggered  bool
	Filled     bool
	FillPrice  float64
	GapThrough bool
}

// evaluateTrigger applies the side-specific trigger table from the
// primary execution engine (not the secondary fill_engine's symmetric
// limit rule, which this package intentionally does not implement).
func evaluateTrigger(order *domain.Order, bar domain.Bar, gapPolicy GapPolicyKind) triggerResult {
	switch order.Type.Kind {
	case domain.StopMarket:
		return evaluateStop(order, bar, gapPolicy)
	case domain.Limit:
		return evaluateLimit(order, bar)
	case domain.StopLimit:
		return evaluateStopLimit(order, bar, gapPolicy)
	default:
		return triggerResult{}
	}
}

func evaluateStop(order *domain.Order, bar domain.Bar, gapPolicy GapPolicyKind) triggerResult {
	trigger := order.Type.TriggerPrice
	if order.Side == domain.Sell {
		if bar.Low > trigger {
			return triggerResult{}
		}
		if bar.Open <= trigger {
			return triggerResult{Triggered: true, Filled: true, FillPrice: resolveGapSell(gapPolicy, bar.Open, trigger), GapThrough: true}
		}
		return triggerResult{Triggered: true, Filled: true, FillPrice: trigger}
	}

	// Buy stop.
	if bar.High < trigger {
		return triggerResult{}
	}
	if bar.Open >= trigger {
		return triggerResult{Triggered: true, Filled: true, FillPrice: resolveGapBuy(gapPolicy, bar.Open, trigger), GapThrough: true}
	}
	return triggerResult{Triggered: true, Filled: true, FillPrice: trigger}
}

func evaluateLimit(order *domain.Order, bar domain.Bar) triggerResult {
	limit := order.Type.LimitPrice
	if order.Side == domain.Buy {
		if bar.Low > limit {
			return triggerResult{}
		}
		if bar.Open <= limit {
			return triggerResult{Triggered: true, Filled: true, FillPrice: bar.Open}
		}
		return triggerResult{Triggered: true, Filled: true, FillPrice: limit}
	}

	// Sell limit.
	if bar.High < limit {
		return triggerResult{}
	}
	if bar.Open >= limit {
		return triggerResult{Triggered: true, Filled: true, FillPrice: bar.Open}
	}
	return triggerResult{Triggered: true, Filled: true, FillPrice: limit}
}

// evaluateStopLimit checks the stop-side condition first; if it holds,
// the order is at minimum Triggered. It fills only if the limit is also
// reachable within the same bar's range.
func evaluateStopLimit(order *domain.Order, bar domain.Bar, gapPolicy GapPolicyKind) triggerResult {
	stopSide := evaluateStop(order, bar, gapPolicy)
	if !stopSide.Triggered {
		return triggerResult{}
	}

	limit := order.Type.LimitPrice
	limitReachable := false
	if order.Side == domain.Sell {
		limitReachable = bar.High >= limit
	} else {
		limitReachable = bar.Low <= limit
	}
	if !limitReachable {
		return triggerResult{Triggered: true, Filled: false}
	}
	return triggerResult{Triggered: true, Filled: true, FillPrice: limit}
}
