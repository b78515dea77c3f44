package execution

import (
	"sort"

	"github.com/ridopark/trendlab/domain"
)

// PathPolicyKind selects how ambiguous same-bar order evaluation order
// is resolved when more than one resting order could fire within a
// single bar's high-low range.
type PathPolicyKind int

const (
	Deterministic PathPolicyKind = iota
	WorstCase
	BestCase
)

// PathPolicy orders a set of active orders for intrabar evaluation.
type PathPolicy interface {
	OrderEvaluationSequence(orders []*domain.Order, positionSide domain.PositionSide, bar domain.Bar) []*domain.Order
}

// DeterministicPath evaluates orders by ascending id — stable and
// reproducible regardless of held position.
type DeterministicPath struct{}

func (DeterministicPath) OrderEvaluationSequence(orders []*domain.Order, _ domain.PositionSide, _ domain.Bar) []*domain.Order {
	out := append([]*domain.Order(nil), orders...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// adversityRank scores how adverse an order is to the held position:
// higher is more adverse. Stop orders rank as adverse (a stop-loss on a
// long) and limit orders as favorable (a take-profit); the rank looks
// at order kind only, not order side. With a flat position every order
// ranks equally, so id order decides.
func adversityRank(o *domain.Order, positionSide domain.PositionSide) int {
	if positionSide != domain.Long && positionSide != domain.Short {
		return -1
	}
	switch o.Type.Kind {
	case domain.StopMarket, domain.StopLimit:
		return 1
	case domain.Limit:
		return 0
	default:
		return -1
	}
}

func rankedPath(orders []*domain.Order, positionSide domain.PositionSide, mostAdverseFirst bool) []*domain.Order {
	out := append([]*domain.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := adversityRank(out[i], positionSide), adversityRank(out[j], positionSide)
		if ri == rj {
			return out[i].ID < out[j].ID
		}
		if mostAdverseFirst {
			return ri > rj
		}
		return ri < rj
	})
	return out
}

// WorstCasePath evaluates the order most adverse to the held position
// first — for a long holding an OCO stop/take-profit pair, the stop
// fires first on an ambiguous bar.
type WorstCasePath struct{}

func (WorstCasePath) OrderEvaluationSequence(orders []*domain.Order, positionSide domain.PositionSide, _ domain.Bar) []*domain.Order {
	return rankedPath(orders, positionSide, true)
}

// BestCasePath evaluates the most favorable order first — for the same
// long, the take-profit fires first.
type BestCasePath struct{}

func (BestCasePath) OrderEvaluationSequence(orders []*domain.Order, positionSide domain.PositionSide, _ domain.Bar) []*domain.Order {
	return rankedPath(orders, positionSide, false)
}
