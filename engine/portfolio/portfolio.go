// Package portfolio applies execution fills to a domain.Portfolio and
// renders the equity/cost summary the teacher's results reporting
// produces at the end of a run. The accounting itself lives on
// domain.Portfolio; this package is a thin orchestration and reporting
// layer over it. Neither engine/loop nor cmd/backtester calls it:
// engine/loop applies fills through domain.Portfolio directly.
package portfolio

import (
	"fmt"
	"strings"

	"github.com/ridopark/trendlab/domain"
)

// ApplyFills routes every fill in order to p, mutating positions and
// cash. Fills must already be ordered by phase within a bar — callers
// pass phase-ordered batches from engine/execution.
func ApplyFills(p *domain.Portfolio, fills []domain.Fill) {
	for _, f := range fills {
		p.ApplyFill(f)
	}
}

// Snapshot is a point-in-time rollup of a portfolio's equity and cost
// basis, grounded on the teacher's Results/PerformanceMetrics reporting
// surface (pkg/backtester/results.go).
type Snapshot struct {
	Cash                 float64
	Equity               float64
	CumulativeCommission float64
	CumulativeSlippage   float64
	OpenPositions        int
}

// Summarize evaluates p against prices and returns a report-ready rollup.
func Summarize(p *domain.Portfolio, prices map[string]float64) Snapshot {
	open := 0
	for _, pos := range p.Positions {
		if !pos.IsFlat() {
			open++
		}
	}
	return Snapshot{
		Cash:                 p.Cash,
		Equity:               p.Equity(prices),
		CumulativeCommission: p.CumulativeCommission,
		CumulativeSlippage:   p.CumulativeSlippage,
		OpenPositions:        open,
	}
}

// String renders a multi-line human-readable report, matching the
// teacher's Results.Summary() format.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio Summary\n")
	fmt.Fprintf(&b, "  Cash:                  %.2f\n", s.Cash)
	fmt.Fprintf(&b, "  Equity:                %.2f\n", s.Equity)
	fmt.Fprintf(&b, "  Cumulative Commission: %.2f\n", s.CumulativeCommission)
	fmt.Fprintf(&b, "  Cumulative Slippage:   %.2f\n", s.CumulativeSlippage)
	fmt.Fprintf(&b, "  Open Positions:        %d\n", s.OpenPositions)
	return b.String()
}
