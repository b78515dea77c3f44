// Package indicators computes pure, precomputed per-symbol indicator
// arrays consumed read-only by signal, filter, and PM components.
package indicators

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ridopark/trendlab/domain"
)

// Indicator is a pure function of a symbol's bar sequence. Name is the
// stable string key (e.g. "atr_14") under which its values are stored;
// two configs requiring the same key share one computed array.
type Indicator interface {
	Name() string
	WarmupLength() int
	Compute(bars []domain.Bar) []float64
}

// Values is one symbol's computed indicator arrays, keyed by Name().
type Values map[string][]float64

// Precompute runs every indicator against every symbol's bars and
// returns a per-symbol map of indicator key to value array. Indicators
// are pure functions of one symbol's own bars, so each symbol's work is
// dispatched to its own goroutine via errgroup; this is the only
// parallelism the engine performs, and it completes before the
// deterministic bar loop begins.
func Precompute(barsBySymbol map[string][]domain.Bar, indicatorList []Indicator) map[string]Values {
	out := make(map[string]Values, len(barsBySymbol))
	for symbol := range barsBySymbol {
		out[symbol] = make(Values, len(indicatorList))
	}

	g, _ := errgroup.WithContext(context.Background())
	for symbol, bars := range barsBySymbol {
		symbol, bars := symbol, bars
		dest := out[symbol]
		g.Go(func() error {
			for _, ind := range indicatorList {
				dest[ind.Name()] = ind.Compute(bars)
			}
			return nil
		})
	}
	_ = g.Wait() // indicator computation cannot fail; errgroup only waits for every symbol here

	return out
}

// Warmup returns the maximum warmup length across the given indicators,
// or 0 if the list is empty.
func Warmup(indicatorList []Indicator) int {
	max := 0
	for _, ind := range indicatorList {
		if w := ind.WarmupLength(); w > max {
			max = w
		}
	}
	return max
}

func nanFill(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func trueRange(bars []domain.Bar, i int) float64 {
	if i == 0 {
		return bars[i].High - bars[i].Low
	}
	h, l, pc := bars[i].High, bars[i].Low, bars[i-1].Close
	return math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
}
