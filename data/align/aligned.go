// Package align builds date-aligned multi-symbol bar data for the core
// engine to consume.
package align

import (
	"sort"
	"time"

	"github.com/ridopark/trendlab/domain"
)

// RawBar is what a data provider returns for one symbol on one date,
// before alignment against the universe's full date sequence.
type RawBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   uint64
}

// AlignedData is an ordered date sequence, a per-symbol bar sequence of
// the same length as the date sequence, and the universe's symbol list
// in deterministic order. Invariant: for every symbol s and index i,
// Bars[s][i].Date == Dates[i].
type AlignedData struct {
	Dates   []time.Time
	Bars    map[string][]domain.Bar
	Symbols []string
}

// NumBars returns the number of bars per symbol (len(Dates)).
func (a *AlignedData) NumBars() int { return len(a.Dates) }

// Build assembles AlignedData from raw per-symbol bar sequences. Unlike
// a feed that drops any date missing a symbol's row, Build takes the
// union of all dates seen across symbols and injects a void bar (see
// domain.VoidBar) for every symbol missing a row on a given date. This
// preserves the AlignedData invariant described in spec.md §3 instead
// of silently shrinking the universe.
func Build(rawBySymbol map[string][]RawBar) *AlignedData {
	symbols := make([]string, 0, len(rawBySymbol))
	for s := range rawBySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	dateSet := make(map[time.Time]struct{})
	for _, raws := range rawBySymbol {
		for _, r := range raws {
			dateSet[r.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	byDate := make(map[string]map[time.Time]RawBar, len(symbols))
	for _, s := range symbols {
		m := make(map[time.Time]RawBar, len(rawBySymbol[s]))
		for _, r := range rawBySymbol[s] {
			m[r.Date] = r
		}
		byDate[s] = m
	}

	bars := make(map[string][]domain.Bar, len(symbols))
	for _, s := range symbols {
		seq := make([]domain.Bar, len(dates))
		for i, d := range dates {
			if r, ok := byDate[s][d]; ok {
				seq[i] = domain.Bar{
					Symbol:   s,
					Date:     d,
					Open:     r.Open,
					High:     r.High,
					Low:      r.Low,
					Close:    r.Close,
					AdjClose: r.AdjClose,
					Volume:   r.Volume,
				}
			} else {
				seq[i] = domain.VoidBar(s, d)
			}
		}
		bars[s] = seq
	}

	return &AlignedData{Dates: dates, Bars: bars, Symbols: symbols}
}
