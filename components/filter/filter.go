// Package filter implements signal filters: pure veto functions that
// inspect a candidate SignalEvent against indicator state and either
// pass or reject it with a reason. Grounded on
// original_source/trendlab-core/src/components/factory.rs's
// create_filter tag catalogue.
package filter

import (
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/indicators"
)

// Filter evaluates one candidate signal and returns a verdict. The
// evaluation is recorded unconditionally by the caller regardless of
// the verdict; only a Passed verdict allows order submission to
// proceed.
type Filter interface {
	Evaluate(event domain.SignalEvent, bars []domain.Bar, barIndex int, values indicators.Values) domain.Evaluation
	RequiredIndicators() []indicators.Indicator
}

func passed(event domain.SignalEvent) domain.Evaluation {
	return domain.Evaluation{Signal: event, Verdict: domain.Passed}
}

func rejected(event domain.SignalEvent, reason string) domain.Evaluation {
	return domain.Evaluation{Signal: event, Verdict: domain.Rejected, Reason: reason}
}

// NoFilter passes every signal unconditionally. factory.rs tag:
// "no_filter".
type NoFilter struct{}

func (NoFilter) RequiredIndicators() []indicators.Indicator { return nil }

func (NoFilter) Evaluate(event domain.SignalEvent, _ []domain.Bar, _ int, _ indicators.Values) domain.Evaluation {
	return passed(event)
}
