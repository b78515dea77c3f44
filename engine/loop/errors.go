package loop

import (
	"fmt"

	"github.com/ridopark/trendlab/data/align"
	"github.com/ridopark/trendlab/indicators"
)

// ErrorKind distinguishes the BacktestError variants: fatal,
// construction-time problems that must abort the run rather than be
// swallowed like an orderbook.Error.
type ErrorKind int

const (
	InsufficientData ErrorKind = iota
	MissingIndicator
	InvariantViolated
)

// Error is the engine's construction-time error type, returned by
// ValidateConfig before a run is attempted.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case InsufficientData:
		return fmt.Sprintf("insufficient data: %s", e.Detail)
	case MissingIndicator:
		return fmt.Sprintf("missing indicator: %s", e.Detail)
	case InvariantViolated:
		return fmt.Sprintf("configuration invariant violated: %s", e.Detail)
	default:
		return fmt.Sprintf("backtest error: %s", e.Detail)
	}
}

// ValidateConfig checks the conditions Run assumes hold: there is at
// least one bar to process, the dataset carries enough history for the
// indicator warmup plus config.WarmupBars to ever pass, and the
// position sizing / capital inputs are sane. Callers should invoke this
// before Run; Run itself does not re-validate.
func ValidateConfig(aligned *align.AlignedData, indicatorList []indicators.Indicator, config EngineConfig) error {
	if aligned == nil || aligned.NumBars() == 0 {
		return &Error{Kind: InsufficientData, Detail: "aligned dataset has zero bars"}
	}

	warmup := indicators.Warmup(indicatorList)
	if config.WarmupBars > warmup {
		warmup = config.WarmupBars
	}
	if warmup >= aligned.NumBars() {
		return &Error{Kind: InsufficientData, Detail: fmt.Sprintf(
			"warmup requirement %d bars meets or exceeds dataset length %d", warmup, aligned.NumBars())}
	}

	if config.InitialCapital <= 0 {
		return &Error{Kind: InvariantViolated, Detail: "initial capital must be positive"}
	}
	if config.PositionSizePct <= 0 || config.PositionSizePct > 1 {
		return &Error{Kind: InvariantViolated, Detail: "position_size_pct must be in (0, 1]"}
	}

	return nil
}
