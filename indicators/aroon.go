package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Aroon measures bars since the Period-window high (Up) or low (Down),
// scaled to 0-100.
type Aroon struct {
	Period int
	Up     bool
}

func NewAroonUp(period int) Aroon   { return Aroon{Period: period, Up: true} }
func NewAroonDown(period int) Aroon { return Aroon{Period: period, Up: false} }

func (a Aroon) Name() string {
	side := "up"
	if !a.Up {
		side = "down"
	}
	return fmt.Sprintf("aroon_%s_%d", side, a.Period)
}

func (a Aroon) WarmupLength() int { return a.Period }

func (a Aroon) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	for i := a.Period; i < len(bars); i++ {
		extremeIdx := i - a.Period
		extreme := bars[extremeIdx].High
		if !a.Up {
			extreme = bars[extremeIdx].Low
		}
		for j := i - a.Period + 1; j <= i; j++ {
			if a.Up && bars[j].High >= extreme {
				extreme = bars[j].High
				extremeIdx = j
			} else if !a.Up && bars[j].Low <= extreme {
				extreme = bars[j].Low
				extremeIdx = j
			}
		}
		barsSince := i - extremeIdx
		out[i] = float64(a.Period-barsSince) / float64(a.Period) * 100
	}
	return out
}
