package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// ParabolicSar is Wilder's stop-and-reverse trailing indicator.
type ParabolicSar struct {
	AfStart, AfStep, AfMax float64
}

func NewParabolicSar(afStart, afStep, afMax float64) ParabolicSar {
	return ParabolicSar{AfStart: afStart, AfStep: afStep, AfMax: afMax}
}

func (p ParabolicSar) Name() string {
	return fmt.Sprintf("parabolic_sar_%.3f_%.3f_%.3f", p.AfStart, p.AfStep, p.AfMax)
}
func (p ParabolicSar) WarmupLength() int { return 2 }

func (p ParabolicSar) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	if len(bars) < 3 {
		return out
	}

	uptrend := bars[1].Close >= bars[0].Close
	af := p.AfStart
	sar := bars[0].Low
	ep := bars[0].High
	if !uptrend {
		sar = bars[0].High
		ep = bars[0].Low
	}

	for i := 2; i < len(bars); i++ {
		prevSar := sar
		sar = prevSar + af*(ep-prevSar)

		if uptrend {
			if bars[i-1].Low < sar {
				sar = bars[i-1].Low
			}
			if bars[i-2].Low < sar {
				sar = bars[i-2].Low
			}
			if bars[i].High > ep {
				ep = bars[i].High
				af = minF(af+p.AfStep, p.AfMax)
			}
			if bars[i].Low < sar {
				uptrend = false
				sar = ep
				ep = bars[i].Low
				af = p.AfStart
			}
		} else {
			if bars[i-1].High > sar {
				sar = bars[i-1].High
			}
			if bars[i-2].High > sar {
				sar = bars[i-2].High
			}
			if bars[i].Low < ep {
				ep = bars[i].Low
				af = minF(af+p.AfStep, p.AfMax)
			}
			if bars[i].High > sar {
				uptrend = true
				sar = ep
				ep = bars[i].High
				af = p.AfStart
			}
		}

		out[i] = sar
	}
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
