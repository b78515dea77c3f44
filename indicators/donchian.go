package indicators

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Donchian is the N-bar rolling high (Upper) or low (Lower) channel.
type Donchian struct {
	Lookback int
	Upper    bool
}

func NewDonchianUpper(lookback int) Donchian { return Donchian{Lookback: lookback, Upper: true} }
func NewDonchianLower(lookback int) Donchian { return Donchian{Lookback: lookback, Upper: false} }

func (d Donchian) Name() string {
	side := "upper"
	if !d.Upper {
		side = "lower"
	}
	return fmt.Sprintf("donchian_%s_%d", side, d.Lookback)
}

func (d Donchian) WarmupLength() int { return d.Lookback - 1 }

func (d Donchian) Compute(bars []domain.Bar) []float64 {
	out := nanFill(len(bars))
	for i := d.Lookback - 1; i < len(bars); i++ {
		extreme := bars[i-d.Lookback+1].High
		if !d.Upper {
			extreme = bars[i-d.Lookback+1].Low
		}
		for j := i - d.Lookback + 2; j <= i; j++ {
			if d.Upper && bars[j].High > extreme {
				extreme = bars[j].High
			} else if !d.Upper && bars[j].Low < extreme {
				extreme = bars[j].Low
			}
		}
		out[i] = extreme
	}
	return out
}
