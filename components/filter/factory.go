package filter

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Error reports an unknown filter tag. Mirrors factory.rs's
// FactoryError::Filter variant.
type Error struct {
	Tag    string
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("filter factory: %s: %s", e.Tag, e.Detail) }

func param(cfg domain.ComponentConfig, name string, def float64) float64 {
	return cfg.Param(name, def)
}

func paramInt(cfg domain.ComponentConfig, name string, def int) int {
	return cfg.ParamInt(name, def)
}

// Create builds a Filter from a ComponentConfig, keyed by
// cfg.ComponentType. Tags mirror factory.rs's create_filter exactly.
func Create(cfg domain.ComponentConfig) (Filter, error) {
	switch cfg.ComponentType {
	case "no_filter":
		return NoFilter{}, nil
	case "adx_filter":
		return AdxFilter{Period: paramInt(cfg, "period", 14), MinAdx: param(cfg, "min_adx", 25)}, nil
	case "ma_regime":
		dir := Above
		if param(cfg, "direction", 0) == 1 {
			dir = Below
		}
		return MaRegime{Period: paramInt(cfg, "period", 200), Direction: dir}, nil
	case "volatility_filter":
		return VolatilityFilter{AtrPeriod: paramInt(cfg, "atr_period", 14), MaxAtrPct: param(cfg, "max_atr_pct", 5.0)}, nil
	default:
		return nil, &Error{Tag: cfg.ComponentType, Detail: "unknown filter component"}
	}
}
