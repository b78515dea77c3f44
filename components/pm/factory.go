package pm

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Error reports an unknown position-manager tag. Mirrors factory.rs's
// FactoryError::Pm variant.
type Error struct {
	Tag    string
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("pm factory: %s: %s", e.Tag, e.Detail) }

func param(cfg domain.ComponentConfig, name string, def float64) float64 {
	return cfg.Param(name, def)
}

func paramInt(cfg domain.ComponentConfig, name string, def int) int {
	return cfg.ParamInt(name, def)
}

// Create builds a Manager from a ComponentConfig, keyed by
// cfg.ComponentType. Tags mirror factory.rs's create_pm exactly.
func Create(cfg domain.ComponentConfig) (Manager, error) {
	switch cfg.ComponentType {
	case "no_op":
		return NoOpPm{}, nil
	case "atr_trailing":
		return AtrTrailing{Period: paramInt(cfg, "period", 14), Multiplier: param(cfg, "multiplier", 3.0)}, nil
	case "percent_trailing":
		return PercentTrailing{Percent: param(cfg, "percent", 5.0)}, nil
	case "chandelier":
		return Chandelier{Period: paramInt(cfg, "period", 22), Multiplier: param(cfg, "multiplier", 3.0)}, nil
	case "since_entry_trailing":
		return SinceEntryTrailing{
			Period:       paramInt(cfg, "period", 14),
			Multiplier:   param(cfg, "multiplier", 3.0),
			TightenEvery: paramInt(cfg, "tighten_every", 0),
		}, nil
	case "fixed_stop_loss":
		return FixedStopLoss{Percent: param(cfg, "percent", 5.0)}, nil
	case "breakeven_then_trail":
		return BreakevenThenTrail{
			TriggerPercent: param(cfg, "trigger_percent", 3.0),
			AtrTrail:       AtrTrailing{Period: paramInt(cfg, "period", 14), Multiplier: param(cfg, "multiplier", 3.0)},
		}, nil
	case "time_decay":
		return TimeDecay{
			InitialPercent: param(cfg, "initial_percent", 10.0),
			MinPercent:     param(cfg, "min_percent", 2.0),
			DecayBars:      paramInt(cfg, "decay_bars", 20),
		}, nil
	case "frozen_reference":
		return FrozenReference{Period: paramInt(cfg, "period", 14), Multiplier: param(cfg, "multiplier", 3.0)}, nil
	case "max_holding_period":
		return MaxHoldingPeriod{MaxBars: paramInt(cfg, "max_bars", 60)}, nil
	default:
		return nil, &Error{Tag: cfg.ComponentType, Detail: "unknown position manager component"}
	}
}
