package signal

import (
	"fmt"

	"github.com/ridopark/trendlab/domain"
)

// Error reports an unknown signal tag or a missing/invalid parameter,
// mirroring factory.rs's FactoryError::UnknownSignal variant.
type Error struct {
	Tag    string
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("signal factory: %s: %s", e.Tag, e.Detail) }

func param(cfg domain.ComponentConfig, name string, def float64) float64 {
	return cfg.Param(name, def)
}

func paramInt(cfg domain.ComponentConfig, name string, def int) int {
	return cfg.ParamInt(name, def)
}

// Create builds a Generator from a ComponentConfig, keyed by
// cfg.ComponentType. Tags mirror factory.rs's create_signal exactly.
func Create(cfg domain.ComponentConfig) (Generator, error) {
	switch cfg.ComponentType {
	case "breakout_52w":
		return BreakoutFiftyTwoWeek{Lookback: paramInt(cfg, "lookback", 252)}, nil
	case "donchian_breakout":
		return DonchianBreakout{Lookback: paramInt(cfg, "lookback", 50)}, nil
	case "bollinger_breakout":
		return BollingerBreakout{Period: paramInt(cfg, "period", 20), Multiplier: param(cfg, "multiplier", 2.0)}, nil
	case "keltner_breakout":
		return KeltnerBreakout{
			EmaPeriod:  paramInt(cfg, "ema_period", 20),
			AtrPeriod:  paramInt(cfg, "atr_period", 10),
			Multiplier: param(cfg, "multiplier", 2.0),
		}, nil
	case "supertrend":
		return SupertrendSignal{Period: paramInt(cfg, "period", 10), Multiplier: param(cfg, "multiplier", 3.0)}, nil
	case "parabolic_sar":
		return ParabolicSarSignal{
			AfStart: param(cfg, "af_start", 0.02),
			AfStep:  param(cfg, "af_step", 0.02),
			AfMax:   param(cfg, "af_max", 0.2),
		}, nil
	case "ma_crossover":
		maType := MaSma
		if param(cfg, "ma_type", 0) == 1 {
			maType = MaEma
		}
		return MaCrossover{
			FastPeriod: paramInt(cfg, "fast_period", 10),
			SlowPeriod: paramInt(cfg, "slow_period", 50),
			Type:       maType,
		}, nil
	case "tsmom":
		return Tsmom{Lookback: paramInt(cfg, "lookback", 90)}, nil
	case "roc_momentum":
		return RocMomentum{Period: paramInt(cfg, "period", 14), Threshold: param(cfg, "threshold", 5.0)}, nil
	case "aroon_crossover":
		return AroonCrossover{Period: paramInt(cfg, "period", 25)}, nil
	default:
		return nil, &Error{Tag: cfg.ComponentType, Detail: "unknown signal component"}
	}
}
