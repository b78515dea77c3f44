package execution

// Config is the stateless configuration bundle the engine reads on
// every phase call: cost model, path policy, gap policy, and an
// optional liquidity policy. Two Engines built from equal Configs
// behave identically — no engine-owned state crosses bars.
type Config struct {
	CostModel       CostModel
	PathPolicy      PathPolicy
	GapPolicy       GapPolicyKind
	LiquidityPolicy LiquidityPolicy
}

func pathPolicyFor(kind PathPolicyKind) PathPolicy {
	switch kind {
	case WorstCase:
		return WorstCasePath{}
	case BestCase:
		return BestCasePath{}
	default:
		return DeterministicPath{}
	}
}

// Frictionless: zero slippage, zero commission, deterministic path —
// a pure fill-at-reference-price model useful for isolating signal/PM
// behavior from cost effects.
func Frictionless() Config {
	return Config{
		CostModel:       PercentCostModel{},
		PathPolicy:      pathPolicyFor(Deterministic),
		GapPolicy:       FillAtOpen,
		LiquidityPolicy: NoLiquidityConstraint{},
	}
}

// Optimistic: small slippage, BestCase path ordering.
func Optimistic() Config {
	return Config{
		CostModel:       PercentCostModel{SlippageBps: 2, CommissionRate: 0.0005},
		PathPolicy:      pathPolicyFor(BestCase),
		GapPolicy:       FillAtOpen,
		LiquidityPolicy: NoLiquidityConstraint{},
	}
}

// Realistic: regulatory cost model, WorstCase path, FillAtOpen gap
// resolution. The default preset for strategy evaluation.
func Realistic() Config {
	return Config{
		CostModel: RegulatoryCostModel{
			PercentCostModel: PercentCostModel{SlippageBps: 5, CommissionRate: 0.0005},
		},
		PathPolicy:      pathPolicyFor(WorstCase),
		GapPolicy:       FillAtOpen,
		LiquidityPolicy: ParticipationRateLiquidity{Rate: 0.1},
	}
}

// Hostile: larger regulatory cost model, WorstCase path, FillAtWorst
// gap resolution — a stress scenario.
func Hostile() Config {
	return Config{
		CostModel: RegulatoryCostModel{
			PercentCostModel: PercentCostModel{SlippageBps: 15, CommissionRate: 0.001},
		},
		PathPolicy:      pathPolicyFor(WorstCase),
		GapPolicy:       FillAtWorst,
		LiquidityPolicy: ParticipationRateLiquidity{Rate: 0.05},
	}
}

// DecodePreset maps the teacher/original_source preset ordinals
// (0=Frictionless, 1=Realistic, 2=Hostile, 3=Optimistic) to a Config,
// matching components/factory.rs's decode_preset.
func DecodePreset(id int) Config {
	switch id {
	case 0:
		return Frictionless()
	case 2:
		return Hostile()
	case 3:
		return Optimistic()
	default:
		return Realistic()
	}
}
