// Package loop implements the deterministic four-phase bar event loop
// that drives one backtest from aligned data to a RunResult. Grounded
// on original_source/trendlab-core/src/engine/loop_runner.rs's
// run_backtest.
package loop

import (
	"fmt"
	"math"

	"github.com/ridopark/trendlab/components/executionmodel"
	"github.com/ridopark/trendlab/components/filter"
	"github.com/ridopark/trendlab/components/pm"
	"github.com/ridopark/trendlab/components/signal"
	"github.com/ridopark/trendlab/data/align"
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/engine/execution"
	"github.com/ridopark/trendlab/engine/orderbook"
	"github.com/ridopark/trendlab/engine/trades"
	"github.com/ridopark/trendlab/indicators"
)

// SchemaVersion is carried on every RunResult; readers must reject a
// higher version than they understand.
const SchemaVersion = 1

// VoidBarRateThreshold is the per-symbol void-bar rate above which the
// loop attaches a data-quality warning to the result.
const VoidBarRateThreshold = 0.10

// EngineConfig bundles the caller-supplied knobs for one run: capital,
// warmup floor, trading-mode gate, position sizing, per-symbol
// instrument metadata, and the execution engine's fill configuration.
type EngineConfig struct {
	InitialCapital  float64
	WarmupBars      int
	TradingMode     domain.TradingMode
	PositionSizePct float64
	Instruments     map[string]domain.Instrument
	Execution       execution.Config
}

func (c EngineConfig) instrumentFor(symbol string) domain.Instrument {
	if inst, ok := c.Instruments[symbol]; ok {
		return inst
	}
	return domain.USEquityInstrument(symbol)
}

// RunResult is everything the core produces for one backtest: the
// equity curve, the full fill and trade tape, bookkeeping counters,
// data-quality diagnostics, and stickiness metrics.
type RunResult struct {
	SchemaVersion       int
	EquityCurve         []float64
	Fills               []domain.Fill
	Trades              []domain.TradeRecord
	FinalEquity         float64
	BarCount            int
	WarmupBars          int
	VoidBarRates        map[string]float64
	DataQualityWarnings []string
	Stickiness          trades.Stickiness
	SignalCount         int
	SignalEvaluations   []domain.Evaluation
	AuditTrail          []domain.OrderAuditEntry
}

// managedStop tracks the order id of a symbol's PM-managed stop order
// so AdjustStop can cancel_replace it rather than stacking duplicates.
type managedStop struct {
	orderID domain.OrderID
}

// Run executes the full deterministic bar loop over aligned against
// one fixed strategy definition and returns the finished RunResult.
// Indicator values are precomputed fresh on every call; callers that
// want to memoize precompute across runs (e.g. a sweep reusing the
// same indicator set) should use RunWithIndicatorValues instead.
func Run(
	aligned *align.AlignedData,
	indicatorList []indicators.Indicator,
	config EngineConfig,
	gen signal.Generator,
	flt filter.Filter,
	execModel executionmodel.Model,
	manager pm.Manager,
) RunResult {
	indicatorValues := indicators.Precompute(aligned.Bars, indicatorList)
	return RunWithIndicatorValues(aligned, indicatorList, indicatorValues, config, gen, flt, execModel, manager)
}

// RunWithIndicatorValues is Run with the precompute step already done,
// letting a caller supply memoized or partially-cached indicator
// values (keyed the same way indicators.Precompute keys its output:
// per-symbol Values maps) instead of recomputing them every call.
func RunWithIndicatorValues(
	aligned *align.AlignedData,
	indicatorList []indicators.Indicator,
	indicatorValues map[string]indicators.Values,
	config EngineConfig,
	gen signal.Generator,
	flt filter.Filter,
	execModel executionmodel.Model,
	manager pm.Manager,
) RunResult {
	numBars := aligned.NumBars()
	book := orderbook.New()
	ids := domain.NewIDGenerator()
	port := domain.NewPortfolio(config.InitialCapital)
	eng := execution.New(config.Execution)
	extractor := trades.NewExtractor()

	warmup := config.WarmupBars
	if w := indicators.Warmup(indicatorList); w > warmup {
		warmup = w
	}

	componentTags := trades.ComponentTags{
		SignalType:          fmt.Sprintf("%T", gen),
		PositionManagerType: fmt.Sprintf("%T", manager),
		ExecutionModelType:  fmt.Sprintf("%T", execModel),
		SignalFilterType:    fmt.Sprintf("%T", flt),
	}

	lastValidClose := make(map[string]float64, len(aligned.Symbols))
	managed := make(map[string]*managedStop, len(aligned.Symbols))
	voidCounts := make(map[string]int, len(aligned.Symbols))

	var equityCurve []float64
	var allFills []domain.Fill
	var evaluations []domain.Evaluation
	signalCount := 0
	pmCallsTotal := 0
	pmCallsActive := 0

	applyFills := func(fills []domain.Fill) {
		for _, f := range fills {
			port.ApplyFill(f)
			extractor.OnFill(f, componentTags)
			allFills = append(allFills, f)
		}
	}

	for t := 0; t < numBars; t++ {
		bars := make(map[string]domain.Bar, len(aligned.Symbols))
		status := make(map[string]domain.MarketStatus, len(aligned.Symbols))
		for _, s := range aligned.Symbols {
			bar := aligned.Bars[s][t]
			bars[s] = bar
			if bar.IsVoid() {
				status[s] = domain.MarketClosed
				voidCounts[s]++
			} else {
				status[s] = domain.MarketOpen
			}
		}

		// Phase 1: start-of-bar MOO/Immediate fills.
		for _, s := range aligned.Symbols {
			applyFills(eng.ProcessStartOfBar(book, s, bars[s], t, config.instrumentFor(s)))
		}

		// Phase 2: intrabar stop/limit resolution, ordered by the
		// configured path policy against the current position side.
		for _, s := range aligned.Symbols {
			posSide := domain.Flat
			if pos := port.GetPosition(s); pos != nil {
				posSide = pos.Side
			}
			applyFills(eng.ProcessIntrabar(book, s, bars[s], t, posSide, config.instrumentFor(s)))
		}

		// Phase 3: end-of-bar MOC fills.
		for _, s := range aligned.Symbols {
			applyFills(eng.ProcessEndOfBar(book, s, bars[s], t, config.instrumentFor(s)))
		}

		// Phase 4: post-bar mark-to-market.
		for _, s := range aligned.Symbols {
			pos := port.GetPositionMut(s)
			if !pos.IsFlat() {
				pos.TickBar()
			}
			if status[s] == domain.MarketOpen {
				lastValidClose[s] = bars[s].Close
				if !pos.IsFlat() {
					pos.UpdateMark(bars[s].Close)
				}
				extractor.OnBarMark(s, bars[s])
			}
		}

		// Equity curve.
		prices := make(map[string]float64, len(aligned.Symbols))
		for _, s := range aligned.Symbols {
			if status[s] == domain.MarketOpen {
				prices[s] = bars[s].Close
			} else if lv, ok := lastValidClose[s]; ok {
				prices[s] = lv
			}
		}
		equityCurve = append(equityCurve, port.Equity(prices))

		if t < warmup {
			continue
		}

		// Step 9: signal evaluation for flat, Open symbols.
		for _, s := range aligned.Symbols {
			if status[s] != domain.MarketOpen {
				continue
			}
			if pos := port.GetPosition(s); pos != nil && !pos.IsFlat() {
				continue
			}

			event := gen.Evaluate(aligned.Bars[s], t, indicatorValues[s])
			if event == nil {
				continue
			}
			event.ID = ids.NextSignalEventID()
			signalCount++

			if config.TradingMode == domain.LongOnly && event.Direction == domain.DirectionShort {
				continue
			}
			if config.TradingMode == domain.ShortOnly && event.Direction == domain.DirectionLong {
				continue
			}

			eval := flt.Evaluate(*event, aligned.Bars[s], t, indicatorValues[s])
			evaluations = append(evaluations, eval)
			if !eval.Verdict.IsPassed() {
				continue
			}

			instrument := config.instrumentFor(s)
			orderType := execModel.EntryOrderType(*event, bars[s], instrument)

			qty := math.Floor(port.Cash * config.PositionSizePct / bars[s].Close)
			if qty < 1 {
				qty = 1
			}
			side := domain.Buy
			if event.Direction == domain.DirectionShort {
				side = domain.Sell
			}

			order := &domain.Order{
				ID:         ids.NextOrderID(),
				Symbol:     s,
				Side:       side,
				Type:       orderType,
				Quantity:   qty,
				Status:     domain.StatusPending(),
				CreatedBar: t,
			}
			book.Submit(order)
		}

		// Step 10: PM maintenance for Open, non-flat symbols.
		for _, s := range aligned.Symbols {
			if status[s] != domain.MarketOpen {
				continue
			}
			pos := port.GetPositionMut(s)
			if pos.IsFlat() {
				continue
			}

			pmCallsTotal++
			intent := manager.OnBar(pos, bars[s], t, status[s], indicatorValues[s])

			switch intent.Action {
			case domain.Hold:
				// nothing.

			case domain.AdjustStop:
				pmCallsActive++
				newStop := enforceRatchet(*intent.StopPrice, pos)
				pos.CurrentStop = &newStop

				exitSide := domain.Sell
				if pos.Side == domain.Short {
					exitSide = domain.Buy
				}
				newOrder := &domain.Order{
					ID:         ids.NextOrderID(),
					Symbol:     s,
					Side:       exitSide,
					Type:       domain.NewStopMarket(newStop),
					Quantity:   pos.Quantity,
					Status:     domain.StatusPending(),
					CreatedBar: t,
				}

				st, ok := managed[s]
				if ok {
					if existing, found := book.GetOrder(st.orderID); found && existing.IsActive() {
						_ = book.CancelReplace(st.orderID, newOrder, t)
					} else {
						book.Submit(newOrder)
					}
				} else {
					book.Submit(newOrder)
				}
				managed[s] = &managedStop{orderID: newOrder.ID}

			case domain.ForceExit:
				pmCallsActive++
				if st, ok := managed[s]; ok {
					if existing, found := book.GetOrder(st.orderID); found && existing.IsActive() {
						_ = book.Cancel(st.orderID, t, "force exit")
					}
					delete(managed, s)
				}
				exitSide := domain.Sell
				if pos.Side == domain.Short {
					exitSide = domain.Buy
				}
				exitOrder := &domain.Order{
					ID:         ids.NextOrderID(),
					Symbol:     s,
					Side:       exitSide,
					Type:       domain.NewMarketOnOpen(),
					Quantity:   pos.Quantity,
					Status:     domain.StatusPending(),
					CreatedBar: t,
				}
				book.Submit(exitOrder)

			case domain.AdjustTarget:
				// Reserved — no concrete target-order component exists yet.
			}
		}
	}

	closedTrades := extractor.Trades()
	finalEquity := 0.0
	if len(equityCurve) > 0 {
		finalEquity = equityCurve[len(equityCurve)-1]
	}

	voidRates := make(map[string]float64, len(aligned.Symbols))
	var warnings []string
	for _, s := range aligned.Symbols {
		rate := 0.0
		if numBars > 0 {
			rate = float64(voidCounts[s]) / float64(numBars)
		}
		voidRates[s] = rate
		if rate > VoidBarRateThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"symbol %s void-bar rate %.1f%% exceeds %.0f%% threshold",
				s, rate*100, VoidBarRateThreshold*100))
		}
	}

	return RunResult{
		SchemaVersion:       SchemaVersion,
		EquityCurve:         equityCurve,
		Fills:               allFills,
		Trades:              closedTrades,
		FinalEquity:         finalEquity,
		BarCount:            numBars,
		WarmupBars:          warmup,
		VoidBarRates:        voidRates,
		DataQualityWarnings: warnings,
		Stickiness:          trades.ComputeStickiness(closedTrades, pmCallsTotal, pmCallsActive),
		SignalCount:         signalCount,
		SignalEvaluations:   evaluations,
		AuditTrail:          book.AuditTrail(),
	}
}

// enforceRatchet clamps a PM's proposed stop against the position's
// existing current_stop per §4.5: long stops never loosen downward,
// short stops never loosen upward.
func enforceRatchet(proposed float64, pos *domain.Position) float64 {
	if pos.CurrentStop == nil {
		return proposed
	}
	cur := *pos.CurrentStop
	if pos.Side == domain.Long {
		return math.Max(proposed, cur)
	}
	return math.Min(proposed, cur)
}
