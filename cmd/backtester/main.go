package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ridopark/trendlab/components/executionmodel"
	"github.com/ridopark/trendlab/components/filter"
	"github.com/ridopark/trendlab/components/pm"
	"github.com/ridopark/trendlab/components/signal"
	"github.com/ridopark/trendlab/data/align"
	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/engine/execution"
	"github.com/ridopark/trendlab/engine/loop"
	"github.com/ridopark/trendlab/fingerprint"
	"github.com/ridopark/trendlab/indicators"
	"github.com/ridopark/trendlab/internal/cache"
	"github.com/ridopark/trendlab/internal/config"
	"github.com/ridopark/trendlab/internal/data"
	"github.com/ridopark/trendlab/internal/store"
	"github.com/ridopark/trendlab/pkg/logging"
)

func main() {
	root := &cobra.Command{
		Use:   "backtester",
		Short: "Deterministic trend-following backtesting engine",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one backtest and print its summary",
		RunE:  runBacktest,
	}
	bindFlags(runCmd)
	root.AddCommand(runCmd)

	root.AddCommand(&cobra.Command{
		Use:   "list-presets",
		Short: "List the built-in execution cost presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"frictionless", "optimistic", "realistic", "hostile"} {
				fmt.Println(name)
			}
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func bindFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSlice("symbols", []string{"AAPL"}, "Symbols to backtest")
	fs.String("start", "2024-01-01", "Start date (YYYY-MM-DD)")
	fs.String("end", "2024-12-31", "End date (YYYY-MM-DD)")
	fs.Float64("capital", 100000.0, "Initial capital")
	fs.Float64("position-size-pct", 0.1, "Fraction of cash committed per new position")
	fs.Int("warmup-bars", 0, "Caller-supplied warmup floor (in addition to indicator warmup)")
	fs.String("trading-mode", "long_short", "long_short | long_only | short_only")
	fs.String("preset", "realistic", "frictionless | optimistic | realistic | hostile")
	fs.String("signal", "tsmom", "Signal generator tag")
	fs.String("pm", "atr_trailing", "Position manager tag")
	fs.String("execution-model", "next_bar_open", "Execution model tag")
	fs.String("filter", "no_filter", "Signal filter tag")
	fs.String("db-host", "localhost", "Database host")
	fs.String("db-port", "5432", "Database port")
	fs.String("db-user", "postgres", "Database user")
	fs.String("db-password", "", "Database password")
	fs.String("db-name", "trading_data", "Database name")
	fs.String("redis-addr", "", "Optional Redis address for indicator caching")
	fs.String("store-path", "trendlab_runs.db", "SQLite path for persisted run results")
	fs.String("log-level", "info", "trace|debug|info|warn|error")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Initialize(logging.Config{Level: logging.LogLevel(cfg.LogLevel), Pretty: true})
	logger := logging.GetLogger("backtester-cli")

	tradingMode, err := parseTradingMode(cfg.TradingMode)
	if err != nil {
		return err
	}

	gen, err := signal.Create(domain.ComponentConfig{ComponentType: cfg.SignalType})
	if err != nil {
		return fmt.Errorf("signal factory: %w", err)
	}
	flt, err := filter.Create(domain.ComponentConfig{ComponentType: cfg.SignalFilterType})
	if err != nil {
		return fmt.Errorf("filter factory: %w", err)
	}
	execModel, err := executionmodel.Create(domain.ComponentConfig{ComponentType: cfg.ExecutionModelType})
	if err != nil {
		return fmt.Errorf("execution model factory: %w", err)
	}
	manager, err := pm.Create(domain.ComponentConfig{ComponentType: cfg.PositionManagerType})
	if err != nil {
		return fmt.Errorf("position manager factory: %w", err)
	}

	indicatorList := mergeIndicators(gen.RequiredIndicators(), flt.RequiredIndicators(), manager.RequiredIndicators())

	strategyCfg := domain.StrategyConfig{
		Signal:          domain.ComponentConfig{ComponentType: cfg.SignalType},
		PositionManager: domain.ComponentConfig{ComponentType: cfg.PositionManagerType},
		ExecutionModel:  domain.ComponentConfig{ComponentType: cfg.ExecutionModelType},
		SignalFilter:    domain.ComponentConfig{ComponentType: cfg.SignalFilterType},
		TradingMode:     tradingMode,
		InitialCapital:  cfg.InitialCapital,
		StartDate:       cfg.StartDate.Format("2006-01-02"),
		EndDate:         cfg.EndDate.Format("2006-01-02"),
	}
	configHash := fingerprint.ConfigHash(strategyCfg)
	logger.Info().Str("config_hash", configHash).Msg("resolved strategy config")

	logger.Info().Strs("symbols", cfg.Symbols).Msg("connecting to database")
	provider, err := data.NewTimescaleDBProvider(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to data provider: %w", err)
	}
	defer provider.Close()

	ctx := context.Background()
	aligned, err := provider.BuildAligned(ctx, cfg.Symbols, cfg.StartDate, cfg.EndDate)
	if err != nil {
		return fmt.Errorf("build aligned data: %w", err)
	}

	engineCfg := loop.EngineConfig{
		InitialCapital:  cfg.InitialCapital,
		WarmupBars:      cfg.WarmupBars,
		TradingMode:     tradingMode,
		PositionSizePct: cfg.PositionSizePct,
		Execution:       presetByName(cfg.Preset),
	}

	if err := loop.ValidateConfig(aligned, indicatorList, engineCfg); err != nil {
		return fmt.Errorf("invalid backtest configuration: %w", err)
	}

	indicatorValues := resolveIndicatorValues(ctx, cfg.RedisAddr, configHash, aligned, indicatorList, logger)

	logger.Info().Int("bar_count", aligned.NumBars()).Msg("running backtest")
	result := loop.RunWithIndicatorValues(aligned, indicatorList, indicatorValues, engineCfg, gen, flt, execModel, manager)

	resultStore, err := store.Open(cfg.StorePath)
	if err != nil {
		logger.Warn().Err(err).Msg("could not open result store; skipping persistence")
	} else {
		defer resultStore.Close()
		runID, err := resultStore.Save(ctx, strategyCfg, result)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to persist run result")
		} else {
			logging.GetRunLogger("backtester-cli", runID).Info().Msg("persisted run result")
		}
	}

	printSummary(result)
	return nil
}

// resolveIndicatorValues fills indicator values per symbol from the
// Redis-backed cache when one is configured, falling back to
// indicators.Precompute for whatever symbols miss (or for everything,
// when cfg.RedisAddr is empty). Newly computed values are written back
// so the next run with the same configHash skips recomputation.
func resolveIndicatorValues(ctx context.Context, redisAddr, configHash string, aligned *align.AlignedData, indicatorList []indicators.Indicator, logger zerolog.Logger) map[string]indicators.Values {
	if redisAddr == "" {
		return indicators.Precompute(aligned.Bars, indicatorList)
	}

	ic := cache.NewIndicatorCache(redisAddr, 24*time.Hour)
	defer ic.Close()

	values := make(map[string]indicators.Values, len(aligned.Symbols))
	missing := make(map[string][]domain.Bar)
	for _, symbol := range aligned.Symbols {
		if cached, ok := ic.Get(ctx, configHash, symbol); ok {
			values[symbol] = cached
			continue
		}
		missing[symbol] = aligned.Bars[symbol]
	}

	if len(missing) > 0 {
		computed := indicators.Precompute(missing, indicatorList)
		for symbol, v := range computed {
			values[symbol] = v
			if err := ic.Set(ctx, configHash, symbol, v); err != nil {
				logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to memoize indicator values")
			}
		}
	}

	logger.Info().Int("cache_hits", len(aligned.Symbols)-len(missing)).Int("cache_misses", len(missing)).Msg("resolved indicator values")
	return values
}

func printSummary(r loop.RunResult) {
	fmt.Println("Backtest Summary")
	fmt.Println("================")
	fmt.Printf("Bars:           %d (warmup %d)\n", r.BarCount, r.WarmupBars)
	fmt.Printf("Final equity:   %.2f\n", r.FinalEquity)
	fmt.Printf("Fills:          %d\n", len(r.Fills))
	fmt.Printf("Trades:         %d\n", len(r.Trades))
	fmt.Printf("Signals:        %d (%d evaluations recorded)\n", r.SignalCount, len(r.SignalEvaluations))
	fmt.Printf("Median holding: %.1f bars\n", r.Stickiness.MedianHoldingBars)
	if len(r.DataQualityWarnings) > 0 {
		fmt.Println("Data quality warnings:")
		for _, w := range r.DataQualityWarnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func parseTradingMode(s string) (domain.TradingMode, error) {
	switch s {
	case "long_short":
		return domain.LongShort, nil
	case "long_only":
		return domain.LongOnly, nil
	case "short_only":
		return domain.ShortOnly, nil
	default:
		return domain.LongShort, fmt.Errorf("unknown trading mode %q", s)
	}
}

func presetByName(name string) execution.Config {
	switch name {
	case "frictionless":
		return execution.Frictionless()
	case "optimistic":
		return execution.Optimistic()
	case "hostile":
		return execution.Hostile()
	default:
		return execution.Realistic()
	}
}

func mergeIndicators(lists ...[]indicators.Indicator) []indicators.Indicator {
	seen := make(map[string]indicators.Indicator)
	for _, list := range lists {
		for _, ind := range list {
			seen[ind.Name()] = ind
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]indicators.Indicator, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}
