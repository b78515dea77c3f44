// Package config loads the CLI's runtime configuration from flags,
// environment variables, and an optional .env file, in that order of
// override precedence (flags winning). Grounded on the teacher's
// cmd/backtester/main.go flag set, generalized to the full strategy
// configuration surface and bound through viper/godotenv per the
// example pack's CLI conventions.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is every knob the CLI needs to build and run one backtest.
type Config struct {
	Symbols   []string
	StartDate time.Time
	EndDate   time.Time

	InitialCapital  float64
	PositionSizePct float64
	WarmupBars      int
	TradingMode     string // "long_short" | "long_only" | "short_only"
	Preset          string // "frictionless" | "optimistic" | "realistic" | "hostile"

	SignalType         string
	PositionManagerType string
	ExecutionModelType  string
	SignalFilterType    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string
	StorePath string

	LogLevel string
}

// DSN builds the Postgres connection string from the database fields.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Load reads .env (if present), binds environment variables prefixed
// TRENDLAB_, and layers flags (already parsed into fs) on top, flags
// taking precedence over environment, which takes precedence over
// defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	v := viper.New()
	v.SetEnvPrefix("trendlab")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("symbols", []string{"AAPL"})
	v.SetDefault("start", "2024-01-01")
	v.SetDefault("end", "2024-12-31")
	v.SetDefault("capital", 100000.0)
	v.SetDefault("position-size-pct", 0.1)
	v.SetDefault("warmup-bars", 0)
	v.SetDefault("trading-mode", "long_short")
	v.SetDefault("preset", "realistic")
	v.SetDefault("signal", "tsmom")
	v.SetDefault("pm", "atr_trailing")
	v.SetDefault("execution-model", "next_bar_open")
	v.SetDefault("filter", "no_filter")
	v.SetDefault("db-host", "localhost")
	v.SetDefault("db-port", "5432")
	v.SetDefault("db-user", "postgres")
	v.SetDefault("db-password", "")
	v.SetDefault("db-name", "trading_data")
	v.SetDefault("redis-addr", "")
	v.SetDefault("store-path", "trendlab_runs.db")
	v.SetDefault("log-level", "info")

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	start, err := time.Parse("2006-01-02", v.GetString("start"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", v.GetString("end"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid end date: %w", err)
	}
	end = end.Add(24 * time.Hour)

	return Config{
		Symbols:             v.GetStringSlice("symbols"),
		StartDate:           start,
		EndDate:             end,
		InitialCapital:      v.GetFloat64("capital"),
		PositionSizePct:     v.GetFloat64("position-size-pct"),
		WarmupBars:          v.GetInt("warmup-bars"),
		TradingMode:         v.GetString("trading-mode"),
		Preset:              v.GetString("preset"),
		SignalType:          v.GetString("signal"),
		PositionManagerType: v.GetString("pm"),
		ExecutionModelType:  v.GetString("execution-model"),
		SignalFilterType:    v.GetString("filter"),
		DBHost:              v.GetString("db-host"),
		DBPort:              v.GetString("db-port"),
		DBUser:              v.GetString("db-user"),
		DBPassword:          v.GetString("db-password"),
		DBName:              v.GetString("db-name"),
		RedisAddr:           v.GetString("redis-addr"),
		StorePath:           v.GetString("store-path"),
		LogLevel:            v.GetString("log-level"),
	}, nil
}
