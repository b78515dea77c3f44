// Package data implements the boundary collaborator that turns rows in
// a TimescaleDB `daily_bars` hypertable into the core's AlignedData.
// Grounded on the teacher's internal/data/timescaledb_provider.go,
// generalized from a single-symbol strategy.BarData feed to a
// multi-symbol align.RawBar feed and wrapped with a circuit breaker
// around the query path.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sony/gobreaker/v2"

	"github.com/ridopark/trendlab/data/align"
	"github.com/ridopark/trendlab/pkg/logging"
	"github.com/rs/zerolog"
)

// RawBarProvider is the boundary interface the core's data loading
// depends on: one symbol's raw bars over a date range. Concrete
// providers (TimescaleDBProvider, or a test fake) implement it.
type RawBarProvider interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time) ([]align.RawBar, error)
}

// TimescaleDBProvider provides historical OHLCV data from TimescaleDB,
// guarded by a circuit breaker so a flapping database does not stall
// every symbol in a universe one at a time.
type TimescaleDBProvider struct {
	db      *sql.DB
	logger  zerolog.Logger
	breaker *gobreaker.CircuitBreaker[[]align.RawBar]
}

// NewTimescaleDBProvider opens a connection pool and verifies
// connectivity before returning.
func NewTimescaleDBProvider(connectionString string) (*TimescaleDBProvider, error) {
	logger := logging.GetLogger("data-provider")

	logger.Info().Msg("initializing TimescaleDB connection")

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error().Err(err).Msg("failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("successfully connected to TimescaleDB")

	breaker := gobreaker.NewCircuitBreaker[[]align.RawBar](gobreaker.Settings{
		Name:        "timescaledb-get-bars",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &TimescaleDBProvider{db: db, logger: logger, breaker: breaker}, nil
}

// GetBars retrieves one symbol's daily bars over [start, end], in
// chronological order, through the circuit breaker.
func (p *TimescaleDBProvider) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]align.RawBar, error) {
	return p.breaker.Execute(func() ([]align.RawBar, error) {
		return p.queryBars(ctx, symbol, start, end)
	})
}

func (p *TimescaleDBProvider) queryBars(ctx context.Context, symbol string, start, end time.Time) ([]align.RawBar, error) {
	p.logger.Debug().Str("symbol", symbol).Time("start", start).Time("end", end).Msg("fetching bars from database")

	query := `
		SELECT date, open, high, low, close, adj_close, volume
		FROM daily_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := p.db.QueryContext(ctx, query, symbol, start, end)
	if err != nil {
		p.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to query daily_bars")
		return nil, fmt.Errorf("failed to query daily_bars: %w", err)
	}
	defer rows.Close()

	var bars []align.RawBar
	for rows.Next() {
		var b align.RawBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			p.logger.Error().Err(err).Msg("failed to scan row")
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error().Err(err).Msg("error iterating rows")
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	p.logger.Info().Str("symbol", symbol).Int("bars_count", len(bars)).Msg("fetched bars from database")
	return bars, nil
}

// BuildAligned fetches every symbol's bars over [start, end] and
// assembles them into one AlignedData via align.Build, injecting void
// bars for symbols missing a row on a date another symbol traded.
func (p *TimescaleDBProvider) BuildAligned(ctx context.Context, symbols []string, start, end time.Time) (*align.AlignedData, error) {
	rawBySymbol := make(map[string][]align.RawBar, len(symbols))
	for _, symbol := range symbols {
		bars, err := p.GetBars(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", symbol, err)
		}
		rawBySymbol[symbol] = bars
	}
	return align.Build(rawBySymbol), nil
}

// Close closes the underlying database connection pool.
func (p *TimescaleDBProvider) Close() error {
	p.logger.Info().Msg("closing TimescaleDB connection")
	return p.db.Close()
}

var _ RawBarProvider = (*TimescaleDBProvider)(nil)
