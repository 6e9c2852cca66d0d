// Package datastore provides access to stored candle history for backtests.
package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/your-org/wave3-backtester/internal/candle"
)

// CandleRepository fetches bar series for a (symbol, interval) pair. The
// scoring pipeline itself never touches storage; it consumes the series this
// layer materializes.
type CandleRepository interface {
	FetchCandles(ctx context.Context, symbol, interval string, from, to time.Time) (candle.Series, error)
}

// TimescaleRepository reads candles from a TimescaleDB hypertable.
type TimescaleRepository struct {
	db *pgxpool.Pool
}

// NewTimescaleRepository creates a new TimescaleRepository.
func NewTimescaleRepository(db *pgxpool.Pool) *TimescaleRepository {
	return &TimescaleRepository{db: db}
}

// FetchCandles loads the bars in [from, to) ordered by time and validates
// them into a Series. Prices are stored as numerics and scanned via decimal
// to avoid driver-dependent float rounding.
func (r *TimescaleRepository) FetchCandles(ctx context.Context, symbol, interval string, from, to time.Time) (candle.Series, error) {
	const query = `
        SELECT time, open, high, low, close, volume
        FROM candles
        WHERE symbol = $1 AND interval = $2 AND time >= $3 AND time < $4
        ORDER BY time ASC;
    `
	rows, err := r.db.Query(ctx, query, symbol, interval, from, to)
	if err != nil {
		return candle.Series{}, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var bars []candle.Bar
	for rows.Next() {
		var (
			t                            time.Time
			open, high, low, closep, vol decimal.Decimal
		)
		if err := rows.Scan(&t, &open, &high, &low, &closep, &vol); err != nil {
			return candle.Series{}, fmt.Errorf("failed to scan candle row: %w", err)
		}
		bars = append(bars, candle.Bar{
			Time:   t,
			Open:   open.InexactFloat64(),
			High:   high.InexactFloat64(),
			Low:    low.InexactFloat64(),
			Close:  closep.InexactFloat64(),
			Volume: vol.InexactFloat64(),
		})
	}
	if err := rows.Err(); err != nil {
		return candle.Series{}, fmt.Errorf("failed to read candle rows: %w", err)
	}

	series, err := candle.NewSeries(symbol, interval, bars)
	if err != nil {
		return candle.Series{}, fmt.Errorf("stored candles failed validation: %w", err)
	}
	return series, nil
}
