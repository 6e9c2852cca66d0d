// Package dbwriter persists backtest results to TimescaleDB in batches.
package dbwriter

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/config"
)

// TradeRow is one simulated trade as stored in the backtest_trades table.
type TradeRow struct {
	RunID      string    `db:"run_id"`
	Symbol     string    `db:"symbol"`
	EntryTime  time.Time `db:"entry_time"`
	ExitTime   time.Time `db:"exit_time"`
	EntryPrice float64   `db:"entry_price"`
	ExitPrice  float64   `db:"exit_price"`
	Direction  string    `db:"direction"`
	ReturnPct  float64   `db:"return_pct"`
	ExitReason string    `db:"exit_reason"`
}

// FoldStatsRow is one walk-forward fold summary as stored in the fold_stats
// table.
type FoldStatsRow struct {
	RunID        string    `db:"run_id"`
	FoldNumber   int       `db:"fold_number"`
	Symbol       string    `db:"symbol"`
	TestStart    time.Time `db:"test_start"`
	TestEnd      time.Time `db:"test_end"`
	TotalTrades  int       `db:"total_trades"`
	WinRate      float64   `db:"win_rate"`
	ProfitFactor float64   `db:"profit_factor"`
	SharpeRatio  float64   `db:"sharpe_ratio"`
	MaxDrawdown  float64   `db:"max_drawdown"`
	TotalReturn  float64   `db:"total_return"`
}

// Pool is an interface that abstracts the pgxpool.Pool for testability.
type Pool interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Close()
}

// TimescaleWriter buffers result rows and flushes them to TimescaleDB on a
// ticker or when a buffer reaches the configured batch size.
type TimescaleWriter struct {
	pool         Pool
	logger       *zap.Logger
	config       config.DBWriterConfig
	tradeBuffer  []TradeRow
	foldBuffer   []FoldStatsRow
	bufferMutex  sync.Mutex
	flushTicker  *time.Ticker
	shutdownChan chan struct{}
	doneChan     chan struct{}
	closeOnce    sync.Once
}

// NewTimescaleWriter creates a writer on top of an externally provided pool.
// A nil pool yields a writer that drops everything, so simulation-only runs
// need no database.
func NewTimescaleWriter(pool Pool, writerConfig config.DBWriterConfig, logger *zap.Logger) (ResultWriter, error) {
	if pool == nil {
		logger.Info("pgx pool is nil, creating dummy result writer")
		return &DummyWriter{}, nil
	}

	if writerConfig.WriteIntervalSeconds <= 0 {
		logger.Warn("write_interval_seconds is zero or negative, defaulting to 1s",
			zap.Int("originalValue", writerConfig.WriteIntervalSeconds))
		writerConfig.WriteIntervalSeconds = 1
	}
	if writerConfig.BatchSize <= 0 {
		logger.Warn("batch_size is zero or negative, defaulting to 100",
			zap.Int("originalValue", writerConfig.BatchSize))
		writerConfig.BatchSize = 100
	}

	w := &TimescaleWriter{
		pool:         pool,
		logger:       logger,
		config:       writerConfig,
		tradeBuffer:  make([]TradeRow, 0, writerConfig.BatchSize),
		foldBuffer:   make([]FoldStatsRow, 0, writerConfig.BatchSize),
		flushTicker:  time.NewTicker(time.Duration(writerConfig.WriteIntervalSeconds) * time.Second),
		shutdownChan: make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	go w.run()
	logger.Info("Started TimescaleDB result writer",
		zap.Int("batchSize", writerConfig.BatchSize),
		zap.Int("writeIntervalSeconds", writerConfig.WriteIntervalSeconds))
	return w, nil
}

func (w *TimescaleWriter) run() {
	defer close(w.doneChan)
	for {
		select {
		case <-w.flushTicker.C:
			w.flush()
		case <-w.shutdownChan:
			w.flush()
			return
		}
	}
}

// SaveTrade buffers one trade row.
func (w *TimescaleWriter) SaveTrade(trade TradeRow) {
	w.bufferMutex.Lock()
	w.tradeBuffer = append(w.tradeBuffer, trade)
	full := len(w.tradeBuffer) >= w.config.BatchSize
	w.bufferMutex.Unlock()
	if full {
		w.flush()
	}
}

// SaveFoldStats buffers one fold summary row.
func (w *TimescaleWriter) SaveFoldStats(stats FoldStatsRow) {
	w.bufferMutex.Lock()
	w.foldBuffer = append(w.foldBuffer, stats)
	full := len(w.foldBuffer) >= w.config.BatchSize
	w.bufferMutex.Unlock()
	if full {
		w.flush()
	}
}

// flush writes the buffered rows. Failures are logged, not returned: the
// writer is a sink and must not stall the simulation pipeline.
func (w *TimescaleWriter) flush() {
	w.bufferMutex.Lock()
	trades := w.tradeBuffer
	folds := w.foldBuffer
	w.tradeBuffer = make([]TradeRow, 0, w.config.BatchSize)
	w.foldBuffer = make([]FoldStatsRow, 0, w.config.BatchSize)
	w.bufferMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(trades) > 0 {
		if err := w.copyTrades(ctx, trades); err != nil {
			w.logger.Error("Failed to flush trade rows", zap.Error(err), zap.Int("count", len(trades)))
		} else {
			w.logger.Debug("Flushed trade rows", zap.Int("count", len(trades)))
		}
	}
	if len(folds) > 0 {
		if err := w.insertFoldStats(ctx, folds); err != nil {
			w.logger.Error("Failed to flush fold stats", zap.Error(err), zap.Int("count", len(folds)))
		} else {
			w.logger.Debug("Flushed fold stats", zap.Int("count", len(folds)))
		}
	}
}

func (w *TimescaleWriter) copyTrades(ctx context.Context, trades []TradeRow) error {
	rows := make([][]interface{}, len(trades))
	for i, t := range trades {
		rows[i] = []interface{}{
			t.RunID, t.Symbol, t.EntryTime, t.ExitTime,
			t.EntryPrice, t.ExitPrice, t.Direction, t.ReturnPct, t.ExitReason,
		}
	}
	_, err := w.pool.CopyFrom(ctx,
		pgx.Identifier{"backtest_trades"},
		[]string{"run_id", "symbol", "entry_time", "exit_time", "entry_price", "exit_price", "direction", "return_pct", "exit_reason"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *TimescaleWriter) insertFoldStats(ctx context.Context, folds []FoldStatsRow) error {
	const query = `
        INSERT INTO fold_stats (
            run_id, fold_number, symbol, test_start, test_end,
            total_trades, win_rate, profit_factor, sharpe_ratio, max_drawdown, total_return
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
    `
	for _, f := range folds {
		if _, err := w.pool.Exec(ctx, query,
			f.RunID, f.FoldNumber, f.Symbol, f.TestStart, f.TestEnd,
			f.TotalTrades, f.WinRate, f.ProfitFactor, f.SharpeRatio, f.MaxDrawdown, f.TotalReturn,
		); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the background writer and blocks until the final flush has
// completed, so buffered rows are on the wire before the caller exits.
func (w *TimescaleWriter) Close() {
	w.closeOnce.Do(func() {
		close(w.shutdownChan)
		w.flushTicker.Stop()
	})
	<-w.doneChan
}
