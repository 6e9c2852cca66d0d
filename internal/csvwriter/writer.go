// Package csvwriter exports backtest output as CSV for spreadsheet analysis.
package csvwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/simulator"
	"github.com/your-org/wave3-backtester/internal/walkforward"
)

var tradeHeader = []string{
	"symbol", "entry_time", "exit_time", "entry_price", "exit_price",
	"direction", "return_pct", "exit_reason",
}

var foldHeader = []string{
	"fold_number", "test_start", "test_end", "total_trades",
	"win_rate", "profit_factor", "sharpe_ratio", "max_drawdown", "total_return",
}

// Writer is a CSV writer for trades and fold statistics.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	logger *zap.Logger
	mu     sync.Mutex
}

// NewWriter creates a new CSV writer at filePath, truncating any existing
// file.
func NewWriter(filePath string, logger *zap.Logger) (*Writer, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	return &Writer{
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger,
	}, nil
}

// WriteTrades writes a header row followed by one row per trade.
func (w *Writer) WriteTrades(trades []simulator.Trade) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Write(tradeHeader); err != nil {
		return fmt.Errorf("failed to write trade header: %w", err)
	}
	for _, t := range trades {
		record := []string{
			t.Symbol,
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			t.Direction.String(),
			formatFloat(t.ReturnPct),
			t.ExitReason.String(),
		}
		if err := w.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trade record: %w", err)
		}
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return err
	}
	w.logger.Info("Exported trades to CSV", zap.Int("count", len(trades)), zap.String("path", w.file.Name()))
	return nil
}

// WriteFoldResults writes a header row followed by one row per fold.
func (w *Writer) WriteFoldResults(results []walkforward.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Write(foldHeader); err != nil {
		return fmt.Errorf("failed to write fold header: %w", err)
	}
	for _, res := range results {
		record := []string{
			strconv.Itoa(res.Fold.Number),
			res.Fold.TestStart.Format(time.RFC3339),
			res.Fold.TestEnd.Format(time.RFC3339),
			strconv.Itoa(res.Stats.TotalTrades),
			formatFloat(res.Stats.WinRate),
			formatFloat(res.Stats.ProfitFactor),
			formatFloat(res.Stats.SharpeRatio),
			formatFloat(res.Stats.MaxDrawdown),
			res.Stats.TotalReturn.String(),
		}
		if err := w.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write fold record: %w", err)
		}
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return err
	}
	w.logger.Info("Exported fold results to CSV", zap.Int("count", len(results)), zap.String("path", w.file.Name()))
	return nil
}

// Close flushes any buffered data and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
	return w.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
