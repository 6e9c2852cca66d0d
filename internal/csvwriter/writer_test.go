package csvwriter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/report"
	"github.com/your-org/wave3-backtester/internal/signal"
	"github.com/your-org/wave3-backtester/internal/simulator"
	"github.com/your-org/wave3-backtester/internal/walkforward"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteTrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	w, err := NewWriter(path, zap.NewNop())
	require.NoError(t, err)

	trades := []simulator.Trade{
		{
			Symbol:     "BTCUSDT",
			EntryTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ExitTime:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			EntryPrice: 100,
			ExitPrice:  118,
			Direction:  signal.DirectionLong,
			ReturnPct:  0.18,
			ExitReason: simulator.ExitTarget,
		},
	}
	require.NoError(t, w.WriteTrades(trades))
	require.NoError(t, w.Close())

	records := readAll(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, tradeHeader, records[0])
	assert.Equal(t, []string{
		"BTCUSDT", "2024-01-01T00:00:00Z", "2024-01-05T00:00:00Z",
		"100", "118", "LONG", "0.18", "TARGET",
	}, records[1])
}

func TestWriteFoldResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folds.csv")
	w, err := NewWriter(path, zap.NewNop())
	require.NoError(t, err)

	results := []walkforward.Result{
		{
			Fold: walkforward.Fold{
				Number:    1,
				TestStart: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
				TestEnd:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			},
			Stats: report.Stats{
				TotalTrades: 4,
				WinRate:     0.5,
				TotalReturn: decimal.NewFromFloat(0.07),
			},
		},
	}
	require.NoError(t, w.WriteFoldResults(results))
	require.NoError(t, w.Close())

	records := readAll(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, foldHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "2024-04-01T00:00:00Z", records[1][1])
	assert.Equal(t, "4", records[1][3])
	assert.Equal(t, "0.5", records[1][4])
	assert.Equal(t, "0.07", records[1][8])
}

func TestNewWriterBadPath(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "out.csv"), zap.NewNop())
	assert.Error(t, err)
}
