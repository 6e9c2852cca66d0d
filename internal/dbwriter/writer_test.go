package dbwriter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/wave3-backtester/internal/config"
)

type mockPool struct {
	mu        sync.Mutex
	copied    [][]interface{}
	execSQL   []string
	execArgs  [][]interface{}
	closeCnt  int
	copyCalls int
	copyDelay time.Duration
}

func (m *mockPool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if m.copyDelay > 0 {
		time.Sleep(m.copyDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyCalls++
	var n int64
	for rowSrc.Next() {
		row, err := rowSrc.Values()
		if err != nil {
			return n, err
		}
		m.copied = append(m.copied, row)
		n++
	}
	return n, rowSrc.Err()
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execSQL = append(m.execSQL, sql)
	m.execArgs = append(m.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (m *mockPool) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCnt++
}

func (m *mockPool) copiedRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.copied...)
}

func (m *mockPool) execCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.execSQL)
}

func testTradeRow() TradeRow {
	return TradeRow{
		RunID:      "run-1",
		Symbol:     "BTCUSDT",
		EntryTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExitTime:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		EntryPrice: 100,
		ExitPrice:  110,
		Direction:  "LONG",
		ReturnPct:  0.10,
		ExitReason: "TARGET",
	}
}

func TestNewTimescaleWriterNilPool(t *testing.T) {
	w, err := NewTimescaleWriter(nil, config.DBWriterConfig{}, zap.NewNop())
	require.NoError(t, err)

	_, ok := w.(*DummyWriter)
	assert.True(t, ok, "nil pool must yield a DummyWriter")

	// The dummy silently drops everything.
	w.SaveTrade(testTradeRow())
	w.SaveFoldStats(FoldStatsRow{})
	w.Close()
}

func TestSaveTradeFlushesOnBatchSize(t *testing.T) {
	pool := &mockPool{}
	cfg := config.DBWriterConfig{BatchSize: 2, WriteIntervalSeconds: 3600}
	w, err := NewTimescaleWriter(pool, cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	w.SaveTrade(testTradeRow())
	assert.Empty(t, pool.copiedRows(), "buffer below batch size must not flush")

	w.SaveTrade(testTradeRow())
	rows := pool.copiedRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[0][0])
	assert.Equal(t, "BTCUSDT", rows[0][1])
	assert.Equal(t, 0.10, rows[0][7])
}

func TestSaveFoldStatsFlushesOnBatchSize(t *testing.T) {
	pool := &mockPool{}
	cfg := config.DBWriterConfig{BatchSize: 1, WriteIntervalSeconds: 3600}
	w, err := NewTimescaleWriter(pool, cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	w.SaveFoldStats(FoldStatsRow{RunID: "run-1", FoldNumber: 3, Symbol: "BTCUSDT"})
	require.Equal(t, 1, pool.execCount())
	assert.Equal(t, "run-1", pool.execArgs[0][0])
	assert.Equal(t, 3, pool.execArgs[0][1])
}

func TestCloseFlushesRemainder(t *testing.T) {
	pool := &mockPool{}
	cfg := config.DBWriterConfig{BatchSize: 100, WriteIntervalSeconds: 3600}
	w, err := NewTimescaleWriter(pool, cfg, zap.NewNop())
	require.NoError(t, err)

	w.SaveTrade(testTradeRow())
	w.Close()

	// Close blocks until the final flush has run.
	require.Len(t, pool.copiedRows(), 1)

	// Closing twice is safe.
	w.Close()
}

func TestCloseWaitsForSlowFlush(t *testing.T) {
	pool := &mockPool{copyDelay: 50 * time.Millisecond}
	cfg := config.DBWriterConfig{BatchSize: 100, WriteIntervalSeconds: 3600}
	w, err := NewTimescaleWriter(pool, cfg, zap.NewNop())
	require.NoError(t, err)

	w.SaveTrade(testTradeRow())
	w.Close()

	require.Len(t, pool.copiedRows(), 1, "rows must be written before Close returns")
}

func TestWriterDefaultsInvalidConfig(t *testing.T) {
	pool := &mockPool{}
	w, err := NewTimescaleWriter(pool, config.DBWriterConfig{BatchSize: -1, WriteIntervalSeconds: 0}, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	// Defaults kick in, so a single row stays buffered instead of flushing.
	w.SaveTrade(testTradeRow())
	assert.Empty(t, pool.copiedRows())
}
