package datastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/wave3-backtester/internal/candle"
)

// InMemRepository is a CandleRepository backed by process memory, used by
// tests and by callers that already hold a materialized series.
type InMemRepository struct {
	mu     sync.RWMutex
	series map[string]candle.Series
}

// NewInMemRepository creates an empty InMemRepository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{series: make(map[string]candle.Series)}
}

func seriesKey(symbol, interval string) string {
	return symbol + "/" + interval
}

// Put stores a series for its symbol and interval, replacing any previous one.
func (r *InMemRepository) Put(series candle.Series) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[seriesKey(series.Symbol, series.Interval)] = series
}

// FetchCandles returns the bars of the stored series restricted to [from, to).
func (r *InMemRepository) FetchCandles(ctx context.Context, symbol, interval string, from, to time.Time) (candle.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.series[seriesKey(symbol, interval)]
	if !ok {
		return candle.Series{}, fmt.Errorf("no series stored for %s %s", symbol, interval)
	}
	i0 := s.IndexAtOrAfter(from)
	i1 := s.IndexAtOrAfter(to)
	return s.Slice(i0, i1), nil
}
