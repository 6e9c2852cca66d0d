// Package candle defines the validated OHLCV bar series consumed by the
// scoring and simulation pipeline.
package candle

import (
	"fmt"
	"sort"
	"time"
)

// Bar is one OHLCV sample for a fixed time interval.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate checks the OHLC invariants of a single bar.
func (b Bar) Validate() error {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("non-positive price (o=%v h=%v l=%v c=%v)", b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume %v", b.Volume)
	}
	if b.High < b.Low {
		return fmt.Errorf("high %v below low %v", b.High, b.Low)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("low %v above open/close (o=%v c=%v)", b.Low, b.Open, b.Close)
	}
	if b.High < b.Open || b.High < b.Close {
		return fmt.Errorf("high %v below open/close (o=%v c=%v)", b.High, b.Open, b.Close)
	}
	return nil
}

// ValidationError reports a rejected bar together with its position in the
// input, so callers can trace it back to the ingestion source.
type ValidationError struct {
	Index int
	Time  time.Time
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid bar at index %d (%s): %v", e.Index, e.Time.Format(time.RFC3339), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Series is an ordered-by-timestamp sequence of bars for one symbol and one
// sampling interval. It is immutable once constructed; the pipeline never
// mutates input bars.
type Series struct {
	Symbol   string
	Interval string
	Bars     []Bar
}

// NewSeries validates every bar and the strict timestamp ordering before
// wrapping the input. The first offending bar is reported with its index and
// timestamp; bars are never silently dropped or repaired.
func NewSeries(symbol, interval string, bars []Bar) (Series, error) {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return Series{}, &ValidationError{Index: i, Time: b.Time, Err: err}
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return Series{}, &ValidationError{
				Index: i,
				Time:  b.Time,
				Err:   fmt.Errorf("timestamp not after previous bar (%s)", bars[i-1].Time.Format(time.RFC3339)),
			}
		}
	}
	return Series{Symbol: symbol, Interval: interval, Bars: bars}, nil
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Slice returns the sub-series [i0, i1). Indices are clamped to the series
// bounds. The underlying bars are shared, not copied.
func (s Series) Slice(i0, i1 int) Series {
	if i0 < 0 {
		i0 = 0
	}
	if i1 > len(s.Bars) {
		i1 = len(s.Bars)
	}
	if i0 >= i1 {
		return Series{Symbol: s.Symbol, Interval: s.Interval}
	}
	return Series{Symbol: s.Symbol, Interval: s.Interval, Bars: s.Bars[i0:i1]}
}

// IndexAtOrAfter returns the first index whose timestamp is not before t,
// or Len() if every bar is earlier.
func (s Series) IndexAtOrAfter(t time.Time) int {
	return sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(t)
	})
}

// Closes returns the close prices as a slice aligned with the bars.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}
