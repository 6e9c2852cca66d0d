package datastore

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/pkg/logger"
)

// ReadSeriesCSV loads a candle series from a CSV file with a header row and
// columns: time, open, high, low, close, volume. Timestamps are RFC 3339.
// The rows are validated into a Series; a malformed bar fails the load with
// its line number rather than being silently dropped.
func ReadSeriesCSV(path, symbol, interval string) (candle.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return candle.Series{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReaderSize(file, 1<<20))
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return candle.Series{}, fmt.Errorf("csv file %s is empty", path)
		}
		return candle.Series{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	var bars []candle.Bar
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return candle.Series{}, fmt.Errorf("failed to read csv record: %w", err)
		}
		line++
		if len(rec) < 6 {
			return candle.Series{}, fmt.Errorf("line %d: expected 6 columns, got %d", line, len(rec))
		}

		t, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return candle.Series{}, fmt.Errorf("line %d: bad timestamp %q: %w", line, rec[0], err)
		}
		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return candle.Series{}, fmt.Errorf("line %d: bad numeric field %q: %w", line, rec[i+1], err)
			}
			vals[i] = v
		}
		bars = append(bars, candle.Bar{
			Time:   t,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	series, err := candle.NewSeries(symbol, interval, bars)
	if err != nil {
		return candle.Series{}, fmt.Errorf("csv candles failed validation: %w", err)
	}
	logger.Debugf("Loaded %d bars for %s %s from %s", series.Len(), symbol, interval, path)
	return series, nil
}
