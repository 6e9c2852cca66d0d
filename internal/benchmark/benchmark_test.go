package benchmark

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/wave3-backtester/internal/candle"
)

func seriesWithCloses(t *testing.T, closes ...float64) candle.Series {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]candle.Bar, len(closes))
	for i, c := range closes {
		bars[i] = candle.Bar{Time: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	series, err := candle.NewSeries("BTCUSDT", "1d", bars)
	require.NoError(t, err)
	return series
}

func TestBuyAndHold(t *testing.T) {
	res := BuyAndHold(seriesWithCloses(t, 100, 150, 75, 120))

	assert.InDelta(t, 0.2, res.Return.InexactFloat64(), 1e-9)
	// Peak 150 down to 75 is a 50% drawdown.
	assert.InDelta(t, 0.5, res.MaxDrawdown, 1e-9)
}

func TestBuyAndHoldDegenerate(t *testing.T) {
	assert.True(t, BuyAndHold(candle.Series{}).Return.IsZero())
	assert.True(t, BuyAndHold(seriesWithCloses(t, 100)).Return.IsZero())
}

func TestAlpha(t *testing.T) {
	alpha := Alpha(decimal.NewFromFloat(0.15), decimal.NewFromFloat(0.10))
	assert.InDelta(t, 0.05, alpha.InexactFloat64(), 1e-9)

	negative := Alpha(decimal.NewFromFloat(-0.02), decimal.NewFromFloat(0.10))
	assert.InDelta(t, -0.12, negative.InexactFloat64(), 1e-9)
}
