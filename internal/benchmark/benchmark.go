// Package benchmark computes a buy-and-hold baseline so a strategy's results
// can be read as alpha over simply holding the asset.
package benchmark

import (
	"github.com/shopspring/decimal"

	"github.com/your-org/wave3-backtester/internal/candle"
)

// Result holds buy-and-hold performance over a bar window.
type Result struct {
	Return      decimal.Decimal `json:"return"`
	MaxDrawdown float64         `json:"max_drawdown"`
}

// BuyAndHold enters at the first close and exits at the last close of the
// series. Fewer than two bars yield a zero Result.
func BuyAndHold(series candle.Series) Result {
	if series.Len() < 2 {
		return Result{Return: decimal.Zero}
	}

	first := series.Bars[0].Close
	last := series.Bars[series.Len()-1].Close
	ret := decimal.NewFromFloat(last).
		Sub(decimal.NewFromFloat(first)).
		Div(decimal.NewFromFloat(first))

	peak := first
	maxDD := 0.0
	for _, bar := range series.Bars {
		if bar.Close > peak {
			peak = bar.Close
		}
		if dd := (peak - bar.Close) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return Result{Return: ret, MaxDrawdown: maxDD}
}

// Alpha is the strategy return in excess of the buy-and-hold return.
func Alpha(strategyReturn, benchmarkReturn decimal.Decimal) decimal.Decimal {
	return strategyReturn.Sub(benchmarkReturn)
}
