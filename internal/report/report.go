// Package report reduces closed trades into summary performance statistics.
package report

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/your-org/wave3-backtester/internal/simulator"
)

// tradingDaysPerYear annualizes the per-trade Sharpe ratio.
const tradingDaysPerYear = 252

// Stats holds the summary statistics of a set of closed trades. Ratios are
// fractions (win rate 0..1, drawdown as a positive fraction of the peak);
// monetary-style aggregates use decimals, matching what the persistence
// layer stores.
type Stats struct {
	TotalTrades          int             `json:"total_trades"`
	WinningTrades        int             `json:"winning_trades"`
	LosingTrades         int             `json:"losing_trades"`
	WinRate              float64         `json:"win_rate"`
	AverageWin           decimal.Decimal `json:"average_win"`
	AverageLoss          decimal.Decimal `json:"average_loss"`
	ProfitFactor         float64         `json:"profit_factor"`
	TotalReturn          decimal.Decimal `json:"total_return"`
	SharpeRatio          float64         `json:"sharpe_ratio"`
	MaxDrawdown          float64         `json:"max_drawdown"`
	MaxConsecutiveWins   int             `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int             `json:"max_consecutive_losses"`
}

// Summarize reduces trades to Stats. Degenerate inputs (an empty list,
// zero-variance returns, no losing trades) all map to defined zero or neutral
// values, because callers reduce over many symbols and one degenerate result
// must not abort a batch. It never returns NaN.
func Summarize(trades []simulator.Trade) Stats {
	stats := Stats{
		AverageWin:  decimal.Zero,
		AverageLoss: decimal.Zero,
		TotalReturn: decimal.Zero,
	}
	if len(trades) == 0 {
		return stats
	}

	returns := make([]float64, len(trades))
	totalProfit := decimal.Zero
	totalLoss := decimal.Zero
	var consecutiveWins, consecutiveLosses int

	for i, t := range trades {
		returns[i] = t.ReturnPct
		r := decimal.NewFromFloat(t.ReturnPct)
		stats.TotalReturn = stats.TotalReturn.Add(r)

		if t.ReturnPct > 0 {
			stats.WinningTrades++
			totalProfit = totalProfit.Add(r)
			consecutiveWins++
			consecutiveLosses = 0
			if consecutiveWins > stats.MaxConsecutiveWins {
				stats.MaxConsecutiveWins = consecutiveWins
			}
		} else if t.ReturnPct < 0 {
			stats.LosingTrades++
			totalLoss = totalLoss.Add(r)
			consecutiveLosses++
			consecutiveWins = 0
			if consecutiveLosses > stats.MaxConsecutiveLosses {
				stats.MaxConsecutiveLosses = consecutiveLosses
			}
		} else {
			consecutiveWins = 0
			consecutiveLosses = 0
		}
	}

	stats.TotalTrades = len(trades)
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades)

	if stats.WinningTrades > 0 {
		stats.AverageWin = totalProfit.Div(decimal.NewFromInt(int64(stats.WinningTrades)))
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = totalLoss.Div(decimal.NewFromInt(int64(stats.LosingTrades)))
	}

	// Profit factor is only meaningful with losses on the book; it stays 0
	// both for an all-winning record and for no trades at all.
	if totalLoss.IsNegative() {
		stats.ProfitFactor = totalProfit.Div(totalLoss.Abs()).InexactFloat64()
	}

	stats.SharpeRatio = annualizedSharpe(returns)
	stats.MaxDrawdown = maxDrawdown(returns)
	return stats
}

// annualizedSharpe returns mean/stdev * sqrt(252) over the per-trade returns,
// or 0 when the return variance is zero.
func annualizedSharpe(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)))
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}

// maxDrawdown compounds the returns into a cumulative equity curve and
// returns the largest peak-to-trough decline as a positive fraction of the
// peak.
func maxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
