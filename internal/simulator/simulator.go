// Package simulator walks a bar series forward and converts accepted signals
// into closed trades against their stop-loss/take-profit levels.
package simulator

import (
	"time"

	"github.com/your-org/wave3-backtester/internal/candle"
	"github.com/your-org/wave3-backtester/internal/filter"
	"github.com/your-org/wave3-backtester/internal/signal"
	"github.com/your-org/wave3-backtester/pkg/logger"
)

// ExitReason records which condition closed a trade.
type ExitReason int

const (
	// ExitStop means the stop-loss level was hit.
	ExitStop ExitReason = iota
	// ExitTarget means the take-profit level was hit.
	ExitTarget
	// ExitTimeout means the maximum holding horizon elapsed.
	ExitTimeout
)

// String returns the string representation of ExitReason.
func (r ExitReason) String() string {
	switch r {
	case ExitStop:
		return "STOP"
	case ExitTarget:
		return "TARGET"
	case ExitTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Trade is one closed round trip. It is the only unit the performance
// aggregator consumes.
type Trade struct {
	Symbol     string           `json:"symbol"`
	EntryTime  time.Time        `json:"entry_time"`
	ExitTime   time.Time        `json:"exit_time"`
	EntryPrice float64          `json:"entry_price"`
	ExitPrice  float64          `json:"exit_price"`
	Direction  signal.Direction `json:"direction"`
	ReturnPct  float64          `json:"return_pct"`
	ExitReason ExitReason       `json:"exit_reason"`
}

// position is the transient in-flight state of the per-symbol loop. It exists
// only between an accepted signal and the bar that closes it.
type position struct {
	entryIndex int
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	direction  signal.Direction
}

// Simulator runs the per-symbol FLAT/OPEN state machine. It never looks
// beyond the currently available bar when deciding exits.
type Simulator struct {
	maxHoldingBars int
}

// New creates a Simulator with the given holding horizon in bars.
func New(maxHoldingBars int) *Simulator {
	return &Simulator{maxHoldingBars: maxHoldingBars}
}

// Run replays the series against the accepted signals and returns the closed
// trades in entry order. Signals must be ordered by time; signals whose
// direction is NONE or whose decision is REJECT are skipped, and signals
// arriving while a position is open are ignored (no pyramiding: at most one
// open position per symbol).
//
// Exit priority within a single bar is stop-loss first, then take-profit,
// then horizon timeout. A bar whose range covers both stop and target closes
// at the stop: the conservative assumption, which deliberately understates
// the win rate rather than overstating it.
func (s *Simulator) Run(series candle.Series, signals []filter.ScoredSignal) []Trade {
	trades := make([]Trade, 0, len(signals))
	var open *position
	next := 0 // next signal to consider

	for i, bar := range series.Bars {
		if open != nil && i > open.entryIndex {
			if trade, closed := s.tryClose(series, open, i); closed {
				trades = append(trades, trade)
				open = nil
			}
		}

		// Consume every signal stamped at or before this bar. Only a signal
		// stamped exactly at this bar can open a position; older ones are
		// stale and dropped.
		for next < len(signals) && !signals[next].Signal.Time.After(bar.Time) {
			sig := signals[next]
			next++
			if !sig.Accepted() || sig.Signal.Direction == signal.DirectionNone {
				continue
			}
			if !sig.Signal.Time.Equal(bar.Time) {
				continue
			}
			if open != nil {
				logger.Debugf("Ignoring %s signal at %s: position already open",
					sig.Signal.Direction, sig.Signal.Time.Format(time.RFC3339))
				continue
			}
			open = &position{
				entryIndex: i,
				entryPrice: sig.Signal.EntryPrice,
				stopLoss:   sig.Signal.StopLoss,
				takeProfit: sig.Signal.TakeProfit,
				direction:  sig.Signal.Direction,
			}
		}
	}

	// A position still open at the end of the data is settled at the last
	// close so aggregate statistics stay total.
	if open != nil && series.Len() > 0 {
		last := series.Len() - 1
		trades = append(trades, s.close(series, open, last, series.Bars[last].Close, ExitTimeout))
	}
	return trades
}

// tryClose checks the exit conditions on bar i and returns the closed trade
// when one fires.
func (s *Simulator) tryClose(series candle.Series, p *position, i int) (Trade, bool) {
	bar := series.Bars[i]

	stopHit := false
	targetHit := false
	if p.direction == signal.DirectionLong {
		stopHit = bar.Low <= p.stopLoss
		targetHit = bar.High >= p.takeProfit
	} else {
		stopHit = bar.High >= p.stopLoss
		targetHit = bar.Low <= p.takeProfit
	}

	switch {
	case stopHit:
		// Stop wins ties by policy.
		return s.close(series, p, i, p.stopLoss, ExitStop), true
	case targetHit:
		return s.close(series, p, i, p.takeProfit, ExitTarget), true
	case i-p.entryIndex >= s.maxHoldingBars:
		return s.close(series, p, i, bar.Close, ExitTimeout), true
	}
	return Trade{}, false
}

func (s *Simulator) close(series candle.Series, p *position, i int, exitPrice float64, reason ExitReason) Trade {
	returnPct := (exitPrice - p.entryPrice) / p.entryPrice
	if p.direction == signal.DirectionShort {
		returnPct = -returnPct
	}
	return Trade{
		Symbol:     series.Symbol,
		EntryTime:  series.Bars[p.entryIndex].Time,
		ExitTime:   series.Bars[i].Time,
		EntryPrice: p.entryPrice,
		ExitPrice:  exitPrice,
		Direction:  p.direction,
		ReturnPct:  returnPct,
		ExitReason: reason,
	}
}
