// Package signal provides the logic for generating trading signals.
package signal

import (
	"time"
)

// Direction represents the direction of a trading signal.
type Direction int

const (
	// DirectionNone indicates no signal.
	DirectionNone Direction = iota
	// DirectionLong indicates a long signal.
	DirectionLong
	// DirectionShort indicates a short signal.
	DirectionShort
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	case DirectionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Signal holds one scored candidate entry, including the TP/SL levels derived
// from the risk:reward policy. Signals are immutable values.
type Signal struct {
	Time         time.Time          `json:"evaluation_timestamp"`
	Direction    Direction          `json:"direction"`
	QualityScore float64            `json:"quality_score"`
	EntryPrice   float64            `json:"entry_price"`
	StopLoss     float64            `json:"stop_loss"`
	TakeProfit   float64            `json:"take_profit"`
	Features     map[string]float64 `json:"source_features"`
}
