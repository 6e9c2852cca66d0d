// Package filter applies the optional ML confidence gate to scored signals.
package filter

import (
	"context"
	"fmt"

	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/signal"
)

// Predictor is the externally supplied inference capability. The engine never
// trains a model; it only consumes one. Implementations must be safe for
// concurrent read-only calls from multiple symbol/fold workers.
type Predictor interface {
	// PredictWinProbability maps a feature vector to a win-probability
	// estimate in [0,1].
	PredictWinProbability(ctx context.Context, features map[string]float64) (float64, error)
}

// Decision represents the verdict of the confidence filter.
type Decision int

const (
	// DecisionAccept passes the signal on to the trade simulator.
	DecisionAccept Decision = iota
	// DecisionReject drops the signal.
	DecisionReject
)

// String returns the string representation of Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "ACCEPT"
	case DecisionReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// ScoredSignal carries a signal together with the ML verdict, preserving full
// provenance of both the rule-based score and the filter decision.
type ScoredSignal struct {
	Signal       signal.Signal `json:"signal"`
	MLConfidence float64       `json:"ml_confidence"`
	Decision     Decision      `json:"decision"`
	RejectReason string        `json:"reject_reason,omitempty"`
}

// Accepted reports whether the signal survived the filter.
func (s ScoredSignal) Accepted() bool { return s.Decision == DecisionAccept }

// Filter gates signals by win-probability. Both policies share the same
// interface shape (mode + threshold), so callers can swap policy without
// touching the scorer or the simulator.
type Filter struct {
	mode      config.FilterMode
	threshold float64
	predictor Predictor
}

// New creates a Filter. predictor may be nil, in which case every signal
// passes through annotated rather than silently unfiltered.
func New(cfg config.FilterConfig, predictor Predictor) *Filter {
	return &Filter{
		mode:      cfg.Mode,
		threshold: cfg.Threshold,
		predictor: predictor,
	}
}

// Apply scores one signal. A missing predictor, a predictor error, or an
// out-of-range probability all degrade to pass-through with a neutral 0.5
// confidence and an explicit reason; the filter never substitutes a default
// confidence without flagging it.
func (f *Filter) Apply(ctx context.Context, sig signal.Signal) ScoredSignal {
	if f.predictor == nil {
		return ScoredSignal{
			Signal:       sig,
			MLConfidence: 0.5,
			Decision:     DecisionAccept,
			RejectReason: "no predictor",
		}
	}

	confidence, err := f.predictor.PredictWinProbability(ctx, sig.Features)
	if err != nil {
		return ScoredSignal{
			Signal:       sig,
			MLConfidence: 0.5,
			Decision:     DecisionAccept,
			RejectReason: fmt.Sprintf("predictor failed: %v", err),
		}
	}
	if confidence < 0 || confidence > 1 {
		return ScoredSignal{
			Signal:       sig,
			MLConfidence: 0.5,
			Decision:     DecisionAccept,
			RejectReason: fmt.Sprintf("predictor returned out-of-range value %v", confidence),
		}
	}

	// Both modes reject iff confidence < threshold, with the boundary value
	// accepting. The modes differ only in how the operator picks the
	// threshold (a floor to clear vs. a veto level), not in the comparison,
	// so the two arms are intentionally identical apart from the reason text.
	scored := ScoredSignal{Signal: sig, MLConfidence: confidence}
	switch f.mode {
	case config.FilterModePositive:
		if confidence < f.threshold {
			scored.Decision = DecisionReject
			scored.RejectReason = fmt.Sprintf("confidence %.4f below accept threshold %.4f", confidence, f.threshold)
		}
	case config.FilterModeNegative:
		if confidence < f.threshold {
			scored.Decision = DecisionReject
			scored.RejectReason = fmt.Sprintf("confidence %.4f below reject threshold %.4f", confidence, f.threshold)
		}
	}
	return scored
}

// ApplyAll scores a batch of signals in order.
func (f *Filter) ApplyAll(ctx context.Context, signals []signal.Signal) []ScoredSignal {
	out := make([]ScoredSignal, 0, len(signals))
	for _, sig := range signals {
		out = append(out, f.Apply(ctx, sig))
	}
	return out
}
