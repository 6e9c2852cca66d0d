package filter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/wave3-backtester/internal/config"
	"github.com/your-org/wave3-backtester/internal/signal"
)

type stubPredictor struct {
	confidence float64
	err        error
	calls      int
}

func (p *stubPredictor) PredictWinProbability(ctx context.Context, features map[string]float64) (float64, error) {
	p.calls++
	return p.confidence, p.err
}

func testSignal() signal.Signal {
	return signal.Signal{
		Time:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Direction:    signal.DirectionLong,
		QualityScore: 70,
		EntryPrice:   100,
		StopLoss:     94,
		TakeProfit:   118,
		Features:     map[string]float64{"quality_score": 70},
	}
}

func TestApplyWithoutPredictor(t *testing.T) {
	f := New(config.FilterConfig{Mode: config.FilterModePositive, Threshold: 0.9}, nil)

	scored := f.Apply(context.Background(), testSignal())
	assert.True(t, scored.Accepted())
	assert.Equal(t, 0.5, scored.MLConfidence)
	assert.Equal(t, "no predictor", scored.RejectReason)
}

func TestApplyPredictorError(t *testing.T) {
	p := &stubPredictor{err: errors.New("model unavailable")}
	f := New(config.FilterConfig{Mode: config.FilterModePositive, Threshold: 0.9}, p)

	scored := f.Apply(context.Background(), testSignal())
	assert.True(t, scored.Accepted())
	assert.Equal(t, 0.5, scored.MLConfidence)
	assert.Contains(t, scored.RejectReason, "predictor failed")
}

func TestApplyOutOfRangeConfidence(t *testing.T) {
	for _, confidence := range []float64{-0.1, 1.5} {
		p := &stubPredictor{confidence: confidence}
		f := New(config.FilterConfig{Mode: config.FilterModePositive, Threshold: 0.9}, p)

		scored := f.Apply(context.Background(), testSignal())
		assert.True(t, scored.Accepted())
		assert.Equal(t, 0.5, scored.MLConfidence)
		assert.Contains(t, scored.RejectReason, "out-of-range")
	}
}

func TestApplyThresholds(t *testing.T) {
	tests := []struct {
		name       string
		mode       config.FilterMode
		threshold  float64
		confidence float64
		accept     bool
	}{
		{name: "positive above threshold", mode: config.FilterModePositive, threshold: 0.55, confidence: 0.80, accept: true},
		{name: "positive below threshold", mode: config.FilterModePositive, threshold: 0.55, confidence: 0.40, accept: false},
		{name: "positive at threshold", mode: config.FilterModePositive, threshold: 0.55, confidence: 0.55, accept: true},
		{name: "negative above threshold", mode: config.FilterModeNegative, threshold: 0.30, confidence: 0.60, accept: true},
		{name: "negative below threshold", mode: config.FilterModeNegative, threshold: 0.30, confidence: 0.10, accept: false},
		// The boundary value is not below the threshold, so it survives.
		{name: "negative at threshold", mode: config.FilterModeNegative, threshold: 0.30, confidence: 0.30, accept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubPredictor{confidence: tt.confidence}
			f := New(config.FilterConfig{Mode: tt.mode, Threshold: tt.threshold}, p)

			scored := f.Apply(context.Background(), testSignal())
			assert.Equal(t, tt.accept, scored.Accepted())
			assert.Equal(t, tt.confidence, scored.MLConfidence)
			if !tt.accept {
				assert.NotEmpty(t, scored.RejectReason)
			}
		})
	}
}

func TestApplyAllPreservesOrder(t *testing.T) {
	p := &stubPredictor{confidence: 0.7}
	f := New(config.FilterConfig{Mode: config.FilterModePositive, Threshold: 0.55}, p)

	signals := []signal.Signal{testSignal(), testSignal(), testSignal()}
	scored := f.ApplyAll(context.Background(), signals)

	assert.Len(t, scored, 3)
	assert.Equal(t, 3, p.calls)
	for _, s := range scored {
		assert.True(t, s.Accepted())
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "ACCEPT", DecisionAccept.String())
	assert.Equal(t, "REJECT", DecisionReject.String())
	assert.Equal(t, "UNKNOWN", Decision(7).String())
}
