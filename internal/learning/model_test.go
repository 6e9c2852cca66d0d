package learning

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogisticModelPredict(t *testing.T) {
	model := NewLogisticModel(0, map[string]float64{"momentum": 2.0})

	// Zero activation sits exactly at 0.5.
	p, err := model.PredictWinProbability(context.Background(), map[string]float64{"momentum": 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)

	p, err = model.PredictWinProbability(context.Background(), map[string]float64{"momentum": 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/(1.0+math.Exp(-2)), p, 1e-9)

	// Features the model does not know, and weights the features do not
	// cover, both fall out of the sum.
	p, err = model.PredictWinProbability(context.Background(), map[string]float64{"rsi_14": 70})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9)
}

func TestLogisticModelProbabilityRange(t *testing.T) {
	model := NewLogisticModel(-3, map[string]float64{"x": 10})
	for _, x := range []float64{-100, -1, 0, 1, 100} {
		p, err := model.PredictWinProbability(context.Background(), map[string]float64{"x": x})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestLogisticModelCancelledContext(t *testing.T) {
	model := NewLogisticModel(0, map[string]float64{"x": 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.PredictWinProbability(ctx, map[string]float64{"x": 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadLogisticModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bias": -0.5, "weights": {"quality_score": 0.01}}`), 0o644))

	model, err := LoadLogisticModel(path)
	require.NoError(t, err)
	assert.NotEmpty(t, model.Version())

	p, err := model.PredictWinProbability(context.Background(), map[string]float64{"quality_score": 50})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-9) // -0.5 + 0.01*50 = 0
}

func TestLoadLogisticModelErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLogisticModel(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := LoadLogisticModel(path)
		assert.Error(t, err)
	})
	t.Run("no weights", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"bias": 1}`), 0o644))
		_, err := LoadLogisticModel(path)
		assert.Error(t, err)
	})
}
