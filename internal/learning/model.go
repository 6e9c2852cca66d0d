// Package learning provides trained-model predictors for the confidence
// filter. Training happens offline; this package only loads and serves the
// resulting model.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
)

// LogisticModel scores a signal's feature map with a logistic regression.
// Features absent from the map contribute nothing, so the model degrades
// gracefully when an indicator is still warming up.
type LogisticModel struct {
	version string
	bias    float64
	weights map[string]float64
}

// modelFile is the on-disk JSON layout produced by the offline trainer.
type modelFile struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// NewLogisticModel creates a model from explicit coefficients.
func NewLogisticModel(bias float64, weights map[string]float64) *LogisticModel {
	return &LogisticModel{
		version: fmt.Sprintf("model-%s", uuid.New().String()),
		bias:    bias,
		weights: weights,
	}
}

// LoadLogisticModel reads model coefficients from a JSON file.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if len(mf.Weights) == 0 {
		return nil, fmt.Errorf("model file %s has no weights", path)
	}
	return NewLogisticModel(mf.Bias, mf.Weights), nil
}

// PredictWinProbability returns sigmoid(bias + w·x) over the named features.
func (m *LogisticModel) PredictWinProbability(ctx context.Context, features map[string]float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	z := m.bias
	for name, w := range m.weights {
		if v, ok := features[name]; ok {
			z += w * v
		}
	}
	return 1.0 / (1.0 + math.Exp(-z)), nil
}

// Version returns the model instance version.
func (m *LogisticModel) Version() string {
	return m.version
}
