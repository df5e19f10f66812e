package scoring

import (
	"fmt"
	"math"

	"github.com/wonderfulspam/qoe-guard/pkg/features"
)

// WeightConfig holds the per-feature linear weights and bias of the logistic
// model. Weights are fixed configuration, not learned state.
type WeightConfig struct {
	Bias            float64 `yaml:"bias" json:"bias"`
	AddedFields     float64 `yaml:"added_fields" json:"added_fields"`
	RemovedFields   float64 `yaml:"removed_fields" json:"removed_fields"`
	TypeChanges     float64 `yaml:"type_changes" json:"type_changes"`
	ValueChanges    float64 `yaml:"value_changes" json:"value_changes"`
	NumericDeltaSum float64 `yaml:"numeric_delta_sum" json:"numeric_delta_sum"`
	NumericDeltaMax float64 `yaml:"numeric_delta_max" json:"numeric_delta_max"`
	ArrayLenChanges float64 `yaml:"array_len_changes" json:"array_len_changes"`
	CriticalChanges float64 `yaml:"critical_changes" json:"critical_changes"`
}

// DefaultWeights returns the built-in QoE-aware weights. The negative bias
// keeps risk low unless the features provide evidence.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Bias:            -1.2,
		AddedFields:     0.05,
		RemovedFields:   0.10,
		TypeChanges:     0.14,
		ValueChanges:    0.04,
		NumericDeltaSum: 0.06,
		NumericDeltaMax: 0.16,
		ArrayLenChanges: 0.07,
		CriticalChanges: 0.18,
	}
}

// Validate rejects malformed weights eagerly: feature weights must be finite
// and non-negative (so risk is monotone in every feature), the bias finite.
func (w WeightConfig) Validate() error {
	if math.IsNaN(w.Bias) || math.IsInf(w.Bias, 0) {
		return fmt.Errorf("bias must be finite, got %v", w.Bias)
	}
	for _, name := range features.Names() {
		weight := w.weight(name)
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("weight for %s must be finite, got %v", name, weight)
		}
		if weight < 0 {
			return fmt.Errorf("weight for %s must be non-negative, got %v", name, weight)
		}
	}
	return nil
}

func (w WeightConfig) weight(name string) float64 {
	switch name {
	case features.FeatureAddedFields:
		return w.AddedFields
	case features.FeatureRemovedFields:
		return w.RemovedFields
	case features.FeatureTypeChanges:
		return w.TypeChanges
	case features.FeatureValueChanges:
		return w.ValueChanges
	case features.FeatureNumericDeltaSum:
		return w.NumericDeltaSum
	case features.FeatureNumericDeltaMax:
		return w.NumericDeltaMax
	case features.FeatureArrayLenChanges:
		return w.ArrayLenChanges
	case features.FeatureCriticalChanges:
		return w.CriticalChanges
	default:
		return 0
	}
}

// LogisticScorer computes risk = 1 / (1 + e^-(bias + Σ weight_i * feature_i)).
type LogisticScorer struct {
	weights WeightConfig
}

// NewLogisticScorer validates the weights and builds a scorer.
func NewLogisticScorer(weights WeightConfig) (*LogisticScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight configuration: %w", err)
	}
	return &LogisticScorer{weights: weights}, nil
}

func (s *LogisticScorer) Score(fv features.FeatureVector) Result {
	z := s.weights.Bias
	contributions := make([]Contribution, 0, len(features.Names()))

	for _, name := range features.Names() {
		value, _ := fv.Value(name)
		weight := s.weights.weight(name)
		contrib := weight * value
		z += contrib
		contributions = append(contributions, Contribution{
			Feature:      name,
			Value:        value,
			Weight:       weight,
			Contribution: contrib,
		})
	}

	return Result{Risk: sigmoid(z), Contributions: contributions}
}

// sigmoid squashes z to (0,1); math.Exp saturates cleanly at the extremes so
// no overflow guard is needed.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
