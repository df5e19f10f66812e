package features

import (
	"fmt"
	"math"

	"github.com/wonderfulspam/qoe-guard/pkg/differ"
)

// CriticalityRule marks one path prefix as critical with a weight in [0,1].
type CriticalityRule struct {
	Pattern differ.Path
	Weight  float64
}

// CriticalityConfig is an ordered set of path-prefix rules. The first rule
// whose pattern is a segment-wise prefix of a change path wins.
type CriticalityConfig struct {
	Rules []CriticalityRule
}

// NewCriticalityRule parses a pattern string (e.g. "$.playback") into a
// validated rule. Invalid patterns and out-of-range weights are rejected
// here, never at extraction time.
func NewCriticalityRule(pattern string, weight float64) (CriticalityRule, error) {
	path, err := differ.ParsePattern(pattern)
	if err != nil {
		return CriticalityRule{}, fmt.Errorf("invalid criticality pattern: %w", err)
	}
	if weight < 0 || weight > 1 || math.IsNaN(weight) {
		return CriticalityRule{}, fmt.Errorf("criticality weight %v for %q is outside [0,1]", weight, pattern)
	}
	return CriticalityRule{Pattern: path, Weight: weight}, nil
}

// Match returns the weight of the first rule whose pattern prefixes the path.
func (c CriticalityConfig) Match(p differ.Path) (float64, bool) {
	for _, rule := range c.Rules {
		if p.HasPrefix(rule.Pattern) {
			return rule.Weight, true
		}
	}
	return 0, false
}

// CriticalChange is a change that matched a criticality rule, kept as
// evidence for explainability ranking.
type CriticalChange struct {
	Change differ.Change `json:"change"`
	Weight float64       `json:"weight"`
}

// Extraction is the result of reducing a change list: the feature vector plus
// the critical-evidence side list, in change order.
type Extraction struct {
	Features         FeatureVector    `json:"features"`
	CriticalEvidence []CriticalChange `json:"critical_evidence,omitempty"`
}

// Extract reduces a change list to a feature vector in a single pass.
//
// Array length markers count only toward ArrayLenChanges: they are excluded
// from ValueChanges and from the numeric delta accumulators so cardinality
// drift is never double-counted. They still count as critical when under a
// critical prefix. Numeric deltas saturate rather than overflow.
func Extract(changes []differ.Change, criticality CriticalityConfig) Extraction {
	var ext Extraction
	fv := &ext.Features

	for _, c := range changes {
		if weight, ok := criticality.Match(c.Path); ok {
			fv.CriticalChanges++
			ext.CriticalEvidence = append(ext.CriticalEvidence, CriticalChange{Change: c, Weight: weight})
		}

		if c.Path.IsLengthMarker() {
			fv.ArrayLenChanges++
			continue
		}

		switch c.Kind {
		case differ.ChangeAdded:
			fv.AddedFields++
		case differ.ChangeRemoved:
			fv.RemovedFields++
		case differ.ChangeTypeChanged:
			fv.TypeChanges++
		case differ.ChangeValueChanged:
			fv.ValueChanges++
			if c.NumericDelta > 0 {
				fv.NumericDeltaSum = satAdd(fv.NumericDeltaSum, c.NumericDelta)
				if c.NumericDelta > fv.NumericDeltaMax {
					fv.NumericDeltaMax = c.NumericDelta
				}
			}
		}
	}

	return ext
}

func satAdd(a, b float64) float64 {
	s := a + b
	if math.IsInf(s, 1) {
		return math.MaxFloat64
	}
	return s
}
