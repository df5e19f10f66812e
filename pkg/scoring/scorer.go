package scoring

import (
	"github.com/wonderfulspam/qoe-guard/pkg/features"
)

// Contribution is the share of the score driven by one feature.
type Contribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Result is a bounded risk score in [0,1] plus its per-feature breakdown.
// Contributions are reported in canonical feature order so rendered output is
// byte-identical across runs.
type Result struct {
	Risk          float64        `json:"risk"`
	Contributions []Contribution `json:"contributions"`
}

// Scorer converts a feature vector into a bounded risk score with a
// per-feature contribution breakdown. Implementations must be pure functions
// of their input so they can be shared freely across goroutines.
type Scorer interface {
	Score(fv features.FeatureVector) Result
}
