package policy

import (
	"fmt"
	"math"

	"github.com/wonderfulspam/qoe-guard/pkg/features"
)

// Outcome is the terminal gating decision.
type Outcome string

const (
	Pass Outcome = "PASS"
	Warn Outcome = "WARN"
	Fail Outcome = "FAIL"
)

// ExitCode maps an outcome to the conventional process exit code
// (0=PASS, 1=WARN, 2=FAIL; 3 is reserved for internal errors by callers).
func (o Outcome) ExitCode() int {
	switch o {
	case Pass:
		return 0
	case Warn:
		return 1
	default:
		return 2
	}
}

// Condition is a single predicate over one feature, e.g.
// critical_changes >= 3.
type Condition struct {
	Feature string  `yaml:"feature" json:"feature"`
	Op      string  `yaml:"op" json:"op"`
	Value   float64 `yaml:"value" json:"value"`
}

func (c Condition) validate() error {
	if !features.IsFeature(c.Feature) {
		return fmt.Errorf("unknown feature %q in override condition", c.Feature)
	}
	switch c.Op {
	case ">=", ">", "<=", "<", "==":
	default:
		return fmt.Errorf("unknown operator %q in override condition (supported: >=, >, <=, <, ==)", c.Op)
	}
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return fmt.Errorf("condition value for %s must be finite, got %v", c.Feature, c.Value)
	}
	return nil
}

func (c Condition) holds(fv features.FeatureVector) bool {
	value, ok := fv.Value(c.Feature)
	if !ok {
		return false
	}
	switch c.Op {
	case ">=":
		return value >= c.Value
	case ">":
		return value > c.Value
	case "<=":
		return value <= c.Value
	case "<":
		return value < c.Value
	case "==":
		return value == c.Value
	default:
		return false
	}
}

// OverrideRule forces an outcome when every condition holds, bypassing the
// threshold comparison. Rules evaluate in configured order, first match wins.
type OverrideRule struct {
	Name    string      `yaml:"name" json:"name"`
	Outcome Outcome     `yaml:"outcome" json:"outcome"`
	When    []Condition `yaml:"when" json:"when"`
}

func (r OverrideRule) matches(fv features.FeatureVector) bool {
	for _, c := range r.When {
		if !c.holds(fv) {
			return false
		}
	}
	return true
}

// Config holds the gating thresholds and override rules. Thresholds are
// inclusive at the lower bound of each band: [0,warn)=PASS, [warn,fail)=WARN,
// [fail,1]=FAIL.
type Config struct {
	WarnThreshold float64        `yaml:"warn_threshold" json:"warn_threshold"`
	FailThreshold float64        `yaml:"fail_threshold" json:"fail_threshold"`
	TopSignals    int            `yaml:"top_signals" json:"top_signals"`
	Overrides     []OverrideRule `yaml:"overrides" json:"overrides"`
}

// Default returns the built-in policy: WARN at 0.45, FAIL at 0.72, and the
// critical-structure-break override (>=3 critical changes plus >=1 type
// change forces FAIL regardless of the numeric risk).
func Default() Config {
	return Config{
		WarnThreshold: 0.45,
		FailThreshold: 0.72,
		TopSignals:    5,
		Overrides: []OverrideRule{
			{
				Name:    "critical-structure-break",
				Outcome: Fail,
				When: []Condition{
					{Feature: features.FeatureCriticalChanges, Op: ">=", Value: 3},
					{Feature: features.FeatureTypeChanges, Op: ">=", Value: 1},
				},
			},
		},
	}
}

// Validate rejects malformed policy eagerly with a descriptive error; nothing
// is silently clamped. Decide itself has no failure mode.
func (c Config) Validate() error {
	if c.WarnThreshold < 0 || c.WarnThreshold > 1 || math.IsNaN(c.WarnThreshold) {
		return fmt.Errorf("warn_threshold %v is outside [0,1]", c.WarnThreshold)
	}
	if c.FailThreshold < 0 || c.FailThreshold > 1 || math.IsNaN(c.FailThreshold) {
		return fmt.Errorf("fail_threshold %v is outside [0,1]", c.FailThreshold)
	}
	if c.WarnThreshold >= c.FailThreshold {
		return fmt.Errorf("warn_threshold %v must be below fail_threshold %v", c.WarnThreshold, c.FailThreshold)
	}
	if c.TopSignals < 1 {
		return fmt.Errorf("top_signals must be at least 1, got %d", c.TopSignals)
	}
	for _, rule := range c.Overrides {
		if rule.Name == "" {
			return fmt.Errorf("override rule is missing a name")
		}
		switch rule.Outcome {
		case Pass, Warn, Fail:
		default:
			return fmt.Errorf("override rule %q has unknown outcome %q", rule.Name, rule.Outcome)
		}
		if len(rule.When) == 0 {
			return fmt.Errorf("override rule %q has no conditions", rule.Name)
		}
		for _, cond := range rule.When {
			if err := cond.validate(); err != nil {
				return fmt.Errorf("override rule %q: %w", rule.Name, err)
			}
		}
	}
	return nil
}
