package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/qoe-guard/pkg/features"
	"github.com/wonderfulspam/qoe-guard/pkg/policy"
	"github.com/wonderfulspam/qoe-guard/pkg/scoring"
)

// CriticalityRule is the file form of one criticality entry: a path-prefix
// pattern and its weight in [0,1]. Order in the file is significant; the
// first matching pattern wins.
type CriticalityRule struct {
	Pattern string  `yaml:"pattern" json:"pattern"`
	Weight  float64 `yaml:"weight" json:"weight"`
}

// ScoringConfig selects the scoring strategy and its weights.
type ScoringConfig struct {
	Strategy string               `yaml:"strategy" json:"strategy"` // logistic or tree
	Weights  scoring.WeightConfig `yaml:"weights" json:"weights"`
}

// Config is the full validation configuration, typically loaded from a
// .qoe-guard.yml file. Immutable after Load; safe to share across workers.
type Config struct {
	Version     string            `yaml:"version" json:"version"`
	Criticality []CriticalityRule `yaml:"criticality" json:"criticality"`
	Scoring     ScoringConfig     `yaml:"scoring" json:"scoring"`
	Policy      policy.Config     `yaml:"policy" json:"policy"`
}

// Default returns the built-in configuration: streaming-oriented criticality
// profiles, the default logistic weights and the default gating policy.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Criticality: []CriticalityRule{
			{Pattern: "$.playback", Weight: 1.00},
			{Pattern: "$.drm", Weight: 0.95},
			{Pattern: "$.entitlement", Weight: 0.95},
			{Pattern: "$.manifest", Weight: 0.95},
			{Pattern: "$.license", Weight: 0.90},
			{Pattern: "$.ads", Weight: 0.85},
			{Pattern: "$.auth", Weight: 0.80},
		},
		Scoring: ScoringConfig{
			Strategy: "logistic",
			Weights:  scoring.DefaultWeights(),
		},
		Policy: policy.Default(),
	}
}

// Load reads a configuration file and validates it. File values are layered
// over the defaults, so a partial file only overrides what it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects malformed configuration eagerly: bad criticality patterns
// or weights, unknown scoring strategies, invalid model weights and
// inconsistent policy thresholds all fail here, never at decision time.
func (c *Config) Validate() error {
	for _, rule := range c.Criticality {
		if _, err := features.NewCriticalityRule(rule.Pattern, rule.Weight); err != nil {
			return err
		}
	}

	switch c.Scoring.Strategy {
	case "logistic", "tree":
	default:
		return fmt.Errorf("unknown scoring strategy %q (supported: logistic, tree)", c.Scoring.Strategy)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return err
	}

	return c.Policy.Validate()
}

// CriticalityConfig builds the ordered, parsed criticality rules.
func (c *Config) CriticalityConfig() (features.CriticalityConfig, error) {
	out := features.CriticalityConfig{}
	for _, rule := range c.Criticality {
		parsed, err := features.NewCriticalityRule(rule.Pattern, rule.Weight)
		if err != nil {
			return features.CriticalityConfig{}, err
		}
		out.Rules = append(out.Rules, parsed)
	}
	return out, nil
}

// Scorer builds the configured scoring strategy.
func (c *Config) Scorer() (scoring.Scorer, error) {
	switch c.Scoring.Strategy {
	case "logistic":
		return scoring.NewLogisticScorer(c.Scoring.Weights)
	case "tree":
		return scoring.NewTreeScorer(scoring.DefaultTree())
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", c.Scoring.Strategy)
	}
}
