package validator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonderfulspam/qoe-guard/pkg/config"
	"github.com/wonderfulspam/qoe-guard/pkg/conformance"
	"github.com/wonderfulspam/qoe-guard/pkg/differ"
	"github.com/wonderfulspam/qoe-guard/pkg/features"
	"github.com/wonderfulspam/qoe-guard/pkg/parser"
	"github.com/wonderfulspam/qoe-guard/pkg/policy"
	"github.com/wonderfulspam/qoe-guard/pkg/scoring"
)

// Report is the full result of one baseline/candidate comparison.
type Report struct {
	Name        string              `json:"name,omitempty"`
	Decision    policy.Decision     `json:"decision"`
	Changes     []differ.Change     `json:"changes"`
	Summary     string              `json:"summary"`
	Conformance *conformance.Result `json:"conformance,omitempty"`
}

// Validator runs the diff -> extract -> score -> decide pipeline. It holds
// only immutable configuration, so a single Validator is safe for concurrent
// use across goroutines.
type Validator struct {
	criticality features.CriticalityConfig
	scorer      scoring.Scorer
	policy      policy.Config
}

// New validates the configuration once and builds a reusable Validator.
func New(cfg *config.Config) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	criticality, err := cfg.CriticalityConfig()
	if err != nil {
		return nil, err
	}
	scorer, err := cfg.Scorer()
	if err != nil {
		return nil, err
	}
	return &Validator{
		criticality: criticality,
		scorer:      scorer,
		policy:      cfg.Policy,
	}, nil
}

// Run compares one candidate against its baseline. Every stage is a pure
// function, so Run cannot fail: any pair of values produces a report.
func (v *Validator) Run(baseline, candidate parser.Value) *Report {
	changes := differ.Diff(baseline, candidate)
	ext := features.Extract(changes, v.criticality)
	score := v.scorer.Score(ext.Features)
	decision := policy.Decide(score, ext, v.policy)

	return &Report{
		Decision: decision,
		Changes:  changes,
		Summary:  differ.Summarize(changes),
	}
}

// Pair names one baseline/candidate comparison, typically one per endpoint.
type Pair struct {
	Name      string
	Baseline  parser.Value
	Candidate parser.Value
}

// RunPairs validates many pairs from a bounded worker pool. Reports are
// returned in input order regardless of completion order. Concurrency must be
// at least 1; the context only short-circuits scheduling, it cannot interrupt
// a comparison in flight.
func (v *Validator) RunPairs(ctx context.Context, pairs []Pair, concurrency int) ([]*Report, error) {
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	reports := make([]*Report, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report := v.Run(pair.Baseline, pair.Candidate)
			report.Name = pair.Name
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
