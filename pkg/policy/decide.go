package policy

import (
	"math"
	"sort"

	"github.com/wonderfulspam/qoe-guard/pkg/differ"
	"github.com/wonderfulspam/qoe-guard/pkg/features"
	"github.com/wonderfulspam/qoe-guard/pkg/parser"
	"github.com/wonderfulspam/qoe-guard/pkg/scoring"
)

// Signal is one ranked piece of evidence behind a decision: either a scoring
// feature or a change on a critical path.
type Signal struct {
	Kind         string            `json:"kind"` // "feature" or "change"
	Feature      string            `json:"feature,omitempty"`
	Path         string            `json:"path,omitempty"`
	ChangeKind   differ.ChangeKind `json:"change_kind,omitempty"`
	Old          *parser.Value     `json:"old_value,omitempty"`
	New          *parser.Value     `json:"new_value,omitempty"`
	Contribution float64           `json:"contribution"`
}

// Decision is the immutable result of one comparison.
type Decision struct {
	Outcome       Outcome                `json:"decision"`
	Risk          float64                `json:"risk_score"`
	Features      features.FeatureVector `json:"features"`
	Contributions []scoring.Contribution `json:"contributions"`
	OverrideRule  string                 `json:"override_rule,omitempty"`
	TopSignals    []Signal               `json:"top_signals"`
}

// Decide converts a risk score and feature vector into a gating decision.
// Override rules evaluate first, in configured order; the first matching rule
// wins and bypasses the thresholds. Decide is a total function over valid
// configuration.
func Decide(score scoring.Result, ext features.Extraction, cfg Config) Decision {
	decision := Decision{
		Risk:          score.Risk,
		Features:      ext.Features,
		Contributions: score.Contributions,
		TopSignals:    rankSignals(score, ext, cfg.TopSignals),
	}

	for _, rule := range cfg.Overrides {
		if rule.matches(ext.Features) {
			decision.Outcome = rule.Outcome
			decision.OverrideRule = rule.Name
			return decision
		}
	}

	switch {
	case score.Risk >= cfg.FailThreshold:
		decision.Outcome = Fail
	case score.Risk >= cfg.WarnThreshold:
		decision.Outcome = Warn
	default:
		decision.Outcome = Pass
	}
	return decision
}

// rankSignals merges per-feature contributions with the critical-evidence
// changes, sorts by absolute contribution magnitude descending and truncates
// to topN. The sort is stable over a deterministic input order (canonical
// feature order, then changes in change order), so equal magnitudes keep a
// fixed relative order.
func rankSignals(score scoring.Result, ext features.Extraction, topN int) []Signal {
	signals := make([]Signal, 0, len(score.Contributions)+len(ext.CriticalEvidence))

	for _, c := range score.Contributions {
		if c.Contribution == 0 {
			continue
		}
		signals = append(signals, Signal{
			Kind:         "feature",
			Feature:      c.Feature,
			Contribution: c.Contribution,
		})
	}

	for _, ev := range ext.CriticalEvidence {
		signals = append(signals, Signal{
			Kind:         "change",
			Path:         ev.Change.Path.String(),
			ChangeKind:   ev.Change.Kind,
			Old:          ev.Change.Old,
			New:          ev.Change.New,
			Contribution: ev.Weight,
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return math.Abs(signals[i].Contribution) > math.Abs(signals[j].Contribution)
	})

	if len(signals) > topN {
		signals = signals[:topN]
	}
	return signals
}
