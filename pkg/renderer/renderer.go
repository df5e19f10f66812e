package renderer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wonderfulspam/qoe-guard/pkg/policy"
	"github.com/wonderfulspam/qoe-guard/pkg/validator"
)

type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// Renderer formats validation reports for one output format.
type Renderer struct {
	format Format
}

// New builds a renderer, rejecting unknown formats.
func New(format string) (*Renderer, error) {
	switch Format(format) {
	case FormatText, FormatJSON, FormatGitHub:
		return &Renderer{format: Format(format)}, nil
	case "":
		return &Renderer{format: FormatText}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, json, github)", format)
	}
}

// Render writes a single report.
func (r *Renderer) Render(w io.Writer, report *validator.Report) error {
	switch r.format {
	case FormatJSON:
		return renderJSON(w, report)
	case FormatGitHub:
		return renderGitHub(w, report)
	default:
		return renderText(w, report)
	}
}

// RenderAll writes a batch of reports. JSON output is a single array; the
// other formats render reports back to back.
func (r *Renderer) RenderAll(w io.Writer, reports []*validator.Report) error {
	if r.format == FormatJSON {
		return renderJSON(w, reports)
	}
	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := r.Render(w, report); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

const maxListedChanges = 10

func renderText(w io.Writer, report *validator.Report) error {
	fmt.Fprintf(w, "QoE-Guard Validation Report\n")
	fmt.Fprintf(w, "===========================\n")
	if report.Name != "" {
		fmt.Fprintf(w, "Endpoint: %s\n", report.Name)
	}
	fmt.Fprintf(w, "Decision: %s", report.Decision.Outcome)
	if report.Decision.OverrideRule != "" {
		fmt.Fprintf(w, " (override: %s)", report.Decision.OverrideRule)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Risk Score: %.4f\n", report.Decision.Risk)
	fmt.Fprintf(w, "Summary: %s\n", report.Summary)

	if report.Conformance != nil {
		fmt.Fprintf(w, "\nSchema Conformance\n")
		fmt.Fprintf(w, "------------------\n")
		if report.Conformance.Valid {
			fmt.Fprintf(w, "Candidate conforms to schema\n")
		} else {
			fmt.Fprintf(w, "%d schema mismatches:\n", len(report.Conformance.Mismatches))
			for _, m := range report.Conformance.Mismatches {
				fmt.Fprintf(w, "  %s: %s\n", m.Path, m.Message)
			}
		}
	}

	if len(report.Decision.TopSignals) > 0 {
		fmt.Fprintf(w, "\nTop Signals\n")
		fmt.Fprintf(w, "-----------\n")
		for _, s := range report.Decision.TopSignals {
			switch s.Kind {
			case "feature":
				fmt.Fprintf(w, "  [feature] %s (contribution %.4f)\n", s.Feature, s.Contribution)
			case "change":
				fmt.Fprintf(w, "  [%s] %s (criticality %.2f)\n", s.ChangeKind, s.Path, s.Contribution)
			}
		}
	}

	if len(report.Changes) > 0 {
		fmt.Fprintf(w, "\nPath-Level Changes\n")
		fmt.Fprintf(w, "------------------\n")
		for i, c := range report.Changes {
			if i == maxListedChanges {
				fmt.Fprintf(w, "  ... and %d more\n", len(report.Changes)-maxListedChanges)
				break
			}
			fmt.Fprintf(w, "  [%s] %s\n", c.Kind, c.Path)
		}
	}

	return nil
}

// renderGitHub emits GitHub Actions workflow annotations.
func renderGitHub(w io.Writer, report *validator.Report) error {
	label := report.Name
	if label == "" {
		label = "validation"
	}

	switch report.Decision.Outcome {
	case policy.Fail:
		fmt.Fprintf(w, "::error::QoE-Guard FAIL for %s: risk %.4f, %s\n", label, report.Decision.Risk, report.Summary)
	case policy.Warn:
		fmt.Fprintf(w, "::warning::QoE-Guard WARN for %s: risk %.4f, %s\n", label, report.Decision.Risk, report.Summary)
	default:
		fmt.Fprintf(w, "::notice::QoE-Guard PASS for %s: risk %.4f, %s\n", label, report.Decision.Risk, report.Summary)
	}

	for _, s := range report.Decision.TopSignals {
		if s.Kind != "change" {
			continue
		}
		fmt.Fprintf(w, "::warning::Critical path change [%s] %s\n", s.ChangeKind, s.Path)
	}

	return nil
}
