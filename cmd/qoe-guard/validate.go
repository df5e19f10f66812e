package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/qoe-guard/pkg/config"
	"github.com/wonderfulspam/qoe-guard/pkg/conformance"
	"github.com/wonderfulspam/qoe-guard/pkg/parser"
	"github.com/wonderfulspam/qoe-guard/pkg/renderer"
	"github.com/wonderfulspam/qoe-guard/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a candidate JSON response against a baseline",
	Long: `Compare a candidate JSON response against a stored baseline, score the
differences, and emit a PASS/WARN/FAIL decision. The process exit code
reflects the decision (0=PASS, 1=WARN, 2=FAIL, 3=internal error).`,
	RunE: runValidate,
}

var (
	validateBaseline  string
	validateCandidate string
	validateConfig    string
	validateFormat    string
	validateSchema    string
)

func init() {
	validateCmd.Flags().StringVar(&validateBaseline, "baseline", "", "Path to the baseline JSON file (required)")
	validateCmd.Flags().StringVar(&validateCandidate, "candidate", "", "Path to the candidate JSON file (required)")
	validateCmd.Flags().StringVar(&validateConfig, "config", "", "Path to a .qoe-guard.yml configuration file")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format: text, json, github")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Optional JSON Schema to check the candidate against")
	validateCmd.MarkFlagRequired("baseline")
	validateCmd.MarkFlagRequired("candidate")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefault(validateConfig)
	if err != nil {
		return err
	}

	baseline, err := loadJSONFile(validateBaseline)
	if err != nil {
		return err
	}
	candidate, err := loadJSONFile(validateCandidate)
	if err != nil {
		return err
	}

	v, err := validator.New(cfg)
	if err != nil {
		return err
	}
	report := v.Run(baseline, candidate)

	if validateSchema != "" {
		schemaJSON, err := os.ReadFile(validateSchema)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		checker, err := conformance.NewValidator(validateSchema, schemaJSON)
		if err != nil {
			return err
		}
		result := checker.Validate(candidate)
		report.Conformance = &result
	}

	r, err := renderer.New(validateFormat)
	if err != nil {
		return err
	}
	if err := r.Render(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	exitCode = report.Decision.Outcome.ExitCode()
	return nil
}

func loadConfigOrDefault(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadJSONFile(path string) (parser.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parser.Value{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	v, err := parser.Parse(data)
	if err != nil {
		return parser.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
