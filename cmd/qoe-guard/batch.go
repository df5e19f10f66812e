package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/qoe-guard/pkg/policy"
	"github.com/wonderfulspam/qoe-guard/pkg/renderer"
	"github.com/wonderfulspam/qoe-guard/pkg/validator"
)

var batchCmd = &cobra.Command{
	Use:   "batch [manifest]",
	Short: "Validate many baseline/candidate pairs from a manifest",
	Long: `Run one validation per endpoint listed in a YAML manifest, using a bounded
worker pool. The manifest lists named baseline/candidate file pairs:

  pairs:
    - name: playback
      baseline: baselines/playback.json
      candidate: candidates/playback.json

The exit code reflects the worst decision across all pairs.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchConfig      string
	batchFormat      string
	batchConcurrency int
)

func init() {
	batchCmd.Flags().StringVar(&batchConfig, "config", "", "Path to a .qoe-guard.yml configuration file")
	batchCmd.Flags().StringVar(&batchFormat, "format", "text", "Output format: text, json, github")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "Maximum comparisons running at once")
	rootCmd.AddCommand(batchCmd)
}

type batchManifest struct {
	Pairs []batchPair `yaml:"pairs"`
}

type batchPair struct {
	Name      string `yaml:"name"`
	Baseline  string `yaml:"baseline"`
	Candidate string `yaml:"candidate"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest batchManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", args[0], err)
	}
	if len(manifest.Pairs) == 0 {
		return fmt.Errorf("manifest %s lists no pairs", args[0])
	}

	cfg, err := loadConfigOrDefault(batchConfig)
	if err != nil {
		return err
	}
	v, err := validator.New(cfg)
	if err != nil {
		return err
	}

	pairs := make([]validator.Pair, 0, len(manifest.Pairs))
	for i, p := range manifest.Pairs {
		if p.Name == "" {
			return fmt.Errorf("pair %d in manifest has no name", i)
		}
		baseline, err := loadJSONFile(p.Baseline)
		if err != nil {
			return err
		}
		candidate, err := loadJSONFile(p.Candidate)
		if err != nil {
			return err
		}
		pairs = append(pairs, validator.Pair{Name: p.Name, Baseline: baseline, Candidate: candidate})
	}

	reports, err := v.RunPairs(cmd.Context(), pairs, batchConcurrency)
	if err != nil {
		return err
	}

	r, err := renderer.New(batchFormat)
	if err != nil {
		return err
	}
	if err := r.RenderAll(cmd.OutOrStdout(), reports); err != nil {
		return err
	}

	worst := policy.Pass
	for _, report := range reports {
		if report.Decision.Outcome.ExitCode() > worst.ExitCode() {
			worst = report.Decision.Outcome
		}
	}
	exitCode = worst.ExitCode()
	return nil
}
