package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/qoe-guard/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage QoE-Guard configuration",
	Long:  `Manage QoE-Guard configuration files, including initialization and validation.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Generate a default configuration file",
	Long: `Generate a QoE-Guard configuration file with the default criticality
profiles, scoring weights and gating policy. If no file is specified,
creates .qoe-guard.yml in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Long:  `Validate a QoE-Guard configuration file for correctness.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective default configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

const exampleConfig = `# QoE-Guard Configuration File
# Controls criticality profiles, scoring weights and the gating policy.

version: "1.0"

# Ordered path-prefix criticality rules; the first matching prefix wins.
# Weights are in [0,1] and rank evidence in reports.
criticality:
  - pattern: "$.playback"
    weight: 1.0
  - pattern: "$.drm"
    weight: 0.95
  - pattern: "$.entitlement"
    weight: 0.95
  - pattern: "$.manifest"
    weight: 0.95
  - pattern: "$.license"
    weight: 0.9
  - pattern: "$.ads"
    weight: 0.85
  - pattern: "$.auth"
    weight: 0.8

scoring:
  # Strategy: logistic (linear weights + sigmoid) or tree (fixed decision tree)
  strategy: logistic
  weights:
    bias: -1.2
    added_fields: 0.05
    removed_fields: 0.1
    type_changes: 0.14
    value_changes: 0.04
    numeric_delta_sum: 0.06
    numeric_delta_max: 0.16
    array_len_changes: 0.07
    critical_changes: 0.18

policy:
  # Decision bands are inclusive at the lower bound:
  # [0,warn)=PASS, [warn,fail)=WARN, [fail,1]=FAIL
  warn_threshold: 0.45
  fail_threshold: 0.72
  # How many ranked signals to attach to each decision
  top_signals: 5
  # Override rules force an outcome regardless of the numeric risk.
  # Conditions within a rule are AND-combined; rules evaluate in order.
  overrides:
    - name: critical-structure-break
      outcome: FAIL
      when:
        - feature: critical_changes
          op: ">="
          value: 3
        - feature: type_changes
          op: ">="
          value: 1
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	outputFile := ".qoe-guard.yml"
	if len(args) > 0 {
		outputFile = args[0]
	}

	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("configuration file %s already exists", outputFile)
	}

	if err := os.WriteFile(outputFile, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nYou can now:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "1. Edit the file to tune criticality, weights and thresholds\n")
	fmt.Fprintf(cmd.OutOrStdout(), "2. Use it with: qoe-guard validate --config=%s --baseline ... --candidate ...\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "3. Validate it with: qoe-guard config validate %s\n", outputFile)

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid\n\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Summary:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Version: %s\n", cfg.Version)
	fmt.Fprintf(cmd.OutOrStdout(), "  Criticality Rules: %d\n", len(cfg.Criticality))
	fmt.Fprintf(cmd.OutOrStdout(), "  Scoring Strategy: %s\n", cfg.Scoring.Strategy)
	fmt.Fprintf(cmd.OutOrStdout(), "  Warn Threshold: %.2f\n", cfg.Policy.WarnThreshold)
	fmt.Fprintf(cmd.OutOrStdout(), "  Fail Threshold: %.2f\n", cfg.Policy.FailThreshold)
	fmt.Fprintf(cmd.OutOrStdout(), "  Override Rules: %d\n", len(cfg.Policy.Overrides))

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
