package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes follow the CI gating convention: 0=PASS, 1=WARN, 2=FAIL,
// 3=internal error.
const exitInternalError = 3

var exitCode int

var rootCmd = &cobra.Command{
	Use:   "qoe-guard",
	Short: "API response validation and deployment gating tool",
	Long: `QoE-Guard compares candidate JSON API responses against stored baselines,
scores the detected drift, and issues PASS/WARN/FAIL gating decisions
with ranked evidence for CI/CD integration.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitInternalError)
	}
	os.Exit(exitCode)
}
