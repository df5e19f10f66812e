package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with the given arguments and captures
// its combined output. The gating exit code is reset before every run because
// the command mutates package state.
func executeCommand(t *testing.T, args ...string) (string, int, error) {
	t.Helper()
	exitCode = 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), exitCode, err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateCommand(t *testing.T) {
	tempDir := t.TempDir()
	baseline := writeFile(t, tempDir, "baseline.json",
		`{"playback":{"url":"https://cdn/x.m3u8","bitrate":8000},"meta":{"region":"eu"}}`)
	identical := writeFile(t, tempDir, "identical.json",
		`{"playback":{"url":"https://cdn/x.m3u8","bitrate":8000},"meta":{"region":"eu"}}`)
	broken := writeFile(t, tempDir, "broken.json",
		`{"playback":{"url":"https://cdn/x.m3u8","bitrate":"8000"},"meta":{"region":"eu"}}`)

	t.Run("identical payloads pass", func(t *testing.T) {
		output, code, err := executeCommand(t, "validate", "--baseline", baseline, "--candidate", identical)
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}
		if code != 0 {
			t.Errorf("Expected exit code 0, got %d", code)
		}
		if !strings.Contains(output, "Decision: PASS") {
			t.Errorf("Expected PASS decision in output, got:\n%s", output)
		}
		if !strings.Contains(output, "No differences found") {
			t.Errorf("Expected clean summary, got:\n%s", output)
		}
	})

	t.Run("type change on critical path is reported", func(t *testing.T) {
		output, _, err := executeCommand(t, "validate", "--baseline", baseline, "--candidate", broken)
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}
		if !strings.Contains(output, "$.playback.bitrate") {
			t.Errorf("Expected changed path in output, got:\n%s", output)
		}
		if !strings.Contains(output, "type_changed") {
			t.Errorf("Expected type_changed in output, got:\n%s", output)
		}
	})

	t.Run("json format parses", func(t *testing.T) {
		output, _, err := executeCommand(t, "validate",
			"--baseline", baseline, "--candidate", broken, "--format", "json")
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}

		var report map[string]interface{}
		if err := json.Unmarshal([]byte(output), &report); err != nil {
			t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
		}
		if report["decision"] == nil {
			t.Error("Expected 'decision' in JSON output")
		}
		if report["changes"] == nil {
			t.Error("Expected 'changes' in JSON output")
		}
	})

	t.Run("missing baseline file", func(t *testing.T) {
		output, _, err := executeCommand(t, "validate",
			"--baseline", filepath.Join(tempDir, "nope.json"), "--candidate", identical)
		if err == nil {
			t.Errorf("Expected error for missing file. Output: %s", output)
		}
	})

	t.Run("malformed candidate file", func(t *testing.T) {
		bad := writeFile(t, tempDir, "bad.json", `{"playback":`)
		_, _, err := executeCommand(t, "validate", "--baseline", baseline, "--candidate", bad)
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := executeCommand(t, "validate",
			"--baseline", baseline, "--candidate", identical, "--format", "xml")
		if err == nil {
			t.Error("Expected error for unsupported format")
		}
		validateFormat = "text"
	})

	t.Run("schema conformance check", func(t *testing.T) {
		schema := writeFile(t, tempDir, "schema.json", `{
  "type": "object",
  "properties": {
    "playback": {
      "type": "object",
      "properties": {"bitrate": {"type": "number"}}
    }
  }
}`)
		output, _, err := executeCommand(t, "validate",
			"--baseline", baseline, "--candidate", broken, "--schema", schema)
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}
		if !strings.Contains(output, "Schema Conformance") {
			t.Errorf("Expected conformance section, got:\n%s", output)
		}
		if !strings.Contains(output, "schema mismatches") {
			t.Errorf("Expected mismatch listing for wrong bitrate type, got:\n%s", output)
		}
		validateSchema = ""
	})
}

func TestValidateCommand_StructureBreakFails(t *testing.T) {
	tempDir := t.TempDir()
	baseline := writeFile(t, tempDir, "baseline.json",
		`{"playback":{"url":"u","bitrate":8000,"drm":{"type":"widevine"},"cdn":"a","codec":"h264","fps":50}}`)
	candidate := writeFile(t, tempDir, "candidate.json",
		`{"playback":{"url":"u","bitrate":"8000"}}`)

	output, code, err := executeCommand(t, "validate", "--baseline", baseline, "--candidate", candidate)
	if err != nil {
		t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
	}
	if code != 2 {
		t.Errorf("Expected exit code 2 for FAIL, got %d", code)
	}
	if !strings.Contains(output, "Decision: FAIL (override: critical-structure-break)") {
		t.Errorf("Expected override FAIL in output, got:\n%s", output)
	}
}

func TestBatchCommand(t *testing.T) {
	tempDir := t.TempDir()
	baseline := writeFile(t, tempDir, "baseline.json", `{"playback":{"bitrate":8000}}`)
	same := writeFile(t, tempDir, "same.json", `{"playback":{"bitrate":8000}}`)
	drifted := writeFile(t, tempDir, "drifted.json", `{"playback":{"bitrate":6500}}`)

	manifest := writeFile(t, tempDir, "manifest.yml", `
pairs:
  - name: stable-endpoint
    baseline: `+baseline+`
    candidate: `+same+`
  - name: drifted-endpoint
    baseline: `+baseline+`
    candidate: `+drifted+`
`)

	t.Run("reports in manifest order", func(t *testing.T) {
		output, _, err := executeCommand(t, "batch", manifest)
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}

		stable := strings.Index(output, "Endpoint: stable-endpoint")
		drifted := strings.Index(output, "Endpoint: drifted-endpoint")
		if stable == -1 || drifted == -1 {
			t.Fatalf("Expected both endpoints in output, got:\n%s", output)
		}
		if stable > drifted {
			t.Error("Expected reports in manifest order")
		}
	})

	t.Run("json format is one array", func(t *testing.T) {
		output, _, err := executeCommand(t, "batch", manifest, "--format", "json")
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}

		var reports []map[string]interface{}
		if err := json.Unmarshal([]byte(output), &reports); err != nil {
			t.Fatalf("Output is not a JSON array: %v\n%s", err, output)
		}
		if len(reports) != 2 {
			t.Errorf("Expected 2 reports, got %d", len(reports))
		}
		batchFormat = "text"
	})

	t.Run("empty manifest", func(t *testing.T) {
		empty := writeFile(t, tempDir, "empty.yml", "pairs: []")
		_, _, err := executeCommand(t, "batch", empty)
		if err == nil {
			t.Error("Expected error for manifest without pairs")
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, _, err := executeCommand(t, "batch", filepath.Join(tempDir, "nope.yml"))
		if err == nil {
			t.Error("Expected error for missing manifest")
		}
	})
}

func TestConfigCommands(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("init creates a valid file", func(t *testing.T) {
		path := filepath.Join(tempDir, "generated.yml")
		output, _, err := executeCommand(t, "config", "init", path)
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}
		if !strings.Contains(output, "Configuration file created") {
			t.Errorf("Expected creation message, got:\n%s", output)
		}

		// The generated file must round-trip through config validate.
		output, _, err = executeCommand(t, "config", "validate", path)
		if err != nil {
			t.Fatalf("Generated config failed validation: %v. Output: %s", err, output)
		}
		if !strings.Contains(output, "Configuration is valid") {
			t.Errorf("Expected validation success, got:\n%s", output)
		}
		if !strings.Contains(output, "Criticality Rules: 7") {
			t.Errorf("Expected 7 criticality rules, got:\n%s", output)
		}
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		path := writeFile(t, tempDir, "existing.yml", "version: \"1.0\"\n")
		_, _, err := executeCommand(t, "config", "init", path)
		if err == nil {
			t.Error("Expected error when target file exists")
		}
	})

	t.Run("validate rejects bad config", func(t *testing.T) {
		path := writeFile(t, tempDir, "bad.yml", "policy:\n  warn_threshold: 0.9\n  fail_threshold: 0.5\n")
		_, _, err := executeCommand(t, "config", "validate", path)
		if err == nil {
			t.Error("Expected error for inverted thresholds")
		}
	})

	t.Run("show prints defaults", func(t *testing.T) {
		output, _, err := executeCommand(t, "config", "show")
		if err != nil {
			t.Fatalf("Expected no error, got: %v. Output: %s", err, output)
		}
		for _, want := range []string{"strategy: logistic", "warn_threshold: 0.45", "$.playback"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected %q in defaults, got:\n%s", want, output)
			}
		}
	})
}
