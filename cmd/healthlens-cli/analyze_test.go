package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = "date,heart_rate,steps,sleep_hours,water_liters\n" +
	"2025-11-03,62,8000,7.5,2.1\n" +
	"2025-11-04,64,9100,6.8,1.9\n"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	analyzeJSON = false
	configPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestAnalyzeReport verifies the text report lists the summary and insights.
func TestAnalyzeReport(t *testing.T) {
	out, err := runCLI(t, "analyze", writeExport(t, exportCSV))
	require.NoError(t, err)

	assert.Contains(t, out, "=== HealthLens Report ===")
	assert.Contains(t, out, "Records analyzed: 8")
	assert.Contains(t, out, "heart_rate_avg_7d")
	assert.Contains(t, out, "Insights:")
}

// TestAnalyzeJSON verifies --json emits the analysis and the report.
func TestAnalyzeJSON(t *testing.T) {
	out, err := runCLI(t, "analyze", "--json", writeExport(t, exportCSV))
	require.NoError(t, err)

	var got struct {
		Analysis struct {
			Summary map[string]float64 `json:"summary"`
		} `json:"analysis"`
		Report struct {
			HealthScore float64 `json:"health_score"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 63.0, got.Analysis.Summary["heart_rate_avg_7d"])
	assert.Greater(t, got.Report.HealthScore, 0.0)
}

// TestAnalyzeSchemaError verifies a long export without a value column fails.
func TestAnalyzeSchemaError(t *testing.T) {
	_, err := runCLI(t, "analyze", writeExport(t, "user_id,date,metric\nu1,2025-11-03,steps\n"))
	require.Error(t, err)
}

// TestAnalyzeMissingFile verifies a clear error for an unknown path.
func TestAnalyzeMissingFile(t *testing.T) {
	_, err := runCLI(t, "analyze", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

// TestUploadRequiresServer verifies --server is mandatory outside dry-run.
func TestUploadRequiresServer(t *testing.T) {
	uploadServer, uploadDryRun = "", false
	_, err := runCLI(t, "upload", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server")
}

// TestVersion verifies the version subcommand.
func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "healthlens-cli dev\n", out)
}
