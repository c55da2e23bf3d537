package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/internal/backtest"
	"github.com/rustyeddy/backtester/internal/scenario"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeScenario(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, scenario.Default().SaveToFile(path))
	return path
}

var runIDPattern = regexp.MustCompile(`Run (\w+) recorded`)

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "backtester dev\n", out)
}

func TestScenarioInitAndValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "s.yml")

	out, _, err := execute(t, "scenario", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	assert.FileExists(t, path)

	_, _, err = execute(t, "scenario", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "scenario", "init", "--force", path)
	require.NoError(t, err)

	out, _, err = execute(t, "scenario", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: sample_vol_world_studio1 (2 symbols, 3 strategies")
}

func TestScenarioValidateRejectsBadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scenario_id": "x", "start_ts": "2025-01-02T15:00:00Z", "end_ts": "2025-01-02T14:00:00Z"}`), 0o644))

	_, _, err := execute(t, "scenario", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestRunWritesArtifactsAndSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenario(t, dir)
	artifacts := filepath.Join(dir, "out")

	out, errOut, err := execute(t, "run", "--scenario", path, "--artifacts-dir", artifacts, "--print-summary")
	require.NoError(t, err)

	var summary backtest.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "sample_vol_world_studio1", summary.ScenarioID)
	assert.Equal(t, 26, summary.NumPoints)

	summaryPath := filepath.Join(artifacts, "sample_vol_world_studio1", "summary.json")
	assert.Contains(t, errOut, "Summary written to: "+summaryPath)
	for _, name := range []string{"scenario.json", "equity_curve.json", "trades.json", "summary.json", "diagnostics.txt"} {
		assert.FileExists(t, filepath.Join(artifacts, "sample_vol_world_studio1", name))
	}
}

func TestRunWithoutPrintSummaryKeepsStdoutEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenario(t, dir)

	out, errOut, err := execute(t, "run", "--scenario", path, "--artifacts-dir", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Backtest complete.")
}

func TestRunReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenario(t, dir)

	out, _, err := execute(t, "run", "--scenario", path, "--artifacts-dir", filepath.Join(dir, "out"), "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Backtest Result")
	assert.Contains(t, out, "Scenario:      sample_vol_world_studio1")
	assert.Contains(t, out, "Points:        26")
}

func TestRunRequiresScenario(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario")
}

func TestRunMissingScenarioFile(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "run", "--scenario", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestRunRecordsSQLiteJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeScenario(t, dir)
	db := filepath.Join(dir, "runs.sqlite")

	_, errOut, err := execute(t, "--journal", "sqlite", "--db", db,
		"run", "--scenario", path, "--artifacts-dir", filepath.Join(dir, "out"))
	require.NoError(t, err)

	m := runIDPattern.FindStringSubmatch(errOut)
	require.Len(t, m, 2, errOut)
	runID := m[1]

	out, _, err := execute(t, "--db", db, "journal", "runs", "sample_vol_world_studio1")
	require.NoError(t, err)
	assert.Equal(t, runID, strings.TrimSpace(out))

	out, _, err = execute(t, "--db", db, "journal", "show", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "sample_vol_world_studio1")
	assert.Regexp(t, `num_points\s+26`, out)

	out, _, err = execute(t, "--db", db, "journal", "equity", runID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 27, "header and 26 points")

	out, _, err = execute(t, "--db", db, "journal", "trades", runID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SEQ"))

	_, _, err = execute(t, "--db", db, "journal", "show", "missing")
	require.Error(t, err)
}

func TestRunJournalFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir)
	jdir := filepath.Join(dir, "journal")

	t.Setenv("BACKTESTER_JOURNAL", "csv")
	t.Setenv("BACKTESTER_JOURNAL_DIR", jdir)

	_, errOut, err := execute(t, "run", "--scenario", path, "--artifacts-dir", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "recorded in csv journal")

	for _, name := range []string{"runs.csv", "trades.csv", "equity.csv"} {
		assert.FileExists(t, filepath.Join(jdir, name))
	}
}

func TestUnknownJournalKind(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "--journal", "postgres", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown journal")
}

func TestBadLogLevel(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "chatty", "version"})
	assert.Error(t, cmd.Execute())
}
