package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pillars/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with a fresh set of flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ganzhi = [4]string{}
	outputFormat, showAll, jobType, resetStatuses = "markdown", false, "", nil
	dbPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyze_FlagsToJSON(t *testing.T) {
	out, err := execute(t, "analyze", "--year", "甲子", "--month", "己丑", "--day", "丙寅", "--hour", "辛卯", "--format", "json")
	require.NoError(t, err)

	var r reaction.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "甲子 己丑 丙寅 辛卯", r.Chart)
	assert.NotEmpty(t, r.Reactions)
}

func TestAnalyze_FileToMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"year":{"stem":"甲","branch":"子"},"month":{"stem":"丙","branch":"寅"},"day":{"stem":"甲","branch":"辰"},"hour":{"stem":"丁","branch":"卯"}}`), 0o644))

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Chart 甲子 丙寅 甲辰 丁卯")
	assert.Contains(t, out, "Directional bureau")
}

func TestAnalyze_MissingPillars(t *testing.T) {
	_, err := execute(t, "analyze", "--year", "甲子")
	assert.ErrorContains(t, err, "--month, --day, --hour")
}

func TestQueueCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "jobs.db")
	charts := filepath.Join(dir, "charts.json")
	require.NoError(t, os.WriteFile(charts, []byte(`[
		{"year":{"stem":"甲","branch":"子"},"month":{"stem":"己","branch":"丑"},"day":{"stem":"丙","branch":"寅"},"hour":{"stem":"辛","branch":"卯"}},
		{"year":{"stem":"甲","branch":"子"}}
	]`), 0o644))

	out, err := execute(t, "--db", db, "enqueue", charts)
	require.NoError(t, err)
	assert.Contains(t, out, "Enqueued 2 charts")

	out, err = execute(t, "--db", db, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 charts: 1 finished, 1 failed")

	out, err = execute(t, "--db", db, "reset", "--status", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset 1 jobs")

	out, err = execute(t, "--db", db, "status")
	require.NoError(t, err)
	assert.Regexp(t, `pending\s+1`, out)
	assert.Regexp(t, `finished\s+1`, out)

	_, err = execute(t, "--db", db, "reset", "--status", "pending")
	assert.ErrorContains(t, err, `cannot reset jobs in status "pending"`)
}
