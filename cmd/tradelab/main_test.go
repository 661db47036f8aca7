package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI in-process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tradelab version "+version+"\n", out)
}

func TestImport_RequiresInput(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := run(t, "import")
	assert.Error(t, err)
}

func TestReport_FixturesInMemory(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()

	out, err := run(t, "--fixtures", "report", "--analyze", "--check", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Report generated successfully")

	for _, name := range []string{reportFile, closedTradesFile, strategiesFile, campaignsFile, equityCurveFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	md, err := os.ReadFile(filepath.Join(dir, reportFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| Net P&L | $1,030.20 |")
	assert.Contains(t, string(md), "**All checks passed.**")

	trades, err := os.ReadFile(filepath.Join(dir, closedTradesFile))
	require.NoError(t, err)
	// header + 7 trades + 2 cash rows
	assert.Equal(t, 10, strings.Count(string(trades), "\n"))

	equity, err := os.ReadFile(filepath.Join(dir, equityCurveFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(equity)), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasSuffix(lines[9], ",1030.20"), lines[9])
}

func TestCheck_EmptyJournalFails(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "check")
	assert.ErrorIs(t, err, errChecksFailed)
	assert.Contains(t, out, "Executions stored")
	assert.Contains(t, out, "journal has no executions")
}

func TestSQLite_PersistsAcrossRuns(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "db", "journal.db"))
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "--fixtures", "import")
	require.NoError(t, err)

	out, err := run(t, "analyze", "--workers", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "7 closed trades, 1 open positions")
	assert.Contains(t, out, "net P&L 1030.20")

	dir := t.TempDir()
	_, err = run(t, "report", "--symbols", "MSFT", "--output-dir", dir)
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dir, reportFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "Filter: symbols MSFT")
	assert.Contains(t, string(md), "| Net P&L | $139.20 |")
}

func TestVerify_StaleAfterImport(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "journal.db"))
	t.Setenv("LOG_LEVEL", "error")

	// imported but never analyzed: every replayed trade is unstored
	_, err := run(t, "--fixtures", "import")
	require.NoError(t, err)

	out, err := run(t, "verify")
	assert.ErrorIs(t, err, errStale)
	assert.Contains(t, out, "0/0 stored trades match, 0 diverge, 9 unstored")

	_, err = run(t, "analyze")
	require.NoError(t, err)

	out, err = run(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "9/9 stored trades match")
}

func TestReportOptions_Filter(t *testing.T) {
	f, err := reportOptions{from: "2024-03-01", to: "2024-04-01", symbols: []string{"SPY"}}.filter()
	require.NoError(t, err)
	assert.Equal(t, 2024, f.From.Year())
	assert.Equal(t, []string{"SPY"}, f.Roots)

	_, err = reportOptions{from: "2024-04-01", to: "2024-03-01"}.filter()
	assert.Error(t, err)

	_, err = reportOptions{from: "March"}.filter()
	assert.Error(t, err)
}
