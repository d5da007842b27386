package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
init_sql: "CREATE TABLE t(a INTEGER)"
steps:
  - run: "INSERT INTO t VALUES ({})"
    args: [7]
    expect:
      changes: 1
  - tx:
      - exec: "DELETE FROM t"
  - journal: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "CREATE TABLE t(a INTEGER)", scenario.InitSQL)
	require.Len(t, scenario.Steps, 3)

	assert.Equal(t, OpRun, scenario.Steps[0].Op())
	assert.Equal(t, []any{7}, scenario.Steps[0].Args)
	require.NotNil(t, scenario.Steps[0].Expect)
	require.NotNil(t, scenario.Steps[0].Expect.Changes)
	assert.Equal(t, int64(1), *scenario.Steps[0].Expect.Changes)

	assert.Equal(t, OpTx, scenario.Steps[1].Op())
	assert.Equal(t, OpExec, scenario.Steps[1].Tx[0].Op())
	assert.Equal(t, OpJournal, scenario.Steps[2].Op())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\nstepz: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "steps:\n  - journal: true\n",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			content: "name: x\n",
			wantErr: "steps list is required",
		},
		{
			name:    "step without operation",
			content: "name: x\nsteps:\n  - args: [1]\n",
			wantErr: "steps[0]: exactly one of",
		},
		{
			name:    "step with two operations",
			content: "name: x\nsteps:\n  - exec: \"SELECT 1\"\n    journal: true\n",
			wantErr: "steps[0]: exactly one of",
		},
		{
			name:    "invalid nested step",
			content: "name: x\nsteps:\n  - tx:\n      - args: [1]\n",
			wantErr: "steps[0].tx[0]",
		},
		{
			name:    "unknown error kind",
			content: "name: x\nsteps:\n  - exec: \"SELECT 1\"\n    expect:\n      error: boom\n",
			wantErr: `unknown error kind "boom"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDir_SortedByFileName(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"template_roundtrip", "tx_commit", "tx_rollback"}, names)
}

func TestLoadDir_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", "name: bad\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadDir_Empty(t *testing.T) {
	scenarios, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}
