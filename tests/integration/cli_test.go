// Integration tests for the record binary: bootstrap a table, save rows by
// convention, and look them up again.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songsDDL = "CREATE TABLE songs (id INTEGER PRIMARY KEY, name TEXT, artist TEXT DEFAULT 'unknown')"

func TestCLI_InitCreatesDatabase(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunRecord("init")
	assert.Contains(t, result.Stdout, "record initialized")

	_, err := os.Stat(filepath.Join(env.DataDir, "record.db"))
	assert.NoError(t, err)
}

func TestCLI_SongScenarios(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunRecord("exec", songsDDL)

	assert.Equal(t, "songs\n", env.MustRunRecord("table", "Song").Stdout)
	assert.Equal(t, "id\nname\nartist\n", env.MustRunRecord("columns", "Song").Stdout)

	assert.Equal(t, "1\n", env.MustRunRecord("save", "Song", "name=Test", "artist=Tester").Stdout)
	assert.Equal(t, "2\n", env.MustRunRecord("save", "Song", "name=Solo").Stdout)

	rows := ParseJSON[[]map[string]any](t, env.MustRunRecord("--json", "find", "Song", "name=Test").Stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Equal(t, "Test", rows[0]["name"])
	assert.Equal(t, "Tester", rows[0]["artist"])

	rows = ParseJSON[[]map[string]any](t, env.MustRunRecord("--json", "find", "Song", "--name", "Solo").Stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, "unknown", rows[0]["artist"], "only name was inserted")
}

func TestCLI_RowsSurviveProcesses(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunRecord("exec", songsDDL)
	env.MustRunRecord("save", "Song", "name=Test")

	out := env.MustRunRecord("find", "Song", "id=1").Stdout
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"1", "Test", "unknown"}, strings.Fields(lines[1]))
}

func TestCLI_ExitCodes(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunRecord("exec", songsDDL)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "unknown property", args: []string{"save", "Song", "tempo=120"}, wantCode: 1, wantErr: "unknown property"},
		{name: "missing table", args: []string{"save", "Ghost", "name=x"}, wantCode: 1, wantErr: "table not found"},
		{name: "unknown lookup column", args: []string{"find", "Song", "tempo=120"}, wantCode: 1, wantErr: "statement"},
		{name: "no predicate", args: []string{"find", "Song"}, wantCode: 1, wantErr: "usage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.RunRecord(tt.args...)
			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Contains(t, result.Stderr, tt.wantErr)
		})
	}
}

func TestCLI_HostileValuesStayData(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunRecord("exec", songsDDL)

	hostile := "x'); DROP TABLE songs; --"
	env.MustRunRecord("save", "Song", "name="+hostile)

	rows := ParseJSON[[]map[string]any](t, env.MustRunRecord("--json", "find", "Song", "--name", hostile).Stdout)
	require.Len(t, rows, 1)
	assert.Equal(t, hostile, rows[0]["name"])
	assert.Equal(t, "id\nname\nartist\n", env.MustRunRecord("columns", "Song").Stdout)
}
