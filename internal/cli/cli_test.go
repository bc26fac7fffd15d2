package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/record/internal/paths"
	"github.com/mesh-intelligence/record/internal/sqlite"
	"github.com/mesh-intelligence/record/pkg/types"
)

const songsDDL = "CREATE TABLE songs (id INTEGER PRIMARY KEY, name TEXT, artist TEXT DEFAULT 'unknown')"

// testEnv provides isolated config and data directories.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// cmdResult holds the output of one in-process command run.
type cmdResult struct {
	stdout string
	stderr string
	err    error
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	all := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	return runRoot(all...)
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	res := e.run(args...)
	require.NoError(e.t, res.err, "record %v\nstderr: %s", args, res.stderr)
	return res.stdout
}

func runRoot(args ...string) cmdResult {
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "record v")
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("init")
	assert.Contains(t, out, filepath.Join(env.dataDir, sqlite.DBFileName))
	_, err := os.Stat(filepath.Join(env.dataDir, sqlite.DBFileName))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "data_dir: "+env.dataDir)

	env.mustRun("init")
	again, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, data, again, "init does not rewrite an existing config")
}

func TestConfigDataDir(t *testing.T) {
	env := newTestEnv(t)
	fromConfig := filepath.Join(t.TempDir(), "configured")
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt),
		[]byte("backend: sqlite\ndata_dir: "+fromConfig+"\n"), 0o644))

	res := runRoot("--config-dir", env.configDir, "exec", songsDDL)
	require.NoError(t, res.err, res.stderr)

	_, err := os.Stat(filepath.Join(fromConfig, sqlite.DBFileName))
	assert.NoError(t, err, "data_dir from config.yaml is used when no flag is given")
}

func TestConfigUnknownBackend(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, configFileExt),
		[]byte("backend: postgres\n"), 0o644))

	res := env.run("columns", "Song")
	require.ErrorIs(t, res.err, types.ErrBackendUnknown)
	assert.Equal(t, exitSysError, exitCode(res.err))
}

func TestTable(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, "songs\n", env.mustRun("table", "Song"))
	assert.Equal(t, "people\n", env.mustRun("table", "Person"))

	out := env.mustRun("--json", "table", "Song")
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"type": "Song", "table": "songs"}, got)
}

func TestColumns(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", songsDDL)

	assert.Equal(t, "id\nname\nartist\n", env.mustRun("columns", "Song"))
	assert.Empty(t, env.mustRun("columns", "Ghost"), "a missing table has no columns")
}

func TestSaveAndFind(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", songsDDL)

	assert.Equal(t, "1\n", env.mustRun("save", "Song", "name=Test", "artist=Tester"))
	assert.Equal(t, "2\n", env.mustRun("save", "Song", "name=Solo"))
	assert.Equal(t, "3\n", env.mustRun("save", "Song", "name=Duet", "artist=null"))

	out := env.mustRun("find", "Song", "name=Test")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"id", "name", "artist"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Test", "Tester"}, strings.Fields(lines[1]))

	out = env.mustRun("find", "Song", "--name", "Solo", "--json")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "unknown", rows[0]["artist"], "absent column keeps its default")

	out = env.mustRun("find", "Song", "id=3", "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["artist"], "null is written as NULL")

	assert.Empty(t, env.mustRun("find", "Song", "name=Nobody"))
}

func TestSaveJSON(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", songsDDL)

	out := env.mustRun("--json", "save", "Song", "name=Test")
	var got map[string]int64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(1), got["id"])
}

func TestVerboseLogsStatements(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", songsDDL)

	res := env.run("--verbose", "save", "Song", "name=Solo")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "INSERT INTO songs (name) VALUES (?)")
	assert.Contains(t, res.stderr, "last_insert_rowid()")
}

func TestCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", songsDDL)

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		wantCode int
	}{
		{name: "unknown property", args: []string{"save", "Song", "tempo=120"}, wantErr: types.ErrUnknownProperty, wantCode: exitUserError},
		{name: "missing table on save", args: []string{"save", "Ghost", "name=x"}, wantErr: types.ErrTableNotFound, wantCode: exitUserError},
		{name: "id already set", args: []string{"save", "Song", "id=5", "name=x"}, wantErr: types.ErrAlreadyPersisted, wantCode: exitUserError},
		{name: "malformed pair", args: []string{"save", "Song", "name"}, wantErr: errUsage, wantCode: exitUserError},
		{name: "unknown column on find", args: []string{"find", "Song", "tempo=120"}, wantErr: types.ErrStatement, wantCode: exitUserError},
		{name: "unsafe key on find", args: []string{"find", "Song", "1=1"}, wantErr: types.ErrInvalidIdentifier, wantCode: exitUserError},
		{name: "find needs a predicate", args: []string{"find", "Song"}, wantErr: errUsage, wantCode: exitUserError},
		{name: "find takes one predicate form", args: []string{"find", "Song", "name=x", "--name", "y"}, wantErr: errUsage, wantCode: exitUserError},
		{name: "exec needs SQL", args: []string{"exec"}, wantErr: errUsage, wantCode: exitUserError},
		{name: "bad SQL", args: []string{"exec", "CREATE TABLE"}, wantErr: types.ErrStatement, wantCode: exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(tt.args...)
			require.ErrorIs(t, res.err, tt.wantErr)
			assert.Equal(t, tt.wantCode, exitCode(res.err))
		})
	}
}

func TestExecFile(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(file, []byte(songsDDL+";\nCREATE TABLE artists (id INTEGER PRIMARY KEY, name TEXT);"), 0o644))

	env.mustRun("exec", "--file", file)
	assert.Equal(t, "id\nname\n", env.mustRun("columns", "Artist"))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{raw: "Test", want: "Test"},
		{raw: "", want: ""},
		{raw: "null", want: nil},
		{raw: "true", want: true},
		{raw: "42", want: int64(42)},
		{raw: "2.5", want: 2.5},
		{raw: `"42"`, want: "42"},
		{raw: "[1,2]", want: "[1,2]"},
		{raw: "1 2", want: "1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(types.ErrUnknownProperty))
	assert.Equal(t, exitUserError, exitCode(types.ErrAlreadyPersisted))
	assert.Equal(t, exitUserError, exitCode(types.ErrInvalidEntity))
	assert.Equal(t, exitSysError, exitCode(types.ErrSchema))
	assert.Equal(t, exitSysError, exitCode(errors.New("disk on fire")))
}
