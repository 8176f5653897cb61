package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestExecQueryTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, "--db", path, "exec", "CREATE TABLE t (name TEXT, n INTEGER, score REAL)")
	require.NoError(t, err)

	out, err := run(t, "--db", path, "exec", "INSERT INTO t VALUES (?, ?, ?)", "Ann", "3", "1.5")
	require.NoError(t, err)
	assert.Equal(t, "rows affected: 1, last insert id: 1\n", out)

	out, err = run(t, "--db", path, "query", "SELECT name, n, score FROM t")
	require.NoError(t, err)
	assert.Equal(t, "name  n  score\nAnn   3  1.5\n", out)

	out, err = run(t, "--db", path, "query", "SELECT * FROM t WHERE n = 99")
	require.NoError(t, err)
	assert.Equal(t, "(no rows)\n", out)

	out, err = run(t, "--db", path, "tables")
	require.NoError(t, err)
	assert.Equal(t, "t\n", out)
}

func TestQuery_BadSQL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	_, err := run(t, "--db", path, "query", "SELEC 1")
	assert.Error(t, err)
}

func TestOpen_BadLogLevel(t *testing.T) {
	_, err := run(t, "--db", filepath.Join(t.TempDir(), "cli.db"), "--log-level", "loud", "tables")
	assert.Error(t, err)
}

func TestGen(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "models.go")
	require.NoError(t, os.WriteFile(src, []byte("package models\n\ntype Person struct {\n\tName string\n}\n"), 0o644))

	out, err := run(t, "gen", src)
	require.NoError(t, err)
	assert.Contains(t, out, "models_records.go (1 records)")

	got, err := os.ReadFile(filepath.Join(dir, "models_records.go"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "func (r Person) RecordFields() []record.Field {")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version()+"\n", out)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(42), parseValue("42"))
	assert.Equal(t, 1.5, parseValue("1.5"))
	assert.Nil(t, parseValue("null"))
	assert.Equal(t, "Ann", parseValue("Ann"))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "NULL", formatCell(nil))
	assert.Equal(t, "x'0102'", formatCell([]byte{1, 2}))
	assert.Equal(t, "7", formatCell(int64(7)))
}
