package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestScoreCommand(t *testing.T) {
	out, err := run(t, "score", "--ielts", "7.5", "--work", "3", "--motivation", strings.Repeat("x", 401), "--budget", "25000")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 90")
	assert.Contains(t, out, "band: High")
}

func TestScoreCommand_BlankFields(t *testing.T) {
	out, err := run(t, "score")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 0")
	assert.Contains(t, out, "band: Low")
}

func TestRegistryCommands(t *testing.T) {
	out, err := run(t, "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 6 activities")

	out, err = run(t, "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "studybuddy-update-assignment")

	path := filepath.Join(t.TempDir(), "registry.json")
	_, err = run(t, "registry", "update", "--id", "create-submission", "--field", "status", "--value", "verified", "--out", path)
	require.NoError(t, err)

	out, err = run(t, "registry", "list", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "verified")

	_, err = run(t, "registry", "update", "--id", "create-submission", "--field", "status", "--value", "x")
	assert.Error(t, err)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "database:\n  driver: sqlite\n  sqlite:\n    path: " + filepath.Join(dir, "students.db") + "\nlogging:\n  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestMigrateAndExport(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "students.csv")
	_, err = run(t, "--config", cfgPath, "export", "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "id", rows[0][0])
}
