package main

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
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func generated(t *testing.T) string {
	t.Helper()
	t.Setenv("DATA_SOURCE", "file")
	t.Setenv("DATA_FILE", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	path := filepath.Join(t.TempDir(), "gtd.csv")
	_, err := run(t, "generate", "--rows", "600", "--seed", "3", "--out", path)
	require.NoError(t, err)
	return path
}

func TestGenerate(t *testing.T) {
	path := generated(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	out, err := run(t, "generate", "--rows", "5", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "iyear")
}

func TestSummary(t *testing.T) {
	path := generated(t)

	out, err := run(t, "--file", path, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Total incidents")
	assert.Contains(t, out, path)
}

func TestAggregate(t *testing.T) {
	path := generated(t)

	out, err := run(t, "--file", path, "aggregate", "--dims", "nkill", "--keys", "region_txt,country_txt", "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "METRIC VALUE")

	_, err = run(t, "--file", path, "aggregate", "--dims", "nvictims")
	assert.Error(t, err)
}

func TestAskAndSample(t *testing.T) {
	path := generated(t)

	out, err := run(t, "--file", path, "ask", "How", "many", "attack", "types", "are", "there?")
	require.NoError(t, err)
	assert.Contains(t, out, "distinct attack types")

	out, err = run(t, "--file", path, "sample", "--n", "4", "--seed", "9")
	require.NoError(t, err)
	again, err := run(t, "--file", path, "sample", "--n", "4", "--seed", "9")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestFileFlagLeavesEnvironment(t *testing.T) {
	path := generated(t)
	t.Setenv("DATA_SOURCE", "postgres")

	_, err := run(t, "--file", path, "summary")
	require.NoError(t, err)
	assert.Equal(t, "postgres", os.Getenv("DATA_SOURCE"))
	assert.Equal(t, "", os.Getenv("DATA_FILE"))
}
