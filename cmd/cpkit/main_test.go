package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("CPKIT_DATA_DIR", filepath.Join(dir, "data"))
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (*app, error) {
	t.Helper()
	a := &app{sig: cancel.New()}
	err := rootCommand(a).Run(context.Background(), append([]string{"cpkit"}, args...))
	return a, err
}

func TestTestsAddAndRemove(t *testing.T) {
	dir := isolatedEnv(t)
	src := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	_, err := run(t, "tests", "add", "--input", "1 2\n", "--output", "3\n", src)
	require.NoError(t, err)
	_, err = run(t, "tests", "add", "--input", "2 2\n", "--output", "4\n", src)
	require.NoError(t, err)

	tests, err := storage.LoadTests(src)
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, "1 2\n", tests[0].Input)
	assert.Equal(t, models.Pending, tests[1].Status)

	_, err = run(t, "tests", "rm", src, "1")
	require.NoError(t, err)
	tests, err = storage.LoadTests(src)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "4\n", tests[0].ExpectedOutput)

	_, err = run(t, "tests", "rm", src, "5")
	assert.Error(t, err)
}

func TestSetupAppliesConfig(t *testing.T) {
	isolatedEnv(t)
	t.Setenv("CPKIT_POLL_INTERVAL_MS", "20")

	a, err := run(t, "--log-level", "debug", "toolchains")
	require.NoError(t, err)
	assert.Equal(t, "debug", a.cfg.LogLevel)
	assert.Equal(t, 20*time.Millisecond, a.driver.PollInterval())
	_, ok := a.registry.Get("cpp")
	assert.True(t, ok)
}

func TestLoadTestsFallsBackToCurrentProblem(t *testing.T) {
	dir := isolatedEnv(t)
	a, err := run(t, "toolchains")
	require.NoError(t, err)

	store, err := a.problems()
	require.NoError(t, err)
	p := models.NewProblem("A. Sum", "Contest", "https://example.com/a")
	p.TimeLimitMs = 500
	p.AddTest("1 2\n", "3\n")
	require.NoError(t, store.Add(&p))

	src := filepath.Join(dir, "a.cpp")
	set, err := a.loadTests(src, "")
	require.NoError(t, err)
	require.NotNil(t, set.problem)
	require.Len(t, set.tests, 1)
	assert.Equal(t, 500*time.Millisecond, set.problem.TimeLimit())

	require.NoError(t, set.save(src))
	reloaded, err := a.problems()
	require.NoError(t, err)
	got, ok := reloaded.Get(p.ID)
	require.True(t, ok)
	require.NotNil(t, got.SourceFile)
	assert.Equal(t, src, *got.SourceFile)
	assert.NotNil(t, got.LastRun)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "1 2 ...", preview("1 2\n3 4\n"))
	assert.Equal(t, "", preview("  \n"))
}

func TestNegativeLimitsRejected(t *testing.T) {
	dir := isolatedEnv(t)
	src := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(src, []byte("int main(){}"), 0o644))

	for _, args := range [][]string{
		{"judge", "--memory-limit=-1", src},
		{"judge", "--time-limit=-5", src},
		{"run", "--test=1", "--memory-limit=-1", src},
		{"judge", "--time-limit=0", src},
	} {
		_, err := run(t, args...)
		require.Error(t, err, "%v", args)
		assert.Contains(t, err.Error(), "--", "%v", args)
	}
}
