package environment_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/cpkit/internal/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG dirs and the working directory into a temp dir so no
// real user config or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := environment.Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.TimeLimit())
	assert.Equal(t, 30*time.Second, cfg.CompileTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, "127.0.0.1:10043", cfg.Companion.Addr)
	assert.Equal(t, filepath.Join(dir, "data", "cpkit", "problems"), cfg.ProblemsDir())
	assert.Empty(t, cfg.Source)
}

func TestLoadLayers(t *testing.T) {
	dir := isolate(t)

	cfgPath := filepath.Join(dir, "config", "cpkit", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level = "debug"
time_limit_ms = 1000
memory_limit_mb = 128

[nats]
url = "nats://file:4222"
subject = "from.file"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CPKIT_SQS_QUEUE_URL=https://sqs.example/q\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CPKIT_SQS_QUEUE_URL") })
	t.Setenv("CPKIT_TIME_LIMIT_MS", "3000")
	t.Setenv("CPKIT_NATS_SUBJECT", "from.env")

	cfg, err := environment.Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.TimeLimit(), "env beats file")
	assert.EqualValues(t, 128*1024, cfg.MemoryLimitKiB())
	assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
	assert.Equal(t, "from.env", cfg.NATS.Subject)
	assert.Equal(t, "https://sqs.example/q", cfg.SQS.QueueURL)
	assert.Equal(t, []string{cfgPath, ".env"}, cfg.Source)
}

func TestLoadExplicitMissing(t *testing.T) {
	dir := isolate(t)
	_, err := environment.Load(filepath.Join(dir, "nope.toml"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	dir := isolate(t)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`log_level = "loud"`), 0o644))
	_, err := environment.Load(bad)
	require.ErrorContains(t, err, "log level")

	t.Setenv("CPKIT_POLL_INTERVAL_MS", "soon")
	_, err = environment.Load("")
	require.ErrorContains(t, err, "CPKIT_POLL_INTERVAL_MS")
}
