// Package environment loads cpkit configuration from defaults, a TOML file,
// an optional .env file and CPKIT_* environment variables, in that order.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/cpkit/internal/xdg"
)

const (
	AppName    = "cpkit"
	envPrefix  = "CPKIT_"
	configName = "config.toml"
)

type Config struct {
	LogLevel string `toml:"log_level"`

	// TimeLimitMs and MemoryLimitMB apply to ad-hoc runs. Judging a stored
	// problem uses its own limits unless overridden on the command line.
	TimeLimitMs      int64 `toml:"time_limit_ms"`
	MemoryLimitMB    int64 `toml:"memory_limit_mb"`
	CompileTimeoutMs int64 `toml:"compile_timeout_ms"`
	PollIntervalMs   int64 `toml:"poll_interval_ms"`

	WorkDir        string `toml:"work_dir"`
	DataDir        string `toml:"data_dir"`
	ToolchainsFile string `toml:"toolchains_file"`

	Companion CompanionConfig `toml:"companion"`
	NATS      NATSConfig      `toml:"nats"`
	SQS       SQSConfig       `toml:"sqs"`

	// Source lists the files that contributed, for diagnostics.
	Source []string `toml:"-"`
}

type CompanionConfig struct {
	Addr string `toml:"addr"`
}

type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

type SQSConfig struct {
	QueueURL string `toml:"queue_url"`
	Region   string `toml:"region"`
}

func Defaults() Config {
	dirs := xdg.New(AppName)
	return Config{
		LogLevel:         "info",
		TimeLimitMs:      2000,
		CompileTimeoutMs: 30000,
		PollIntervalMs:   50,
		DataDir:          dirs.DataDir(),
		Companion:        CompanionConfig{Addr: "127.0.0.1:10043"},
		NATS:             NATSConfig{Subject: "cpkit.progress"},
		SQS:              SQSConfig{Region: "eu-central-1"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/cpkit/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.New(AppName).ConfigDir(), configName)
}

// Load builds the configuration. An explicit path must exist; the default
// path and .env file are optional.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.Source = append(cfg.Source, path)
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := godotenv.Load(); err == nil {
		cfg.Source = append(cfg.Source, ".env")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":       &c.LogLevel,
		"WORK_DIR":        &c.WorkDir,
		"DATA_DIR":        &c.DataDir,
		"TOOLCHAINS_FILE": &c.ToolchainsFile,
		"COMPANION_ADDR":  &c.Companion.Addr,
		"NATS_URL":        &c.NATS.URL,
		"NATS_SUBJECT":    &c.NATS.Subject,
		"SQS_QUEUE_URL":   &c.SQS.QueueURL,
		"SQS_REGION":      &c.SQS.Region,
	}
	for k, dst := range strs {
		if v, ok := lookup(envPrefix + k); ok {
			*dst = v
		}
	}

	ints := map[string]*int64{
		"TIME_LIMIT_MS":      &c.TimeLimitMs,
		"MEMORY_LIMIT_MB":    &c.MemoryLimitMB,
		"COMPILE_TIMEOUT_MS": &c.CompileTimeoutMs,
		"POLL_INTERVAL_MS":   &c.PollIntervalMs,
	}
	for k, dst := range ints {
		v, ok := lookup(envPrefix + k)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s%s=%q: %w", envPrefix, k, v, err)
		}
		*dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.TimeLimitMs <= 0 {
		return fmt.Errorf("time limit must be positive, got %dms", c.TimeLimitMs)
	}
	if c.MemoryLimitMB < 0 {
		return fmt.Errorf("memory limit must not be negative")
	}
	if c.CompileTimeoutMs <= 0 {
		return fmt.Errorf("compile timeout must be positive")
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

func (c *Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMs) * time.Millisecond
}

func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) MemoryLimitKiB() uint64 {
	return uint64(c.MemoryLimitMB) * 1024
}

func (c *Config) ProblemsDir() string {
	return filepath.Join(c.DataDir, "problems")
}
