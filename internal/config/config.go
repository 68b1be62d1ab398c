// Package config holds the explicit configuration passed to the backend:
// directory roots and the timing of the wait-for-file protocol.
//
// Configuration comes from built-in defaults, then an optional YAML file
// (--config), then environment overrides. Nothing is read from the process
// environment after the backend is constructed.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// Environment variables that override configured roots.
const (
	EnvLogDir     = "NCLUSTER_LOGDIR"
	EnvTaskDir    = "NCLUSTER_TASKDIR"
	EnvScratchDir = "NCLUSTER_SCRATCHDIR"
)

// Defaults.
const (
	DefaultTaskRoot     = "/tmp/ncluster/task"
	DefaultScratchRoot  = "/tmp/ncluster/scratch"
	DefaultMaxWait      = 600 * time.Second
	DefaultPollInterval = 20 * time.Millisecond
)

// Config is the backend configuration.
type Config struct {
	// TaskRoot holds one working directory per task generation.
	TaskRoot string `yaml:"task_root"`

	// ScratchRoot holds one scratch directory per task generation
	// (command text, status sentinels, captured output).
	ScratchRoot string `yaml:"scratch_root"`

	// LogRoot is the run-output root. Per-task event logs and session
	// transcripts are written below <LogRoot>/<run>/<task>/.
	// Defaults to $HOME/ncluster/runs since /tmp may be wiped.
	LogRoot string `yaml:"log_root"`

	// MaxWait bounds how long a synchronous command may run.
	MaxWait time.Duration `yaml:"max_wait"`

	// PollInterval is the sentinel polling period.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PipeSessionOutput archives everything printed in a task's session to
	// <LogRoot>/<run>/<task>/session.log.
	PipeSessionOutput bool `yaml:"pipe_session_output"`
}

// Default returns the built-in configuration for the given home directory.
func Default(homeDir string) Config {
	return Config{
		TaskRoot:          DefaultTaskRoot,
		ScratchRoot:       DefaultScratchRoot,
		LogRoot:           filepath.Join(homeDir, "ncluster", "runs"),
		MaxWait:           DefaultMaxWait,
		PollInterval:      DefaultPollInterval,
		PipeSessionOutput: true,
	}
}

// Load reads a YAML config file on top of base.
// If the file is missing, returns base with found=false.
// Unknown keys and malformed values return E_INVALID_CONFIG.
func Load(path string, base Config) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, false, nil
		}
		return Config{}, false, errors.Wrap(errors.EInvalidConfig, "failed to read config "+path, err)
	}

	cfg, err := Parse(data, base)
	if err != nil {
		return Config{}, false, err
	}
	return cfg, true, nil
}

// Parse decodes YAML data on top of base. Keys absent from data keep the
// values from base.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(errors.EInvalidConfig, "invalid config: "+err.Error(), err)
	}
	return cfg, nil
}

// ApplyEnv overrides roots from the environment. Empty values are ignored.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if v := getenv(EnvLogDir); v != "" {
		c.LogRoot = v
	}
	if v := getenv(EnvTaskDir); v != "" {
		c.TaskRoot = v
	}
	if v := getenv(EnvScratchDir); v != "" {
		c.ScratchRoot = v
	}
	return c
}

// Validate checks that roots are absolute and durations positive.
func (c Config) Validate() error {
	roots := []struct {
		field string
		value string
	}{
		{"task_root", c.TaskRoot},
		{"scratch_root", c.ScratchRoot},
		{"log_root", c.LogRoot},
	}
	for _, r := range roots {
		if r.value == "" {
			return errors.New(errors.EInvalidConfig, "missing required field "+r.field)
		}
		if !filepath.IsAbs(r.value) {
			return errors.NewWithDetails(errors.EInvalidConfig, r.field+" must be an absolute path",
				map[string]string{"path": r.value})
		}
	}
	if c.MaxWait <= 0 {
		return errors.New(errors.EInvalidConfig, "max_wait must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New(errors.EInvalidConfig, "poll_interval must be positive")
	}
	if c.PollInterval > c.MaxWait {
		return errors.New(errors.EInvalidConfig, "poll_interval must not exceed max_wait")
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the optional
// file at path (skipped when path is empty), then the environment.
func Resolve(path, homeDir string, getenv func(string) string) (Config, error) {
	cfg := Default(homeDir)
	if path != "" {
		var found bool
		var err error
		cfg, found, err = Load(path, cfg)
		if err != nil {
			return Config{}, err
		}
		if !found {
			return Config{}, errors.NewWithDetails(errors.EInvalidConfig, "config file not found",
				map[string]string{"path": path})
		}
	}
	cfg = cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
