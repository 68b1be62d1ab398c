// Package testutil holds test doubles shared by ncluster package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/config"
)

// UnsetNclusterEnv clears environment variables that override configured roots.
func UnsetNclusterEnv() error {
	for _, name := range []string{config.EnvLogDir, config.EnvTaskDir, config.EnvScratchDir} {
		if err := os.Unsetenv(name); err != nil {
			return fmt.Errorf("unset %s: %w", name, err)
		}
	}
	return nil
}

// Config returns a configuration rooted in a fresh temp dir, with a short
// poll interval.
func Config(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default(root)
	cfg.TaskRoot = filepath.Join(root, "task")
	cfg.ScratchRoot = filepath.Join(root, "scratch")
	cfg.LogRoot = filepath.Join(root, "runs")
	cfg.MaxWait = 10 * time.Second
	cfg.PollInterval = 5 * time.Millisecond
	return cfg
}

// LogWriter routes log output through t.Log.
type LogWriter struct{ T *testing.T }

func (w LogWriter) Write(p []byte) (int, error) {
	w.T.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
