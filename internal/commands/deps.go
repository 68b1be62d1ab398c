// Package commands implements ncluster CLI commands.
package commands

import (
	"log/slog"
	"os"

	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/local"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
	"github.com/NielsdaWheelz/ncluster/internal/tmux"
	"github.com/NielsdaWheelz/ncluster/internal/tty"
)

// Deps are the collaborators shared by all commands.
type Deps struct {
	Config config.Config
	Tmux   tmux.Client
	Logger *slog.Logger

	// IsInteractive reports whether a terminal is attached. Defaults to
	// tty.IsInteractive.
	IsInteractive func() bool
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) backend() (*local.Backend, error) {
	return local.New(d.Config, d.Tmux, d.logger())
}

func (d Deps) interactive() bool {
	if d.IsInteractive == nil {
		return tty.IsInteractive()
	}
	return d.IsInteractive()
}

// session returns the handle for the session of the task called name.
func (d Deps) session(name string) (*tmux.Session, error) {
	if name == "" {
		return nil, errors.New(errors.EUsage, "task name is required")
	}
	if err := naming.ValidateTaskName(name); err != nil {
		return nil, err
	}
	return tmux.NewSession(d.Tmux, naming.SessionID(name), d.logger()), nil
}

// readInstallScript returns the contents of path, or "" when path is empty.
func readInstallScript(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WrapWithDetails(errors.EUsage, "cannot read install script", err,
			map[string]string{"path": path})
	}
	return string(data), nil
}
