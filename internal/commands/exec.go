package commands

import (
	"context"
	"io"
	"strings"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// ExecOpts holds options for the exec command.
type ExecOpts struct {
	Name              string
	RunName           string
	InstallScriptPath string
	Args              []string
	IgnoreErrors      bool
}

// Exec creates a task, runs one command in it with output capture and copies
// the captured stdout and stderr to the given writers. A failed command makes
// the process exit with the command's own status.
func Exec(ctx context.Context, deps Deps, opts ExecOpts, stdout, stderr io.Writer) error {
	command := strings.TrimSpace(strings.Join(opts.Args, " "))
	if command == "" {
		return errors.New(errors.EUsage, "a command is required")
	}
	script, err := readInstallScript(opts.InstallScriptPath)
	if err != nil {
		return err
	}
	b, err := deps.backend()
	if err != nil {
		return err
	}

	t, err := b.CreateTask(ctx, backend.TaskOptions{
		Name:          opts.Name,
		RunName:       opts.RunName,
		InstallScript: script,
	})
	if err != nil {
		return err
	}

	out, errOut, err := t.RunWithOutput(ctx, command, backend.RunOpts{IgnoreErrors: opts.IgnoreErrors})
	_, _ = io.WriteString(stdout, out)
	_, _ = io.WriteString(stderr, errOut)
	if err != nil {
		if status, ok := errors.ExitStatus(err); ok && status > 0 && status < 256 {
			return errors.WithExitCode(err, status)
		}
		return err
	}
	return nil
}
