package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/local"
)

// TaskOpts holds options for the task command.
type TaskOpts struct {
	Name              string
	RunName           string
	InstallScriptPath string
}

// Task creates (or recreates) a task and prints how to reach it.
func Task(ctx context.Context, deps Deps, opts TaskOpts, stdout io.Writer) error {
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
	printTask(stdout, t)
	return nil
}

func printTask(w io.Writer, t *local.Task) {
	_, _ = fmt.Fprintf(w, "task:        %s\n", t.Name())
	_, _ = fmt.Fprintf(w, "run:         %s\n", t.RunName())
	_, _ = fmt.Fprintf(w, "session:     %s\n", t.Session().ID())
	_, _ = fmt.Fprintf(w, "working_dir: %s\n", t.WorkingDir())
	_, _ = fmt.Fprintf(w, "log_dir:     %s\n", t.LogDir())
	_, _ = fmt.Fprintf(w, "connect:     %s\n", t.ConnectInstructions())
}
