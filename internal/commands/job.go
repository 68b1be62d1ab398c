package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
)

// JobOpts holds options for the job command.
type JobOpts struct {
	Name              string
	NumTasks          int
	RunName           string
	InstallScriptPath string
}

// Job creates a job of NumTasks tasks and prints one line per task.
func Job(ctx context.Context, deps Deps, opts JobOpts, stdout io.Writer) error {
	script, err := readInstallScript(opts.InstallScriptPath)
	if err != nil {
		return err
	}
	b, err := deps.backend()
	if err != nil {
		return err
	}

	job, err := b.CreateJob(ctx, backend.JobOptions{
		Name:          opts.Name,
		NumTasks:      opts.NumTasks,
		RunName:       opts.RunName,
		InstallScript: script,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TASK\tRUN\tCONNECT")
	for _, t := range job.Tasks() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name(), t.RunName(), t.ConnectInstructions())
	}
	return tw.Flush()
}
