package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newJobCmd() *cobra.Command {
	var opts commands.JobOpts

	cmd := &cobra.Command{
		Use:   "job",
		Short: "Create a job of N tasks named <index>.<name>",
		Long: `Create a job: --tasks tasks named "0.<name>", "1.<name>", ..., each with its
own tmux session. A job name may contain at most one ".".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return commands.Job(commandContext(cmd), deps, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "job name (required)")
	cmd.Flags().IntVar(&opts.NumTasks, "tasks", 1, "number of tasks")
	cmd.Flags().StringVar(&opts.RunName, "run", "", "run to register the job under (default: job name)")
	cmd.Flags().StringVar(&opts.InstallScriptPath, "install-script", "", "file of commands to run on every task")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
