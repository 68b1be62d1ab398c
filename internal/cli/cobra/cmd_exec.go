package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newExecCmd() *cobra.Command {
	var opts commands.ExecOpts

	cmd := &cobra.Command{
		Use:   "exec --name <task> -- <command>...",
		Short: "Create a task and run one command in it, printing its output",
		Long: `Create a task and run one command in it with stdout and stderr captured.
The captured output is printed when the command finishes. If the command
fails, ncluster exits with the command's own exit status.

The command words are joined with spaces and typed into the session as a
single line, so shell syntax works as usual. A trailing "&" is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			opts.Args = args
			return commands.Exec(commandContext(cmd), deps, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "task name (default: current time in microseconds)")
	cmd.Flags().StringVar(&opts.RunName, "run", "", "run to register the task under (default: task name)")
	cmd.Flags().StringVar(&opts.InstallScriptPath, "install-script", "", "file of commands to run before the command")
	cmd.Flags().BoolVar(&opts.IgnoreErrors, "ignore-errors", false, "exit 0 even if the command fails")
	cmd.Flags().SetInterspersed(false)

	return cmd
}
