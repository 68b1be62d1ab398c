package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newTaskCmd() *cobra.Command {
	var opts commands.TaskOpts

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create a task (kills any previous session with the same name)",
		Long: `Create a task: a fresh tmux session with its own working and scratch
directories. Any existing session with the same name is killed first.

The install script, if given, is run line by line in the new session; blank
lines and comments are skipped and the first failing line aborts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return commands.Task(commandContext(cmd), deps, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "task name (default: current time in microseconds)")
	cmd.Flags().StringVar(&opts.RunName, "run", "", "run to register the task under (default: task name)")
	cmd.Flags().StringVar(&opts.InstallScriptPath, "install-script", "", "file of commands to run after creation")

	return cmd
}
