package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newKillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill <task>",
		Short: "Kill a task's tmux session (working dir remains)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return commands.Kill(commandContext(cmd), deps, commands.KillOpts{Name: args[0]}, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}
