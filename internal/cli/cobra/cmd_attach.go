package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <task>",
		Short: "Attach to a task's tmux session",
		Long: `Attach the terminal to the tmux session of a task.
Detach with the tmux prefix key followed by d. Requires a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return commands.Attach(commandContext(cmd), deps, commands.AttachOpts{Name: args[0]})
		},
	}

	return cmd
}
