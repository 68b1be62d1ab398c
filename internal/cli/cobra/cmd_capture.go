package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newCaptureCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "capture <task>",
		Short: "Print the scrollback of a task's session",
		Long: `Print everything in the scrollback of a task's tmux session.
Terminal escape sequences are stripped unless --raw is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			opts := commands.CaptureOpts{Name: args[0], Raw: raw}
			return commands.Capture(commandContext(cmd), deps, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "keep terminal escape sequences")

	return cmd
}
