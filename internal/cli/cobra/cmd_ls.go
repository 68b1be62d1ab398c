package cobra

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newLSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks and whether their sessions are alive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return commands.LS(commandContext(cmd), deps, time.Now(), cmd.OutOrStdout())
		},
	}

	return cmd
}
