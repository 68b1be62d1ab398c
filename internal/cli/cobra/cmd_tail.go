package cobra

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
)

func newTailCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "tail [--name <task>] <path>",
		Short: "Follow a file in a task's working dir until interrupted",
		Long: `Follow a file like tail -f, printing each new line as it is written.
Relative paths resolve against the working dir of the newest generation of
--name. A missing file is created empty so tail can start before the writer.
Stops on Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return commands.Tail(ctx, deps, commands.TailOpts{Name: name, Path: args[0]}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "task whose working dir relative paths resolve against")

	return cmd
}
