package cobra

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
)

func newCompletionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.
By default, prints the script to stdout.
Use --output to write directly to a file.

Arguments:
  shell    target shell: bash, zsh or fish

Installation:

  bash (with bash-completion package):
    ncluster completion bash > ~/.local/share/bash-completion/completions/ncluster

  zsh (with fpath):
    ncluster completion zsh > ~/.zsh/completions/_ncluster
    # ensure ~/.zsh/completions is in fpath before compinit

  fish:
    ncluster completion fish > ~/.config/fish/completions/ncluster.fish

After installation, restart your shell.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := args[0]
			rootCmd := cmd.Root()

			var buf bytes.Buffer
			var genErr error
			switch shell {
			case "bash":
				genErr = rootCmd.GenBashCompletionV2(&buf, true)
			case "zsh":
				genErr = rootCmd.GenZshCompletion(&buf)
			case "fish":
				genErr = rootCmd.GenFishCompletion(&buf, true)
			default:
				return errors.New(errors.EUsage, fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", shell))
			}
			if genErr != nil {
				return errors.Wrap(errors.EInternal, "failed to generate completion script", genErr)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			dir := filepath.Dir(output)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to create directory %s", dir), err)
			}
			if err := fs.WriteFileAtomic(output, buf.Bytes(), 0644); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to write %s", output), err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s completion to %s\n", shell, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to this file")

	return cmd
}
