// Package cobra provides the Cobra-based CLI command tree for ncluster.
package cobra

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NielsdaWheelz/ncluster/internal/commands"
	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/exec"
	"github.com/NielsdaWheelz/ncluster/internal/tmux"
	"github.com/NielsdaWheelz/ncluster/internal/version"
)

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	Verbose    bool
	ConfigPath string
}

// globalOpts stores the parsed global options for access by subcommands.
var globalOpts GlobalOpts

// GetGlobalOpts returns the parsed global options.
func GetGlobalOpts() GlobalOpts {
	return globalOpts
}

// NewRootCmd creates the root cobra command for ncluster.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ncluster",
		Short: "Run shell commands on named tmux-backed tasks",
		Long: `ncluster - run shell commands on named tmux-backed tasks

Each task is a tmux session with its own working directory. Commands are typed
into the session and their exit status is collected through status files, so
a task can be driven like a remote machine and watched live with tmux attach.
Tasks are grouped into jobs ("<index>.<job>") and jobs into runs.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // We handle error printing in main.go
		SilenceUsage:  true, // We handle usage printing manually
	}

	rootCmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false, "debug logging and detailed error context")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigPath, "config", "", "path to a YAML config file")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	rootCmd.AddCommand(
		newTaskCmd(),
		newJobCmd(),
		newExecCmd(),
		newAttachCmd(),
		newCaptureCmd(),
		newKillCmd(),
		newLSCmd(),
		newTailCmd(),
		newCompletionCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// normalizeFlagName accepts underscores in flag names: --install_script is
// --install-script.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// NewLogger builds the CLI logger: text on w, warnings only unless verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newDeps resolves configuration and builds the real tmux client.
func newDeps(cmd *cobra.Command) (commands.Deps, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return commands.Deps{}, errors.Wrap(errors.EInternal, "failed to get home directory", err)
	}
	cfg, err := config.Resolve(globalOpts.ConfigPath, homeDir, os.Getenv)
	if err != nil {
		return commands.Deps{}, err
	}

	runner := exec.NewRealRunner()
	if _, err := runner.LookPath("tmux"); err != nil {
		return commands.Deps{}, errors.Wrap(errors.ETmuxNotInstalled, "tmux not found on PATH", err)
	}

	logger := NewLogger(cmd.ErrOrStderr(), globalOpts.Verbose)
	slog.SetDefault(logger)
	return commands.Deps{
		Config: cfg,
		Tmux:   tmux.NewExecClient(runner),
		Logger: logger,
	}, nil
}

// commandContext returns the command's context, or Background if unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
