// Package tmux provides tmux integration for ncluster.
// This file implements the exec-backed Client using internal/exec.CommandRunner.
package tmux

import (
	"context"
	"fmt"
	"strings"

	"github.com/NielsdaWheelz/ncluster/internal/exec"
)

// maxStderrLen is the maximum stderr length to include in error messages.
const maxStderrLen = 4096

// benignKillErrors are kill-session failures that mean the session is
// already gone.
var benignKillErrors = []string{
	"can't find session",
	"session not found",
	"no server running",
	"error connecting to",
}

// ExecClient is a tmux Client implementation that shells out to tmux
// via internal/exec.CommandRunner.
type ExecClient struct {
	runner exec.CommandRunner
}

// NewExecClient creates a new ExecClient with the given CommandRunner.
func NewExecClient(runner exec.CommandRunner) *ExecClient {
	return &ExecClient{runner: runner}
}

// HasSession implements Client.HasSession.
// Uses: tmux has-session -t <name>
// Exit code 0 = exists, 1 = not exists, other = error.
func (c *ExecClient) HasSession(ctx context.Context, name string) (bool, error) {
	result, err := c.run(ctx, []string{"has-session", "-t", name}, exec.RunOpts{})
	if err != nil {
		return false, err
	}

	switch result.ExitCode {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, c.formatError("has-session", result.ExitCode, result.Stderr)
	}
}

// NewSession implements Client.NewSession.
// Uses: tmux new-session -d -s <name> -n <window> [-c <cwd>]
func (c *ExecClient) NewSession(ctx context.Context, name, window, cwd string) error {
	if name == "" {
		return fmt.Errorf("tmux new-session: session name must not be empty")
	}

	args := []string{"new-session", "-d", "-s", name}
	if window != "" {
		args = append(args, "-n", window)
	}
	if cwd != "" {
		args = append(args, "-c", cwd)
	}
	return c.runChecked(ctx, "new-session", args)
}

// KillSession implements Client.KillSession.
// Uses: tmux kill-session -t <name>
func (c *ExecClient) KillSession(ctx context.Context, name string) error {
	result, err := c.run(ctx, []string{"kill-session", "-t", name}, exec.RunOpts{})
	if err != nil {
		return err
	}
	if result.ExitCode == 0 {
		return nil
	}
	for _, benign := range benignKillErrors {
		if strings.Contains(result.Stderr, benign) {
			return nil
		}
	}
	return c.formatError("kill-session", result.ExitCode, result.Stderr)
}

// SendKeys implements Client.SendKeys.
// Uses: tmux send-keys -t <target> <key1> <key2> ...
func (c *ExecClient) SendKeys(ctx context.Context, target string, keys []Key) error {
	if len(keys) == 0 {
		return fmt.Errorf("tmux send-keys: keys must have at least 1 element")
	}

	args := []string{"send-keys", "-t", target}
	for _, k := range keys {
		args = append(args, string(k))
	}
	return c.runChecked(ctx, "send-keys", args)
}

// SendLiteral implements Client.SendLiteral.
// Uses: tmux send-keys -t <target> -l -- <text>
func (c *ExecClient) SendLiteral(ctx context.Context, target, text string) error {
	return c.runChecked(ctx, "send-keys", []string{"send-keys", "-t", target, "-l", "--", text})
}

// Attach implements Client.Attach.
// Uses: tmux attach -t <name>
func (c *ExecClient) Attach(ctx context.Context, name string) error {
	result, err := c.run(ctx, []string{"attach", "-t", name}, exec.RunOpts{Interactive: true})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return c.formatError("attach", result.ExitCode, result.Stderr)
	}
	return nil
}

// CapturePane implements Client.CapturePane.
// Uses: tmux capture-pane -p -S - -t <target>
// -S - starts at the beginning of the scrollback history, -p prints to stdout.
func (c *ExecClient) CapturePane(ctx context.Context, target string) (string, error) {
	result, err := c.run(ctx, []string{"capture-pane", "-p", "-S", "-", "-t", target}, exec.RunOpts{})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", c.formatError("capture-pane", result.ExitCode, result.Stderr)
	}
	return result.Stdout, nil
}

// PipePane implements Client.PipePane.
// Uses: tmux pipe-pane -o -t <target> <shellCmd>
func (c *ExecClient) PipePane(ctx context.Context, target, shellCmd string) error {
	return c.runChecked(ctx, "pipe-pane", []string{"pipe-pane", "-o", "-t", target, shellCmd})
}

func (c *ExecClient) run(ctx context.Context, args []string, opts exec.RunOpts) (exec.CmdResult, error) {
	return c.runner.Run(ctx, "tmux", args, opts)
}

// runChecked runs a tmux subcommand and converts a non-zero exit into an error.
func (c *ExecClient) runChecked(ctx context.Context, subcmd string, args []string) error {
	result, err := c.run(ctx, args, exec.RunOpts{})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return c.formatError(subcmd, result.ExitCode, result.Stderr)
	}
	return nil
}

// formatError formats a tmux error with subcommand, exit code, and capped stderr.
func (c *ExecClient) formatError(subcmd string, exitCode int, stderr string) error {
	trimmed := strings.TrimSpace(stderr)
	if len(trimmed) > maxStderrLen {
		trimmed = trimmed[:maxStderrLen] + "..."
	}
	if trimmed == "" {
		return fmt.Errorf("tmux %s failed (exit=%d)", subcmd, exitCode)
	}
	return fmt.Errorf("tmux %s failed (exit=%d): %s", subcmd, exitCode, trimmed)
}
