// Package exec provides a testable seam over os/exec.
// All external programs (tmux, cp) go through CommandRunner so tests can
// substitute a fake.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	osexec "os/exec"
)

// RunOpts controls how a command is executed.
type RunOpts struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the parent environment when non-empty.
	Env []string

	// Interactive connects the child to this process's stdin/stdout/stderr.
	// Stdout and Stderr in the result are empty when set.
	Interactive bool
}

// CmdResult is the outcome of a command that started successfully.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs external commands.
//
// Run returns a non-nil error only when the command could not be run at all
// (binary missing, context canceled). A non-zero exit is reported through
// CmdResult.ExitCode with a nil error.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error)
	LookPath(file string) (string, error)
}

// RealRunner implements CommandRunner with os/exec.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run implements CommandRunner.Run.
func (r *RealRunner) Run(ctx context.Context, name string, args []string, opts RunOpts) (CmdResult, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	if opts.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := CmdResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	result.ExitCode = -1
	return result, err
}

// LookPath implements CommandRunner.LookPath.
func (r *RealRunner) LookPath(file string) (string, error) {
	return osexec.LookPath(file)
}

// IsNotFound reports whether err means the program binary is not on PATH.
func IsNotFound(err error) bool {
	return errors.Is(err, osexec.ErrNotFound)
}
