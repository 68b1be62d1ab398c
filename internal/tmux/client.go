// Package tmux provides tmux integration for ncluster.
// This file defines the Client interface for testable tmux operations.
package tmux

import "context"

// Key represents a tmux key identifier for send-keys.
type Key string

// Key constants for common keys.
const (
	KeyEnter Key = "Enter"
	KeyCtrlC Key = "C-c"
)

// Client is the interface for tmux operations.
// All methods accept a context for cancellation (no hidden timeouts).
// Implementations must be safe for testing without tmux installed.
type Client interface {
	// HasSession checks if a tmux session exists by name.
	// Returns (true, nil) if session exists (exit code 0).
	// Returns (false, nil) if session does not exist (exit code 1).
	// Returns (false, error) for other exit codes or execution failures.
	HasSession(ctx context.Context, name string) (bool, error)

	// NewSession creates a new detached tmux session running the default
	// shell, with a single window named window.
	// cwd may be empty to inherit the caller's directory.
	NewSession(ctx context.Context, name, window, cwd string) error

	// KillSession kills a tmux session.
	// A missing session or a stopped server is not an error.
	KillSession(ctx context.Context, name string) error

	// SendKeys sends named keys (Enter, C-c, ...) to a target.
	// keys must have at least 1 element.
	SendKeys(ctx context.Context, target string, keys []Key) error

	// SendLiteral types text into a target verbatim (send-keys -l), without
	// interpreting key names. It does not press Enter.
	SendLiteral(ctx context.Context, target, text string) error

	// Attach attaches the current terminal to a session.
	// This blocks until the user detaches.
	Attach(ctx context.Context, name string) error

	// CapturePane returns the full scrollback of a target pane.
	CapturePane(ctx context.Context, target string) (string, error)

	// PipePane pipes everything printed in a target pane into shellCmd.
	// Only opens a pipe if none is active (-o).
	PipePane(ctx context.Context, target, shellCmd string) error
}
