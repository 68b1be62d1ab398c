// Package tty provides TTY detection helpers for ncluster commands.
package tty

import (
	"os"

	"golang.org/x/term"
)

// IsTTY returns true if the given file is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive returns true if both stdin and stdout are TTYs.
// This is the condition required to attach to a tmux session.
func IsInteractive() bool {
	return IsTTY(os.Stdin) && IsTTY(os.Stdout)
}
