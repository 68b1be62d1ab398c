// Package tmux provides tmux integration for ncluster.
// This file implements ANSI escape code stripping for captured scrollback.
package tmux

import (
	"regexp"
	"strings"
)

// ansiEscapeRegex matches ANSI escape sequences including:
// - CSI sequences: ESC [ ... (parameters) ... (intermediate bytes) ... final byte
// - OSC sequences: ESC ] ... ST (where ST is ESC \ or BEL)
// - Single-character escapes: ESC followed by a single character
// - Other escape sequences
// - Lone ESC at end of string
var ansiEscapeRegex = regexp.MustCompile(
	// CSI sequences: ESC [ (params) (intermediate) final
	`\x1b\[[0-9;:<=>?]*[ -/]*[@-~]` +
		// OSC sequences: ESC ] ... (ST = ESC \ or BEL)
		`|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)?` +
		// Single-char escapes (ESC followed by printable char)
		`|\x1b[@-_]` +
		// DCS, PM, APC sequences
		`|\x1b[PX^_][^\x1b]*\x1b\\` +
		// Remaining ESC sequences (catch-all for ESC + any char)
		`|\x1b.` +
		// Lone ESC at end of string or partial CSI
		`|\x1b\[?$`,
)

// StripANSI removes ANSI escape sequences from s. It never panics; input
// without escapes is returned unchanged.
func StripANSI(s string) string {
	if s == "" {
		return s
	}
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// StripANSILines strips escapes from captured pane output, normalizes CRLF,
// trims trailing blanks from each line and drops trailing empty lines
// (tmux pads the visible pane with them).
func StripANSILines(s string) string {
	s = strings.ReplaceAll(StripANSI(s), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
