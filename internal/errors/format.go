// Package errors provides error formatting for ncluster CLI output.
package errors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// PrintOptions controls error output formatting.
type PrintOptions struct {
	// Verbose enables detailed error output with more context keys and longer tails.
	Verbose bool

	// Tailer provides session log tail lines for command failures.
	// If nil, PrintWithOptions reads the log directly (bounded I/O).
	Tailer func(logPath string, maxLines int) ([]string, error)
}

// Context key whitelist (default mode, in order)
var defaultContextKeys = []string{
	"op",
	"task",
	"job",
	"run",
	"command",
	"exit_status",
	"path",
	"max_wait",
	"session",
	"log",
}

// Additional context keys for verbose mode
var verboseContextKeys = []string{
	"op",
	"task",
	"job",
	"run",
	"command",
	"exit_status",
	"path",
	"max_wait",
	"session",
	"working_dir",
	"scratch_dir",
	"counter",
	"log",
	"hint",
}

// Truncation limits
const (
	defaultMaxLines = 20
	defaultMaxChars = 8 * 1024 // 8 KB
	verboseMaxLines = 100
	verboseMaxChars = 64 * 1024 // 64 KB

	maxValueLen      = 256 // Max chars for single-line context values
	maxExtraValueLen = 128 // Max chars for extra section values
	maxOutputLineLen = 512 // Max chars per line in output blocks
)

// Format formats an error for display without I/O.
// This is a pure function - it never reads files or performs network I/O.
// Returns the formatted string ready for printing.
func Format(err error, opts PrintOptions) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	ne, ok := AsNclusterError(err)
	if !ok {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("error_code: ")
	sb.WriteString(string(ne.Code))
	sb.WriteString("\n")
	sb.WriteString(ne.Msg)
	sb.WriteString("\n")

	contextKeys := defaultContextKeys
	if opts.Verbose {
		contextKeys = verboseContextKeys
	}

	printedKeys := make(map[string]bool)
	wroteBlank := false
	for _, key := range contextKeys {
		if ne.Details == nil {
			continue
		}
		val, ok := ne.Details[key]
		if !ok || val == "" || key == "hint" {
			continue
		}
		if !wroteBlank {
			sb.WriteString("\n")
			wroteBlank = true
		}
		printedKeys[key] = true
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(sanitizeValue(val, maxValueLen))
		sb.WriteString("\n")
	}

	// Captured output is shown as blocks rather than single-line values.
	if ne.Details != nil {
		for _, key := range []string{"stdout", "stderr"} {
			val := strings.TrimRight(ne.Details[key], " \t\r\n")
			if val == "" {
				continue
			}
			printedKeys[key] = true
			lines := strings.Split(val, "\n")
			maxLines := defaultMaxLines
			if opts.Verbose {
				maxLines = verboseMaxLines
			}
			if len(lines) > maxLines {
				lines = lines[len(lines)-maxLines:]
			}
			sb.WriteString("\n")
			sb.WriteString(key)
			sb.WriteString(":\n")
			for _, line := range lines {
				if len(line) > maxOutputLineLen {
					line = line[:maxOutputLineLen] + "…"
				}
				sb.WriteString("  ")
				sb.WriteString(strings.TrimRight(line, " \t\r"))
				sb.WriteString("\n")
			}
		}
	}

	if opts.Verbose && ne.Details != nil {
		var extraKeys []string
		for key := range ne.Details {
			if !printedKeys[key] && key != "hint" {
				extraKeys = append(extraKeys, key)
			}
		}
		if len(extraKeys) > 0 {
			sort.Strings(extraKeys)
			sb.WriteString("\nextra:\n")
			for _, key := range extraKeys {
				val := ne.Details[key]
				if val == "" {
					continue
				}
				sb.WriteString("  ")
				sb.WriteString(key)
				sb.WriteString(": ")
				sb.WriteString(sanitizeValue(val, maxExtraValueLen))
				sb.WriteString("\n")
			}
		}
	}

	if ne.Details != nil {
		if hint, ok := ne.Details["hint"]; ok && hint != "" {
			sb.WriteString("\nhint: ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	for _, try := range deriveTryLines(ne) {
		sb.WriteString("try: ")
		sb.WriteString(try)
		sb.WriteString("\n")
	}

	return sb.String()
}

// PrintWithOptions writes a formatted error to w with the given options.
// For command failures and timeouts that carry a session log path, the tail
// of that log is appended (bounded I/O).
func PrintWithOptions(w io.Writer, err error, opts PrintOptions) {
	if err == nil {
		return
	}

	output := Format(err, opts)

	ne, ok := AsNclusterError(err)
	if ok && hasSessionLog(ne) {
		maxLines := defaultMaxLines
		maxChars := defaultMaxChars
		if opts.Verbose {
			maxLines = verboseMaxLines
			maxChars = verboseMaxChars
		}

		var lines []string
		var tailErr error
		if opts.Tailer != nil {
			lines, tailErr = opts.Tailer(ne.Details["log"], maxLines)
		} else {
			lines, tailErr = readTail(ne.Details["log"], maxLines, maxChars)
		}
		if tailErr == nil && len(lines) > 0 {
			output = insertOutputBlock(output, lines, maxLines)
		}
	}

	_, _ = io.WriteString(w, output)
}

// sanitizeValue sanitizes a value for single-line context output.
// - Trims trailing whitespace first
// - Normalizes CRLF to LF
// - Replaces newlines with literal \n
// - Truncates to maxLen chars
func sanitizeValue(val string, maxLen int) string {
	val = strings.TrimRight(val, " \t\r\n")
	val = strings.ReplaceAll(val, "\r\n", "\n")
	val = strings.ReplaceAll(val, "\n", "\\n")
	if len(val) > maxLen {
		return val[:maxLen] + "…"
	}
	return val
}

// hasSessionLog reports whether a session log tail should be shown.
func hasSessionLog(ne *NclusterError) bool {
	if ne.Code != ECommandFailed && ne.Code != ETimeout {
		return false
	}
	return ne.Details != nil && ne.Details["log"] != ""
}

// readTail reads the last maxLines lines from a file, up to maxChars total.
// Returns the lines (without trailing newlines) and any error.
func readTail(path string, maxLines, maxChars int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := stat.Size()
	if size == 0 {
		return nil, nil
	}

	readSize := int64(maxChars)
	if readSize > size {
		readSize = size
	}

	if _, err := f.Seek(size-readSize, 0); err != nil {
		return nil, err
	}

	var allLines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > maxOutputLineLen {
			line = line[:maxOutputLineLen] + "…"
		}
		line = strings.TrimRight(line, " \t\r")
		allLines = append(allLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(allLines) > maxLines {
		return allLines[len(allLines)-maxLines:], nil
	}
	return allLines, nil
}

// insertOutputBlock inserts the session tail block before the hint line in the formatted output.
func insertOutputBlock(output string, lines []string, maxLines int) string {
	var block strings.Builder
	if len(lines) >= maxLines {
		block.WriteString(fmt.Sprintf("\nsession (last %d lines):\n", len(lines)))
	} else {
		block.WriteString(fmt.Sprintf("\nsession (%d lines):\n", len(lines)))
	}
	for _, line := range lines {
		block.WriteString("  ")
		block.WriteString(line)
		block.WriteString("\n")
	}

	if hintIdx := strings.Index(output, "\nhint: "); hintIdx >= 0 {
		return output[:hintIdx] + block.String() + output[hintIdx:]
	}
	if tryIdx := strings.Index(output, "\ntry: "); tryIdx >= 0 {
		return output[:tryIdx] + block.String() + output[tryIdx:]
	}
	return output + block.String()
}

// deriveTryLines returns actionable suggestions based on error code.
func deriveTryLines(ne *NclusterError) []string {
	if ne == nil {
		return nil
	}

	var lines []string
	switch ne.Code {
	case ESessionNotFound:
		if task := ne.Details["task"]; task != "" {
			lines = append(lines, fmt.Sprintf("ncluster task --name %s", task))
		}
	case ECommandFailed, ETimeout:
		if session := ne.Details["session"]; session != "" {
			lines = append(lines, fmt.Sprintf("tmux a -t %s", session))
		}
	case ETmuxNotInstalled:
		lines = append(lines, "install tmux and make sure it is on PATH")
	}
	return lines
}

// FormatHint formats a hint for output.
// If hint already starts with "hint:", returns as-is.
// Otherwise prepends "hint: ".
func FormatHint(hint string) string {
	if hint == "" {
		return ""
	}
	if strings.HasPrefix(hint, "hint:") {
		return hint
	}
	return "hint: " + hint
}

// GetHint extracts the hint from an error's details, if present.
func GetHint(err error) string {
	ne, ok := AsNclusterError(err)
	if !ok || ne.Details == nil {
		return ""
	}
	return ne.Details["hint"]
}
