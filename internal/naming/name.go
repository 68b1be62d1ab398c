// Package naming provides the deterministic naming conventions for runs, jobs,
// tasks, tmux sessions and scratch directories.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// Separator splits the levels of a task name: "<index>.<job>".
const Separator = "."

// MaxJobSeparators is the number of separators a job name may contain.
const MaxJobSeparators = 1

// sessionUnsafe matches characters tmux does not accept in session names
// (notably '.' and ':' which are target separators).
var sessionUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// DefaultTaskName returns the name used when a caller does not pick one.
func DefaultTaskName(micros int64) string {
	return strconv.FormatInt(micros, 10)
}

// SessionID derives the tmux session identity from a task name.
// "0.train" becomes "0-train".
func SessionID(name string) string {
	return sessionUnsafe.ReplaceAllString(name, "-")
}

// WindowTarget returns the tmux target of the single window in a session.
func WindowTarget(sessionID string) string {
	return sessionID + ":0"
}

// ReverseTaskName reverses the dot-separated components of a task name so
// the most general component comes first: "0.train.exp1" becomes "exp1.train.0".
func ReverseTaskName(name string) string {
	parts := strings.Split(name, Separator)
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, Separator)
}

// ScratchName returns the unique per-generation directory name for a task:
// "<reversed name>.<pid>.<micros>".
func ScratchName(name string, pid int, micros int64) string {
	return fmt.Sprintf("%s.%d.%d", ReverseTaskName(name), pid, micros)
}

// JobTaskName returns the name of the i-th task of a job.
func JobTaskName(index int, job string) string {
	return fmt.Sprintf("%d%s%s", index, Separator, job)
}

// ValidateJobName checks the two-level "index.jobname" convention: a job
// name is non-empty and contains at most one separator.
func ValidateJobName(name string) error {
	if name == "" {
		return errors.New(errors.EInvalidName, "job name must not be empty")
	}
	if n := strings.Count(name, Separator); n > MaxJobSeparators {
		return errors.NewWithDetails(
			errors.EInvalidName,
			fmt.Sprintf("job name has too many %q separators (%d, max %d); tasks are named <index>.<job>", Separator, n, MaxJobSeparators),
			map[string]string{"job": name},
		)
	}
	return nil
}

// ValidateTaskName rejects names that cannot be used as a path component.
func ValidateTaskName(name string) error {
	if name == "" {
		return errors.New(errors.EInvalidName, "task name must not be empty")
	}
	if strings.ContainsAny(name, "/\x00") || strings.TrimSpace(name) != name {
		return errors.NewWithDetails(
			errors.EInvalidName,
			"task name must not contain '/', NUL, or surrounding whitespace",
			map[string]string{"task": name},
		)
	}
	return nil
}
