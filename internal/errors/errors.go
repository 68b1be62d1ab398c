// Package errors defines the stable error code system for ncluster.
package errors

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Dispatch protocol
	ECommandFailed      Code = "E_COMMAND_FAILED"      // command exited non-zero and errors were not ignored
	ETimeout            Code = "E_TIMEOUT"             // sentinel file did not appear before the deadline
	EUnsupported        Code = "E_UNSUPPORTED"         // operation not available in this backend
	EInvariantViolation Code = "E_INVARIANT_VIOLATION" // programmer error: bad command text, reused sentinel, absolute path

	// Naming and configuration
	EInvalidName   Code = "E_INVALID_NAME"
	EInvalidConfig Code = "E_INVALID_CONFIG"

	// Session management
	ETmuxNotInstalled Code = "E_TMUX_NOT_INSTALLED"
	ETmuxFailed       Code = "E_TMUX_FAILED"
	ESessionNotFound  Code = "E_SESSION_NOT_FOUND"
	ETaskNotFound     Code = "E_TASK_NOT_FOUND"
	ENotInteractive   Code = "E_NOT_INTERACTIVE" // command requires an interactive TTY
)

// NclusterError is the standard error type for ncluster errors.
type NclusterError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *NclusterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *NclusterError) Unwrap() error {
	return e.Cause
}

// ExitCodeError wraps an error with an explicit process exit code.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

// WithExitCode wraps err with a specific process exit code.
func WithExitCode(err error, code int) error {
	return &ExitCodeError{Err: err, Code: code}
}

// New creates a new NclusterError with the given code and message.
func New(code Code, msg string) error {
	return &NclusterError{Code: code, Msg: msg}
}

// NewWithDetails creates a new NclusterError with code, message, and details.
// Details map is defensively copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &NclusterError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new NclusterError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &NclusterError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new NclusterError wrapping an underlying error with details.
// Details map is defensively copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &NclusterError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// CommandFailure reports a dispatched command that exited non-zero.
// stdout and stderr are included only when they were captured.
func CommandFailure(command string, status int, stdout, stderr string) error {
	details := map[string]string{
		"command":     command,
		"exit_status": strconv.Itoa(status),
	}
	if stdout != "" {
		details["stdout"] = stdout
	}
	if stderr != "" {
		details["stderr"] = stderr
	}
	return NewWithDetails(ECommandFailed,
		fmt.Sprintf("command %q returned status %d", command, status), details)
}

// Timeout reports a sentinel file that never appeared.
func Timeout(path string, maxWait time.Duration) error {
	return NewWithDetails(ETimeout,
		fmt.Sprintf("timeout %s exceeded waiting for %s", maxWait, path),
		map[string]string{"path": path, "max_wait": maxWait.String()})
}

// Invariant reports a programmer error that must fail fast.
func Invariant(msg string, details map[string]string) error {
	return NewWithDetails(EInvariantViolation, msg, details)
}

// GetCode extracts the error code from an error, or empty string if not an NclusterError.
func GetCode(err error) Code {
	var ne *NclusterError
	if errors.As(err, &ne) {
		return ne.Code
	}
	return ""
}

// AsNclusterError returns (*NclusterError, true) if err is or wraps an NclusterError.
func AsNclusterError(err error) (*NclusterError, bool) {
	var ne *NclusterError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsCommandFailure reports whether err is an E_COMMAND_FAILED error.
func IsCommandFailure(err error) bool { return GetCode(err) == ECommandFailed }

// IsTimeout reports whether err is an E_TIMEOUT error.
func IsTimeout(err error) bool { return GetCode(err) == ETimeout }

// IsUnsupported reports whether err is an E_UNSUPPORTED error.
func IsUnsupported(err error) bool { return GetCode(err) == EUnsupported }

// IsInvariant reports whether err is an E_INVARIANT_VIOLATION error.
func IsInvariant(err error) bool { return GetCode(err) == EInvariantViolation }

// ExitStatus returns the remote exit status carried by an E_COMMAND_FAILED
// error, or (0, false) if err carries none.
func ExitStatus(err error) (int, bool) {
	ne, ok := AsNclusterError(err)
	if !ok || ne.Code != ECommandFailed || ne.Details == nil {
		return 0, false
	}
	status, convErr := strconv.Atoi(ne.Details["exit_status"])
	if convErr != nil {
		return 0, false
	}
	return status, true
}

// copyDetails returns a defensive copy of the details map, or nil if empty/nil.
func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ne *NclusterError
	if errors.As(err, &ne) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", ne.Code)
		_, _ = fmt.Fprintln(w, ne.Msg)
	} else {
		_, _ = fmt.Fprintln(w, err.Error())
	}
}
