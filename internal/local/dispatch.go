package local

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/events"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
)

// dispatch is one command sent to the session.
type dispatch struct {
	command  string // as given by the caller, comment stripped
	counter  int
	statusFn string
	stdoutFn string // set when output is captured
	stderrFn string
}

// Run dispatches command to the task's session.
//
// Blank and comment-only commands are skipped and return backend.NoStatus.
// Async dispatch returns backend.NoStatus once the command has been sent.
// Otherwise Run waits for the command's exit status; a non-zero status is an
// E_COMMAND_FAILED error unless opts.IgnoreErrors is set, in which case it is
// logged and returned.
func (t *Task) Run(ctx context.Context, command string, opts backend.RunOpts) (int, error) {
	d, ok, err := t.send(ctx, command, opts.Async, false)
	if err != nil || !ok {
		return backend.NoStatus, err
	}
	if opts.Async {
		return backend.NoStatus, nil
	}

	status, err := t.await(ctx, d)
	if err != nil {
		return backend.NoStatus, err
	}
	if status != 0 {
		if !opts.IgnoreErrors {
			return status, t.annotate(errors.CommandFailure(d.command, status, "", ""))
		}
		t.logger.Warn("command failed, ignoring", "command", d.command, "exit_status", status)
	}
	return status, nil
}

// RunWithOutput runs a single-line command with its stdout and stderr
// redirected to scratch files, and returns their contents. Missing capture
// files read as "". Failure handling follows Run; the E_COMMAND_FAILED error
// carries the captured output.
func (t *Task) RunWithOutput(ctx context.Context, command string, opts backend.RunOpts) (string, string, error) {
	if naming.IsBlankOrComment(command) {
		return "", "", nil
	}
	if strings.Contains(strings.TrimSpace(command), "\n") {
		return "", "", t.annotate(errors.Invariant("multi-line commands cannot be captured",
			map[string]string{"command": command}))
	}

	d, ok, err := t.send(ctx, command, opts.Async, true)
	if err != nil || !ok || opts.Async {
		return "", "", err
	}

	status, err := t.await(ctx, d)
	if err != nil {
		return "", "", err
	}
	stdout, err := fs.ReadFileOrEmpty(d.stdoutFn)
	if err != nil {
		return "", "", errors.Wrap(errors.EInternal, "failed to read captured stdout", err)
	}
	stderr, err := fs.ReadFileOrEmpty(d.stderrFn)
	if err != nil {
		return "", "", errors.Wrap(errors.EInternal, "failed to read captured stderr", err)
	}

	if status != 0 {
		if !opts.IgnoreErrors {
			return stdout, stderr, t.annotate(errors.CommandFailure(d.command, status, stdout, stderr))
		}
		t.logger.Warn("command failed, ignoring",
			"command", d.command, "exit_status", status, "stdout", stdout, "stderr", stderr)
	}
	return stdout, stderr, nil
}

// send validates command, allocates its sentinel files and types it into the
// session. ok is false for skipped commands.
func (t *Task) send(ctx context.Context, command string, async, capture bool) (dispatch, bool, error) {
	command = strings.TrimSpace(command)
	if naming.IsBlankOrComment(command) {
		return dispatch{}, false, nil
	}
	command = naming.StripComment(command)
	if naming.HasBackgroundOperator(command) {
		return dispatch{}, false, t.annotate(errors.Invariant(
			fmt.Sprintf("command %q contains a background '&', which breaks status capture", command),
			map[string]string{"command": command}))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	d := dispatch{command: command}
	text := command
	if capture {
		d.stdoutFn = t.scratchFile(t.counter, "stdout")
		d.stderrFn = t.scratchFile(t.counter, "stderr")
		text = fmt.Sprintf("%s > %s 2> %s", command, naming.ShellQuote(d.stdoutFn), naming.ShellQuote(d.stderrFn))
	}

	t.counter++
	d.counter = t.counter
	cmdFn := t.scratchFile(d.counter, "cmd")
	d.statusFn = t.scratchFile(d.counter, "status")
	exists, err := fs.Stat(d.statusFn)
	if err != nil {
		return dispatch{}, false, t.annotate(errors.WrapWithDetails(errors.EInternal,
			"failed to check status file", err, map[string]string{"path": d.statusFn}))
	}
	if exists {
		return dispatch{}, false, t.annotate(errors.Invariant("status file already exists",
			map[string]string{"path": d.statusFn, "counter": strconv.Itoa(d.counter)}))
	}

	if err := os.WriteFile(cmdFn, []byte(text+"\n"), 0644); err != nil {
		return dispatch{}, false, errors.Wrap(errors.EInternal, "failed to write "+cmdFn, err)
	}

	t.events.Record(events.CmdStart, events.CmdStartData(command, d.counter, async))
	if err := t.session.SendKeys(ctx, statusText(text, d.statusFn)); err != nil {
		return dispatch{}, false, t.annotate(err)
	}
	return d, true, nil
}

// statusText appends the exit status publication to text. The status is
// written to a temp file and renamed into place, so the status file is never
// observed partially written.
func statusText(text, statusFn string) string {
	tmp := naming.ShellQuote(statusFn + ".tmp")
	return fmt.Sprintf("%s ; echo $? > %s && mv %s %s", text, tmp, tmp, naming.ShellQuote(statusFn))
}

// await waits for d's status file and parses it.
func (t *Task) await(ctx context.Context, d dispatch) (int, error) {
	start := time.Now()
	status, err := t.waitStatus(ctx, d)

	var code *string
	if err != nil {
		c := string(errors.GetCode(err))
		if c == "" {
			c = err.Error()
		}
		code = &c
	} else if status != 0 {
		c := string(errors.ECommandFailed)
		code = &c
	}
	t.events.Record(events.CmdEnd,
		events.CmdEndData(d.command, d.counter, status, time.Since(start).Milliseconds(), code))
	return status, err
}

func (t *Task) waitStatus(ctx context.Context, d dispatch) (int, error) {
	if err := WaitForFile(ctx, d.statusFn, t.cfg.MaxWait, t.cfg.PollInterval); err != nil {
		if errors.IsTimeout(err) {
			if ne, ok := errors.AsNclusterError(err); ok {
				ne.Details["command"] = d.command
				ne.Details["counter"] = strconv.Itoa(d.counter)
			}
			return backend.NoStatus, t.annotate(err)
		}
		return backend.NoStatus, err
	}
	return t.readStatus(ctx, d.statusFn)
}

// readStatus parses an exit status file. An empty file is re-read once after
// one poll interval.
func (t *Task) readStatus(ctx context.Context, path string) (int, error) {
	text, err := fs.ReadFileOrEmpty(path)
	if err != nil {
		return backend.NoStatus, errors.Wrap(errors.EInternal, "failed to read status file "+path, err)
	}
	if strings.TrimSpace(text) == "" {
		select {
		case <-ctx.Done():
			return backend.NoStatus, ctx.Err()
		case <-time.After(t.cfg.PollInterval):
		}
		if text, err = fs.ReadFileOrEmpty(path); err != nil {
			return backend.NoStatus, errors.Wrap(errors.EInternal, "failed to read status file "+path, err)
		}
	}

	status, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return backend.NoStatus, t.annotate(errors.WrapWithDetails(errors.EInternal,
			"status file does not hold an exit status", err,
			map[string]string{"path": path}))
	}
	return status, nil
}
