package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/events"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
	"github.com/NielsdaWheelz/ncluster/internal/tmux"
	"github.com/NielsdaWheelz/ncluster/internal/version"
)

// Files written below a task's log directory.
const (
	EventsFile     = "events.jsonl"
	SessionLogFile = "session.log"
)

// Task is one tmux session plus a working directory and a scratch directory.
// Commands are typed into the session; each one is followed by a write of its
// exit status to a sentinel file named after the command counter.
type Task struct {
	name    string
	jobName string
	runName string
	backend *Backend

	cfg        config.Config
	session    *tmux.Session
	workingDir string
	scratchDir string
	logDir     string
	events     *events.Recorder
	logger     *slog.Logger

	// mu serializes dispatch so counter order matches the order commands
	// reach the session.
	mu      sync.Mutex
	counter int
}

// newTask kills and recreates the session for name, provisions the task's
// directories and runs the install script. Any failure aborts construction.
func (b *Backend) newTask(ctx context.Context, name, jobName, runName, installScript string) (*Task, error) {
	dirName := naming.ScratchName(name, b.pid, b.now().UnixMicro())
	logDir := filepath.Join(b.cfg.LogRoot, runName, name)
	logger := b.logger.With("task", name)

	t := &Task{
		name:       name,
		jobName:    jobName,
		runName:    runName,
		backend:    b,
		cfg:        b.cfg,
		session:    tmux.NewSession(b.client, naming.SessionID(name), logger),
		workingDir: filepath.Join(b.cfg.TaskRoot, dirName),
		scratchDir: filepath.Join(b.cfg.ScratchRoot, dirName),
		logDir:     logDir,
		events:     events.NewRecorder(filepath.Join(logDir, EventsFile), runName, jobName, name, logger),
		logger:     logger,
	}

	if err := t.provision(); err != nil {
		return nil, err
	}

	logger.Info("killing and recreating session", "session", t.session.ID())
	if err := t.session.Create(ctx, t.workingDir); err != nil {
		return nil, err
	}
	if b.cfg.PipeSessionOutput {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logger.Warn("cannot create log dir, session output not archived", "log_dir", logDir, "error", err)
		} else if err := t.session.PipeOutput(ctx, t.SessionLog()); err != nil {
			logger.Warn("session output not archived", "error", err)
		}
	}

	data := events.TaskCreatedData(t.session.ID(), t.workingDir, t.scratchDir)
	data["version"] = version.UserAgent()
	t.events.Record(events.TaskCreated, data)

	if _, err := t.Run(ctx, "cd "+naming.ShellQuote(t.workingDir), backend.RunOpts{}); err != nil {
		return nil, err
	}
	for _, line := range strings.Split(installScript, "\n") {
		if _, err := t.Run(ctx, line, backend.RunOpts{}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// provision creates the working directory and wipes and recreates the
// scratch directory.
func (t *Task) provision() error {
	t.logger.Debug("creating task dir", "working_dir", t.workingDir)
	if err := os.MkdirAll(t.workingDir, 0755); err != nil {
		return errors.Wrap(errors.EInternal, "failed to create working dir "+t.workingDir, err)
	}

	t.logger.Debug("creating scratch dir", "scratch_dir", t.scratchDir)
	if err := os.MkdirAll(t.cfg.ScratchRoot, 0755); err != nil {
		return errors.Wrap(errors.EInternal, "failed to create scratch root "+t.cfg.ScratchRoot, err)
	}
	if err := fs.RemoveUnder(t.scratchDir, t.cfg.ScratchRoot); err != nil {
		return errors.Wrap(errors.EInternal, "failed to wipe scratch dir "+t.scratchDir, err)
	}
	if err := os.MkdirAll(t.scratchDir, 0755); err != nil {
		return errors.Wrap(errors.EInternal, "failed to create scratch dir "+t.scratchDir, err)
	}
	return nil
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// JobName returns the name of the task's job.
func (t *Task) JobName() string { return t.jobName }

// RunName returns the name of the task's run.
func (t *Task) RunName() string { return t.runName }

// Job resolves the task's job through the backend registry. It is nil while
// the task is still being constructed.
func (t *Task) Job() backend.Job {
	j, ok := t.backend.lookupJob(t.runName, t.jobName)
	if !ok {
		return nil
	}
	return j
}

// Address returns the address other tasks use to reach this one.
func (t *Task) Address() string { return Address }

// PublicAddress returns the externally reachable address.
func (t *Task) PublicAddress() string { return Address }

// ConnectInstructions returns the command that attaches to the task's session.
func (t *Task) ConnectInstructions() string { return t.session.ConnectInstructions() }

// Session returns the task's tmux session handle.
func (t *Task) Session() *tmux.Session { return t.session }

// WorkingDir returns the task's working directory.
func (t *Task) WorkingDir() string { return t.workingDir }

// ScratchDir returns the task's scratch directory.
func (t *Task) ScratchDir() string { return t.scratchDir }

// LogDir returns the directory holding the task's event log and session log.
func (t *Task) LogDir() string { return t.logDir }

// SessionLog returns the path of the archived session output.
func (t *Task) SessionLog() string { return filepath.Join(t.logDir, SessionLogFile) }

// Counter returns the number of commands dispatched so far.
func (t *Task) Counter() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

// scratchFile returns the path of a per-command scratch file: "<n>.<ext>".
func (t *Task) scratchFile(n int, ext string) string {
	return filepath.Join(t.scratchDir, fmt.Sprintf("%d.%s", n, ext))
}

// annotate adds the task's identity to a coded error raised on its behalf.
func (t *Task) annotate(err error) error {
	ne, ok := errors.AsNclusterError(err)
	if !ok {
		return err
	}
	if ne.Details == nil {
		ne.Details = make(map[string]string)
	}
	set := func(k, v string) {
		if _, exists := ne.Details[k]; !exists && v != "" {
			ne.Details[k] = v
		}
	}
	set("task", t.name)
	set("job", t.jobName)
	set("run", t.runName)
	set("session", t.session.ID())
	set("working_dir", t.workingDir)
	set("scratch_dir", t.scratchDir)
	if t.cfg.PipeSessionOutput {
		set("log", t.SessionLog())
	}
	return err
}
