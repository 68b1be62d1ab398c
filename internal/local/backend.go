// Package local implements the ncluster backend on the local machine: every
// Task is a tmux session, and command completion is observed through status
// files written into the task's scratch directory.
package local

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
	"github.com/NielsdaWheelz/ncluster/internal/tmux"
)

// Address is the address of every local task. Local servers listen on
// localhost or on the host's own address; localhost works for both.
const Address = "127.0.0.1"

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Run     = (*Run)(nil)
	_ backend.Job     = (*Job)(nil)
	_ backend.Task    = (*Task)(nil)
)

// Backend constructs local Tasks and owns the Run registry. Jobs and Tasks
// refer to their parents by name; lookups resolve through the registry.
type Backend struct {
	cfg    config.Config
	client tmux.Client
	logger *slog.Logger
	now    func() time.Time
	pid    int

	mu   sync.Mutex
	runs map[string]*Run
}

// New returns a Backend. cfg must be valid (see config.Config.Validate).
// A nil logger uses slog.Default().
func New(cfg config.Config, client tmux.Client, logger *slog.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:    cfg,
		client: client,
		logger: logger,
		now:    time.Now,
		pid:    os.Getpid(),
		runs:   make(map[string]*Run),
	}, nil
}

// Config returns the backend configuration.
func (b *Backend) Config() config.Config { return b.cfg }

// MakeTask implements backend.Backend.
func (b *Backend) MakeTask(ctx context.Context, opts backend.TaskOptions) (backend.Task, error) {
	t, err := b.CreateTask(ctx, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MakeJob implements backend.Backend.
func (b *Backend) MakeJob(ctx context.Context, opts backend.JobOptions) (backend.Job, error) {
	j, err := b.CreateJob(ctx, opts)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// MakeRun implements backend.Backend.
func (b *Backend) MakeRun(name string) backend.Run {
	return b.EnsureRun(name)
}

// CreateTask creates a standalone task. Its session is killed and recreated,
// its directories provisioned, and the install script run line by line.
// The task is registered under a single-task job named after it, in the run
// opts.RunName (the task name if empty).
func (b *Backend) CreateTask(ctx context.Context, opts backend.TaskOptions) (*Task, error) {
	name := opts.Name
	if name == "" {
		name = naming.DefaultTaskName(b.now().UnixMicro())
	}
	if err := naming.ValidateTaskName(name); err != nil {
		return nil, err
	}
	runName := opts.RunName
	if runName == "" {
		runName = name
	}

	t, err := b.newTask(ctx, name, name, runName, opts.InstallScript)
	if err != nil {
		return nil, err
	}

	b.EnsureRun(runName).addJob(&Job{name: name, runName: runName, backend: b, tasks: []*Task{t}})
	return t, nil
}

// CreateJob creates opts.NumTasks tasks named "<i>.<name>", each with its own
// session, grouped into one job in the run opts.RunName (the job name if
// empty). Tasks are created in index order; the first failure aborts.
func (b *Backend) CreateJob(ctx context.Context, opts backend.JobOptions) (*Job, error) {
	if opts.NumTasks <= 0 {
		return nil, errors.NewWithDetails(errors.EUsage,
			"a job needs at least one task",
			map[string]string{"job": opts.Name})
	}
	if err := naming.ValidateJobName(opts.Name); err != nil {
		return nil, err
	}
	runName := opts.RunName
	if runName == "" {
		runName = opts.Name
	}

	job := &Job{name: opts.Name, runName: runName, backend: b}
	for i := 0; i < opts.NumTasks; i++ {
		t, err := b.newTask(ctx, naming.JobTaskName(i, opts.Name), opts.Name, runName, opts.InstallScript)
		if err != nil {
			return nil, err
		}
		job.tasks = append(job.tasks, t)
	}

	b.EnsureRun(runName).addJob(job)
	return job, nil
}

// EnsureRun returns the run registered under name, creating it if needed.
func (b *Backend) EnsureRun(name string) *Run {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r, ok := b.runs[name]; ok {
		return r
	}
	r := &Run{name: name, byName: make(map[string]*Job)}
	b.runs[name] = r
	return r
}

// Run looks up a registered run.
func (b *Backend) Run(name string) (*Run, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.runs[name]
	return r, ok
}

// lookupJob resolves a job through the registry.
func (b *Backend) lookupJob(runName, jobName string) (*Job, bool) {
	r, ok := b.Run(runName)
	if !ok {
		return nil, false
	}
	return r.Job(jobName)
}
