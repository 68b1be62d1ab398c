// Package backend defines the capability set shared by ncluster backends.
// A backend runs shell commands on named Tasks grouped into Jobs and Runs;
// the local tmux backend lives in internal/local.
package backend

import (
	"context"
	"io"
)

// RunOpts controls a single command dispatch.
type RunOpts struct {
	// Async returns as soon as the command has been sent, without waiting
	// for its exit status.
	Async bool

	// IgnoreErrors downgrades a non-zero exit status to a logged warning.
	IgnoreErrors bool
}

// NoStatus is returned by Run for commands that were skipped or dispatched
// asynchronously.
const NoStatus = -1

// TaskOptions configures MakeTask.
type TaskOptions struct {
	// Name of the task. Empty picks a timestamp.
	Name string

	// RunName groups the task's implicit job. Empty uses the task name.
	RunName string

	// InstallScript is run line by line after the task is provisioned.
	InstallScript string
}

// JobOptions configures MakeJob.
type JobOptions struct {
	Name          string
	NumTasks      int
	RunName       string
	InstallScript string
}

// Task is one addressable command execution context.
type Task interface {
	Name() string
	Job() Job
	RunName() string
	Address() string
	PublicAddress() string
	ConnectInstructions() string

	// Run dispatches command and, unless opts.Async, waits for its exit status.
	Run(ctx context.Context, command string, opts RunOpts) (int, error)
	// RunWithOutput is Run with stdout and stderr captured.
	RunWithOutput(ctx context.Context, command string, opts RunOpts) (stdout, stderr string, err error)

	Upload(ctx context.Context, localPath, remotePath string, dontOverwrite bool) error
	Download(ctx context.Context, remotePath, localPath string) error
	FileRead(path string) (string, error)
	FileWrite(ctx context.Context, path, content string) error
	FileExists(path string) bool
	StreamFile(ctx context.Context, path string, w io.Writer) error
}

// Job is an ordered group of Tasks.
type Job interface {
	Name() string
	Run() Run
	Tasks() []Task
}

// Run is the top-level namespace containing Jobs.
type Run interface {
	Name() string
	Jobs() []Job
}

// Backend constructs Tasks, Jobs and Runs.
type Backend interface {
	MakeTask(ctx context.Context, opts TaskOptions) (Task, error)
	MakeJob(ctx context.Context, opts JobOptions) (Job, error)
	MakeRun(name string) Run
}
