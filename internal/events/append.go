// Package events provides per-task command event logging for ncluster.
// Events are stored in append-only JSONL files under the run log directory.
package events

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the version of the Event wire format.
const SchemaVersion = "1.0"

// Event names.
const (
	TaskCreated = "task_created"
	CmdStart    = "cmd_start"
	CmdEnd      = "cmd_end"
	Upload      = "upload"
)

// Event represents a single event in events.jsonl.
// This is the public contract for the events file format.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	Timestamp     string         `json:"timestamp"` // RFC3339Nano
	Run           string         `json:"run"`
	Job           string         `json:"job"`
	Task          string         `json:"task"`
	Event         string         `json:"event"`
	Data          map[string]any `json:"data,omitempty"`
}

// AppendEvent appends a single event to the events.jsonl file.
// The file is created lazily if it doesn't exist.
// Each event is written as a single JSON line followed by newline.
//
// Best-effort: errors are returned but callers should typically ignore them
// and continue with the main operation.
func AppendEvent(path string, e Event) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// Recorder appends events for one task. Failures are logged at debug level
// and otherwise ignored. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	path   string
	base   Event
	now    func() time.Time
	logger *slog.Logger
}

// NewRecorder returns a Recorder writing to path. An empty path disables
// recording.
func NewRecorder(path, run, job, task string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		path:   path,
		base:   Event{SchemaVersion: SchemaVersion, Run: run, Job: job, Task: task},
		now:    time.Now,
		logger: logger,
	}
}

// Path returns the events file path.
func (r *Recorder) Path() string { return r.path }

// Record appends one event.
func (r *Recorder) Record(event string, data map[string]any) {
	if r == nil || r.path == "" {
		return
	}
	e := r.base
	e.Event = event
	e.Data = data

	r.mu.Lock()
	defer r.mu.Unlock()
	e.Timestamp = r.now().UTC().Format(time.RFC3339Nano)
	if err := AppendEvent(r.path, e); err != nil {
		r.logger.Debug("event append failed", "path", r.path, "event", event, "error", err)
	}
}

// TaskCreatedData returns the data map for a task_created event.
func TaskCreatedData(session, workingDir, scratchDir string) map[string]any {
	return map[string]any{
		"session":     session,
		"working_dir": workingDir,
		"scratch_dir": scratchDir,
	}
}

// CmdStartData returns the data map for a cmd_start event.
func CmdStartData(command string, counter int, async bool) map[string]any {
	return map[string]any{
		"command": command,
		"counter": counter,
		"async":   async,
	}
}

// CmdEndData returns the data map for a cmd_end event.
// errorCode should be nil or an E_* string.
func CmdEndData(command string, counter, exitStatus int, durationMs int64, errorCode *string) map[string]any {
	data := map[string]any{
		"command":     command,
		"counter":     counter,
		"exit_status": exitStatus,
		"duration_ms": durationMs,
	}
	if errorCode != nil {
		data["error_code"] = *errorCode
	}
	return data
}

// UploadData returns the data map for an upload event.
func UploadData(local, remote string, skipped bool) map[string]any {
	return map[string]any{
		"local":   local,
		"remote":  remote,
		"skipped": skipped,
	}
}
