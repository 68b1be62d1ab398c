package local

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/config"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
)

// TaskRecord describes a task discovered on disk. Identity comes from the
// working directory name "<reversed name>.<pid>.<micros>".
type TaskRecord struct {
	Name       string
	WorkingDir string
	ScratchDir string

	// CreatedAt is the creation time of the newest generation.
	CreatedAt time.Time

	// Generations counts working dirs left by every creation of the task.
	Generations int

	// Commands counts the commands dispatched in the newest generation.
	Commands int
}

// ScanTasks lists every task with a working dir under cfg.TaskRoot, keeping
// the newest generation of each. Entries that do not parse are skipped.
// Results are sorted by name. A missing task root yields no records.
func ScanTasks(cfg config.Config) ([]TaskRecord, error) {
	entries, err := os.ReadDir(cfg.TaskRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.EInternal, "failed to list "+cfg.TaskRoot, err)
	}

	byName := make(map[string]*TaskRecord)
	newest := make(map[string]int64)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, micros, ok := parseGeneration(e.Name())
		if !ok {
			continue
		}
		rec := byName[name]
		if rec == nil {
			rec = &TaskRecord{Name: name}
			byName[name] = rec
			newest[name] = -1
		}
		rec.Generations++
		if micros <= newest[name] {
			continue
		}
		newest[name] = micros
		rec.WorkingDir = filepath.Join(cfg.TaskRoot, e.Name())
		rec.ScratchDir = filepath.Join(cfg.ScratchRoot, e.Name())
		rec.CreatedAt = time.UnixMicro(micros)
	}

	records := make([]TaskRecord, 0, len(byName))
	for _, rec := range byName {
		rec.Commands = countCommands(rec.ScratchDir)
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// FindWorkingDir returns the working directory of the newest generation of
// the task called name under cfg.TaskRoot. Used by processes that did not
// create the task themselves.
func FindWorkingDir(cfg config.Config, name string) (string, error) {
	records, err := ScanTasks(cfg)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.Name == name {
			return rec.WorkingDir, nil
		}
	}
	return "", errors.NewWithDetails(errors.ETaskNotFound,
		"no working dir found for task "+name,
		map[string]string{"task": name, "path": cfg.TaskRoot})
}

// parseGeneration splits a generation dir name into the task name and its
// creation time in microseconds.
func parseGeneration(dir string) (string, int64, bool) {
	parts := strings.Split(dir, naming.Separator)
	if len(parts) < 3 {
		return "", 0, false
	}
	n := len(parts)
	if _, err := strconv.Atoi(parts[n-2]); err != nil {
		return "", 0, false
	}
	micros, err := strconv.ParseInt(parts[n-1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	name := naming.ReverseTaskName(strings.Join(parts[:n-2], naming.Separator))
	if name == "" {
		return "", 0, false
	}
	return name, micros, true
}

// countCommands counts "<n>.cmd" files in a scratch dir.
func countCommands(scratchDir string) int {
	matches, err := filepath.Glob(filepath.Join(scratchDir, "*.cmd"))
	if err != nil {
		return 0
	}
	return len(matches)
}
