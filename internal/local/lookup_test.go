package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/testutil"
)

func TestFindWorkingDir(t *testing.T) {
	cfg := testutil.Config(t)
	for _, dir := range []string{
		"train.0.100.1700000000000001",
		"train.0.100.1700000000000009",
		"train.0.200.1700000000000005",
		"train.1.100.1700000000000099", // different task
		"x.train.0.1.1800000000000000", // different task
		"train.0.notapid.1900000000000000",
	} {
		if err := os.MkdirAll(filepath.Join(cfg.TaskRoot, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindWorkingDir(cfg, "0.train")
	if err != nil {
		t.Fatalf("FindWorkingDir() error = %v", err)
	}
	if filepath.Base(got) != "train.0.100.1700000000000009" {
		t.Errorf("FindWorkingDir() = %q", got)
	}
}

func TestFindWorkingDir_NotFound(t *testing.T) {
	cfg := testutil.Config(t)

	_, err := FindWorkingDir(cfg, "ghost")
	if errors.GetCode(err) != errors.ETaskNotFound {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.ETaskNotFound)
	}
}

func TestFindWorkingDir_MatchesCreatedTask(t *testing.T) {
	b, _ := newTestBackend(t)
	task, err := b.CreateTask(context.Background(), backend.TaskOptions{Name: "0.find"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := FindWorkingDir(b.Config(), "0.find")
	if err != nil {
		t.Fatalf("FindWorkingDir() error = %v", err)
	}
	if got != task.WorkingDir() {
		t.Errorf("FindWorkingDir() = %q, want %q", got, task.WorkingDir())
	}
}

func TestScanTasks(t *testing.T) {
	cfg := testutil.Config(t)
	for _, dir := range []string{
		"train.0.100.1700000000000001",
		"train.0.100.1700000000000009",
		"eval.1.200.1700000000000005",
		"garbage",
		"train.0.notapid.1900000000000000",
	} {
		if err := os.MkdirAll(filepath.Join(cfg.TaskRoot, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	scratch := filepath.Join(cfg.ScratchRoot, "train.0.100.1700000000000009")
	if err := os.MkdirAll(scratch, 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"1.cmd", "1.status", "2.cmd"} {
		if err := os.WriteFile(filepath.Join(scratch, f), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	records, err := ScanTasks(cfg)
	if err != nil {
		t.Fatalf("ScanTasks() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2: %+v", len(records), records)
	}

	train, eval := records[0], records[1]
	if train.Name != "0.train" || eval.Name != "1.eval" {
		t.Fatalf("names = %q, %q", eval.Name, train.Name)
	}
	if train.Generations != 2 {
		t.Errorf("Generations = %d, want 2", train.Generations)
	}
	if train.Commands != 2 {
		t.Errorf("Commands = %d, want 2", train.Commands)
	}
	if filepath.Base(train.WorkingDir) != "train.0.100.1700000000000009" {
		t.Errorf("WorkingDir = %q", train.WorkingDir)
	}
	if train.CreatedAt.UnixMicro() != 1700000000000009 {
		t.Errorf("CreatedAt = %v", train.CreatedAt)
	}
	if eval.Commands != 0 {
		t.Errorf("eval Commands = %d, want 0", eval.Commands)
	}
}

func TestScanTasks_MissingRoot(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.TaskRoot = filepath.Join(cfg.TaskRoot, "absent")

	records, err := ScanTasks(cfg)
	if err != nil {
		t.Fatalf("ScanTasks() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want none", records)
	}
}

func TestScanTasks_CountsDispatchedCommands(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()
	task, err := b.CreateTask(ctx, backend.TaskOptions{Name: "scan"})
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"true", "echo hi"} {
		if _, err := task.Run(ctx, cmd, backend.RunOpts{}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := ScanTasks(b.Config())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Name != "scan" {
		t.Fatalf("records = %+v", records)
	}
	// cd into the working dir counts as a dispatched command.
	if records[0].Commands != task.Counter() {
		t.Errorf("Commands = %d, want %d", records[0].Commands, task.Counter())
	}
}
