package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

func TestFileWriteRead_RoundTrip(t *testing.T) {
	task, _ := newTestTask(t, "rw")
	ctx := context.Background()

	if err := task.FileWrite(ctx, "greeting.txt", "hello"); err != nil {
		t.Fatalf("FileWrite() error = %v", err)
	}
	got, err := task.FileRead("greeting.txt")
	if err != nil {
		t.Fatalf("FileRead() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("FileRead() = %q, want %q", got, "hello")
	}
	if !task.FileExists("greeting.txt") {
		t.Error("FileExists() = false")
	}
	if !task.FileExists(filepath.Join(task.WorkingDir(), "greeting.txt")) {
		t.Error("FileExists(absolute) = false")
	}
}

func TestFileRead_Missing(t *testing.T) {
	task, _ := newTestTask(t, "missing")

	got, err := task.FileRead("never-written.txt")
	if err != nil {
		t.Fatalf("FileRead() error = %v", err)
	}
	if got != "" {
		t.Errorf("FileRead() = %q, want empty", got)
	}
	if task.FileExists("never-written.txt") {
		t.Error("FileExists() = true for a missing file")
	}
}

func TestUpload(t *testing.T) {
	task, _ := newTestTask(t, "up")
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := task.Upload(ctx, src, "", false); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got, _ := task.FileRead("data.txt"); got != "payload" {
		t.Errorf("default destination content = %q", got)
	}

	if err := task.Upload(ctx, src, "copy.txt", false); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got, _ := task.FileRead("copy.txt"); got != "payload" {
		t.Errorf("copy.txt = %q", got)
	}
}

func TestUpload_Directory(t *testing.T) {
	task, _ := newTestTask(t, "updir")

	src := filepath.Join(t.TempDir(), "tree")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "f"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := task.Upload(context.Background(), src, "tree", false); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got, _ := task.FileRead("tree/sub/f"); got != "x" {
		t.Errorf("tree/sub/f = %q", got)
	}
}

func TestUpload_AbsoluteDestinationRejected(t *testing.T) {
	task, client := newTestTask(t, "abs")
	sent := client.SentCount()

	err := task.Upload(context.Background(), "/etc/hostname", "/tmp/elsewhere", false)
	if !errors.IsInvariant(err) {
		t.Fatalf("Upload() error = %v, want E_INVARIANT_VIOLATION", err)
	}
	if client.SentCount() != sent {
		t.Error("rejected upload should not reach the session")
	}
}

func TestUpload_EscapeRejected(t *testing.T) {
	task, client := newTestTask(t, "escape")
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(task.WorkingDir()), "escaped.txt")
	sent := client.SentCount()

	for _, dest := range []string{"../escaped.txt", "sub/../../escaped.txt", ".."} {
		if err := task.Upload(ctx, src, dest, false); !errors.IsInvariant(err) {
			t.Errorf("Upload(%q) error = %v, want E_INVARIANT_VIOLATION", dest, err)
		}
	}
	if err := task.FileWrite(ctx, "../escaped.txt", "payload"); !errors.IsInvariant(err) {
		t.Errorf("FileWrite() error = %v, want E_INVARIANT_VIOLATION", err)
	}
	if client.SentCount() != sent {
		t.Error("rejected upload should not reach the session")
	}
	if _, err := os.Stat(outside); !os.IsNotExist(err) {
		t.Errorf("file written outside the working dir: %s", outside)
	}

	// Paths that only pass through ".." but stay inside are fine.
	if err := task.Upload(ctx, src, "sub/../inside.txt", false); err != nil {
		t.Fatalf("Upload(inside) error = %v", err)
	}
	if got, _ := task.FileRead("inside.txt"); got != "payload" {
		t.Errorf("inside.txt = %q", got)
	}
}

func TestUpload_DontOverwrite(t *testing.T) {
	task, client := newTestTask(t, "keep")
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(task.WorkingDir(), "cfg.txt"), []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "cfg.txt")
	if err := os.WriteFile(src, []byte("replacement"), 0644); err != nil {
		t.Fatal(err)
	}
	sent := client.SentCount()

	if err := task.Upload(ctx, src, "cfg.txt", true); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got, _ := task.FileRead("cfg.txt"); got != "original" {
		t.Errorf("cfg.txt = %q, want it unchanged", got)
	}
	if client.SentCount() != sent {
		t.Error("skipped upload should not reach the session")
	}
}

func TestUpload_MissingSource(t *testing.T) {
	task, _ := newTestTask(t, "nosrc")

	err := task.Upload(context.Background(), filepath.Join(t.TempDir(), "absent"), "x", false)
	if !errors.IsCommandFailure(err) {
		t.Fatalf("Upload() error = %v, want E_COMMAND_FAILED", err)
	}
}

func TestDownload_Unsupported(t *testing.T) {
	task, _ := newTestTask(t, "down")

	for _, args := range [][2]string{{"a", "b"}, {"", ""}, {"/abs", "."}} {
		err := task.Download(context.Background(), args[0], args[1])
		if !errors.IsUnsupported(err) {
			t.Errorf("Download(%q, %q) error = %v, want E_UNSUPPORTED", args[0], args[1], err)
		}
	}
}
