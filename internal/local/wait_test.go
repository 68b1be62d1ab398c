package local

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

func TestWaitForFile_Appears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.status")
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("0\n"), 0644)
	}()

	if err := WaitForFile(context.Background(), path, 5*time.Second, 5*time.Millisecond); err != nil {
		t.Fatalf("WaitForFile() error = %v", err)
	}
}

func TestWaitForFile_AlreadyThere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.status")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := WaitForFile(context.Background(), path, time.Millisecond, time.Hour); err != nil {
		t.Fatalf("WaitForFile() error = %v", err)
	}
}

func TestWaitForFile_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never")

	start := time.Now()
	err := WaitForFile(context.Background(), path, 40*time.Millisecond, 5*time.Millisecond)
	if !errors.IsTimeout(err) {
		t.Fatalf("WaitForFile() error = %v, want E_TIMEOUT", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("WaitForFile() took %s", elapsed)
	}
	ne, _ := errors.AsNclusterError(err)
	if ne.Details["path"] != path || ne.Details["max_wait"] != "40ms" {
		t.Errorf("details = %v", ne.Details)
	}
}

func TestWaitForFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WaitForFile(ctx, filepath.Join(t.TempDir(), "never"), time.Hour, 5*time.Millisecond)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("WaitForFile() error = %v, want context.Canceled", err)
	}
}

func TestReadStatus_EmptyThenWritten(t *testing.T) {
	task, _ := newTestTask(t, "race")
	path := filepath.Join(task.ScratchDir(), "99.status")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	task.cfg.PollInterval = 50 * time.Millisecond
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = os.WriteFile(path, []byte("7\n"), 0644)
	}()

	status, err := task.readStatus(context.Background(), path)
	if err != nil {
		t.Fatalf("readStatus() error = %v", err)
	}
	if status != 7 {
		t.Errorf("readStatus() = %d, want 7", status)
	}
}

func TestReadStatus_Garbage(t *testing.T) {
	task, _ := newTestTask(t, "garbage")
	path := filepath.Join(task.ScratchDir(), "99.status")
	if err := os.WriteFile(path, []byte("not a number"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := task.readStatus(context.Background(), path); errors.GetCode(err) != errors.EInternal {
		t.Errorf("readStatus() error = %v, want E_INTERNAL", err)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamFile(t *testing.T) {
	task, _ := newTestTask(t, "stream")
	ctx, cancel := context.WithCancel(context.Background())

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- task.StreamFile(ctx, "logs/train.log", &out) }()

	path := filepath.Join(task.WorkingDir(), "logs", "train.log")
	waitFor(t, func() bool { return task.FileExists("logs/train.log") })

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	_, _ = f.WriteString("step 1\nstep")
	waitFor(t, func() bool { return out.String() == "step 1\n" })

	_, _ = f.WriteString(" 2\n")
	waitFor(t, func() bool { return out.String() == "step 1\nstep 2\n" })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("StreamFile() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("StreamFile did not return after cancel")
	}
}

func TestFollow_ExistingContent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- follow(ctx, strings.NewReader("a\nb\npartial"), &out, 5*time.Millisecond) }()

	waitFor(t, func() bool { return out.String() == "a\nb\n" })
	cancel()
	if err := <-done; err != nil {
		t.Errorf("follow() error = %v", err)
	}
	if strings.Contains(out.String(), "partial") {
		t.Error("incomplete line should not be forwarded")
	}
}
