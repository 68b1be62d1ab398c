package local

import (
	"log/slog"
	"testing"

	"github.com/NielsdaWheelz/ncluster/internal/testutil"
)

func newTestBackend(t *testing.T) (*Backend, *testutil.ShellClient) {
	t.Helper()
	client := testutil.NewShellClient(t)
	logger := slog.New(slog.NewTextHandler(testutil.LogWriter{T: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	b, err := New(testutil.Config(t), client, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b, client
}
