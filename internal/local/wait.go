package local

import (
	"context"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
)

// WaitForFile blocks until path exists. It returns E_TIMEOUT once maxWait
// has elapsed, and ctx.Err() unwrapped if ctx is done first.
func WaitForFile(ctx context.Context, path string, maxWait, pollInterval time.Duration) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case err := <-watchFile(watchCtx, path, maxWait, pollInterval):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// watchFile polls for path in its own goroutine and delivers exactly one
// outcome: nil when the file appears, or a timeout error. The goroutine
// exits without sending when ctx is done.
func watchFile(ctx context.Context, path string, maxWait, pollInterval time.Duration) <-chan error {
	out := make(chan error, 1)

	go func() {
		deadline := time.NewTimer(maxWait)
		defer deadline.Stop()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			if fs.Exists(path) {
				out <- nil
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-deadline.C:
				if fs.Exists(path) {
					out <- nil
				} else {
					out <- errors.Timeout(path, maxWait)
				}
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}
