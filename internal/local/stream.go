package local

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
)

// StreamFile follows path and writes each complete line to w as it appears.
// Relative paths resolve against the working directory. StreamFile blocks
// until ctx is done and then returns nil.
func (t *Task) StreamFile(ctx context.Context, path string, w io.Writer) error {
	return Tail(ctx, t.resolve(path), w, t.cfg.PollInterval)
}

// Tail follows the file at path like tail -f, polling every pollInterval.
// A missing file is created empty first so the stream can start before the
// producer. Tail returns nil once ctx is done.
func Tail(ctx context.Context, path string, w io.Writer, pollInterval time.Duration) error {
	if !fs.Exists(path) {
		if err := fs.Touch(path); err != nil {
			return errors.Wrap(errors.EInternal, "failed to create "+path, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to open "+path, err)
	}
	defer func() { _ = f.Close() }()

	return follow(ctx, f, w, pollInterval)
}

// follow copies complete lines from r to w, polling for more data at EOF.
func follow(ctx context.Context, r io.Reader, w io.Writer, pollInterval time.Duration) error {
	reader := bufio.NewReader(r)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var partial []byte
	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := reader.ReadBytes('\n')
		partial = append(partial, chunk...)
		if err == nil {
			if _, werr := w.Write(partial); werr != nil {
				return werr
			}
			partial = partial[:0]
			continue
		}
		if err != io.EOF {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
