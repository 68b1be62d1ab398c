package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/tmux"
)

// CaptureOpts holds options for the capture command.
type CaptureOpts struct {
	Name string
	// Raw keeps terminal escape sequences.
	Raw bool
}

// Capture prints the scrollback of a task's session.
func Capture(ctx context.Context, deps Deps, opts CaptureOpts, stdout io.Writer) error {
	s, err := deps.session(opts.Name)
	if err != nil {
		return err
	}
	ok, err := s.Exists(ctx)
	if err != nil {
		return taskDetails(err, opts.Name)
	}
	if !ok {
		return errors.NewWithDetails(errors.ESessionNotFound,
			fmt.Sprintf("tmux session %s not found", s.ID()),
			map[string]string{"task": opts.Name, "session": s.ID()})
	}

	out, err := s.Capture(ctx)
	if err != nil {
		return taskDetails(err, opts.Name)
	}
	if !opts.Raw {
		out = tmux.StripANSILines(out)
	}
	_, err = io.WriteString(stdout, out)
	return err
}
