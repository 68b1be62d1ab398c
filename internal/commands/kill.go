package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// KillOpts holds options for the kill command.
type KillOpts struct {
	Name string
}

// Kill kills a task's session. Its working directory remains intact.
// A missing session is a no-op.
func Kill(ctx context.Context, deps Deps, opts KillOpts, stdout, stderr io.Writer) error {
	s, err := deps.session(opts.Name)
	if err != nil {
		return err
	}
	ok, err := s.Exists(ctx)
	if err != nil {
		return taskDetails(err, opts.Name)
	}
	if !ok {
		_, _ = fmt.Fprintf(stderr, "no session for %s\n", opts.Name)
		return nil
	}
	if err := deps.Tmux.KillSession(ctx, s.ID()); err != nil {
		return errors.WrapWithDetails(errors.ETmuxFailed, "failed to kill session", err,
			map[string]string{"task": opts.Name, "session": s.ID()})
	}
	_, _ = fmt.Fprintf(stdout, "killed %s\n", s.ID())
	return nil
}
