package commands

import (
	"context"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
)

// AttachOpts holds options for the attach command.
type AttachOpts struct {
	Name string
}

// Attach attaches the terminal to a task's session. Requires a TTY.
func Attach(ctx context.Context, deps Deps, opts AttachOpts) error {
	s, err := deps.session(opts.Name)
	if err != nil {
		return err
	}
	if !deps.interactive() {
		return errors.NewWithDetails(errors.ENotInteractive,
			"attach requires an interactive terminal",
			map[string]string{"task": opts.Name, "hint": s.ConnectInstructions()})
	}
	if err := s.Attach(ctx); err != nil {
		return taskDetails(err, opts.Name)
	}
	return nil
}

// taskDetails records which task a session error belongs to.
func taskDetails(err error, name string) error {
	if ne, ok := errors.AsNclusterError(err); ok {
		if ne.Details == nil {
			ne.Details = make(map[string]string)
		}
		ne.Details["task"] = name
	}
	return err
}
