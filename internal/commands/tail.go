package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/local"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
)

// TailOpts holds options for the tail command.
type TailOpts struct {
	Name string
	Path string
}

// Tail follows a file of the newest generation of a task until ctx is done.
// Relative paths resolve against that generation's working directory.
func Tail(ctx context.Context, deps Deps, opts TailOpts, stdout io.Writer) error {
	if opts.Path == "" {
		return errors.New(errors.EUsage, "a path is required")
	}
	path := opts.Path
	if !filepath.IsAbs(path) {
		if opts.Name == "" {
			return errors.New(errors.EUsage, "--name is required for a relative path")
		}
		if err := naming.ValidateTaskName(opts.Name); err != nil {
			return err
		}
		dir, err := local.FindWorkingDir(deps.Config, opts.Name)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, path)
	}
	deps.logger().Debug("following", "path", path)
	return local.Tail(ctx, path, stdout, deps.Config.PollInterval)
}
