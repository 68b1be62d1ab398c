package local

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
	"github.com/NielsdaWheelz/ncluster/internal/errors"
	"github.com/NielsdaWheelz/ncluster/internal/events"
	"github.com/NielsdaWheelz/ncluster/internal/fs"
	"github.com/NielsdaWheelz/ncluster/internal/naming"
)

// Upload copies localPath (a file or directory) to remotePath inside the
// working directory. An empty remotePath uses the base name of localPath.
// Absolute remote paths and paths escaping the working directory are
// rejected. With dontOverwrite, an existing
// destination is left untouched. The copy runs through the session as a
// synchronous command.
func (t *Task) Upload(ctx context.Context, localPath, remotePath string, dontOverwrite bool) error {
	if remotePath == "" {
		remotePath = filepath.Base(localPath)
	}
	if filepath.IsAbs(remotePath) {
		return t.annotate(errors.Invariant("upload destination must be relative to the task working dir",
			map[string]string{"path": remotePath}))
	}

	dest := filepath.Join(t.workingDir, remotePath)
	if wd := filepath.Clean(t.workingDir); dest != wd && !fs.IsSubpath(dest, wd) {
		return t.annotate(errors.Invariant("upload destination escapes the task working dir",
			map[string]string{"path": remotePath}))
	}
	if dontOverwrite && fs.Exists(dest) {
		t.logger.Info("remote file exists, skipping upload", "path", remotePath)
		t.events.Record(events.Upload, events.UploadData(localPath, remotePath, true))
		return nil
	}

	src, err := filepath.Abs(localPath)
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to resolve "+localPath, err)
	}
	t.logger.Info("uploading", "local", src, "remote", remotePath)
	t.events.Record(events.Upload, events.UploadData(src, remotePath, false))

	_, err = t.Run(ctx, "cp -R "+naming.ShellQuote(src)+" "+naming.ShellQuote(dest), backend.RunOpts{})
	return err
}

// Download is not supported by the local backend.
func (t *Task) Download(ctx context.Context, remotePath, localPath string) error {
	return t.annotate(errors.NewWithDetails(errors.EUnsupported,
		"download is not supported by the local backend",
		map[string]string{"path": remotePath}))
}

// FileRead returns the contents of path, or "" if it does not exist yet.
// Relative paths resolve against the working directory.
func (t *Task) FileRead(path string) (string, error) {
	content, err := fs.ReadFileOrEmpty(t.resolve(path))
	if err != nil {
		return "", errors.Wrap(errors.EInternal, "failed to read "+path, err)
	}
	return content, nil
}

// FileWrite stages content in the scratch directory and uploads it to path,
// with the same sandboxing and overwrite rules as Upload.
func (t *Task) FileWrite(ctx context.Context, path, content string) error {
	tmp := filepath.Join(t.scratchDir, "file_write."+strconv.FormatInt(t.backend.now().UnixMicro(), 10))
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return errors.Wrap(errors.EInternal, "failed to stage "+tmp, err)
	}
	return t.Upload(ctx, tmp, path, false)
}

// FileExists reports whether path exists. Relative paths resolve against the
// working directory.
func (t *Task) FileExists(path string) bool {
	return fs.Exists(t.resolve(path))
}

func (t *Task) resolve(path string) string {
	return fs.Resolve(t.workingDir, path)
}
