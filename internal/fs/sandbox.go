// Package fs provides filesystem utilities for ncluster.
// This file implements the directory sandbox guards used for task working
// and scratch directories.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotUnderPrefix is returned when a target path is not under the allowed prefix.
type ErrNotUnderPrefix struct {
	Target string
	Prefix string
}

func (e *ErrNotUnderPrefix) Error() string {
	return fmt.Sprintf("target %q is not under allowed prefix %q", e.Target, e.Prefix)
}

// RemoveUnder removes target only if it is a proper subpath of root.
// Scratch directories are wiped with this so that a bad configuration can
// never delete something outside the scratch root.
//
// Both paths are cleaned and symlink-resolved before comparison. A missing
// target is not an error. An unresolvable root fails closed.
func RemoveUnder(target, root string) error {
	cleanTarget := filepath.Clean(target)

	resolvedTarget, err := filepath.EvalSymlinks(cleanTarget)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ErrNotUnderPrefix{Target: target, Prefix: root}
	}

	resolvedRoot, err := filepath.EvalSymlinks(filepath.Clean(root))
	if err != nil {
		return &ErrNotUnderPrefix{Target: target, Prefix: root}
	}

	if !IsSubpath(resolvedTarget, resolvedRoot) {
		return &ErrNotUnderPrefix{Target: target, Prefix: root}
	}
	return os.RemoveAll(cleanTarget)
}

// IsSubpath returns true if target is a proper subpath of prefix.
// Both paths should already be cleaned. Equal paths are not subpaths.
func IsSubpath(target, prefix string) bool {
	prefixWithSep := prefix
	if !strings.HasSuffix(prefixWithSep, string(filepath.Separator)) {
		prefixWithSep = prefix + string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefixWithSep) && len(target) > len(prefix)
}

// Resolve returns path unchanged when absolute, otherwise joined onto dir.
func Resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
