// Package sandbox implements the workspace path-containment check every
// filesystem-touching tool routes through before invoking the OS. See
// spec.md §4.C. It is pure: no state, no locking required.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"skillmint/internal/core"
)

// Resolve computes the effective canonical path for a requested path p
// under an optional work directory workDir, and verifies containment.
//
// If p is absolute, the candidate is p itself; otherwise it is joined
// against workDir (falling back to the current working directory when
// workDir is empty). Non-existent leaves are handled by canonicalizing
// the nearest existing ancestor and re-appending the remaining
// components, so writes to new files/directories still resolve.
func Resolve(p string, workDir string) (string, error) {
	if p == "" {
		return "", core.NewError(core.KindBadRequest, "path is required")
	}

	var candidate string
	if filepath.IsAbs(p) {
		candidate = p
	} else {
		base := workDir
		if base == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return "", core.Wrap(core.KindIO, err, "resolve working directory")
			}
			base = cwd
		}
		candidate = filepath.Join(base, p)
	}

	resolved, err := canonicalizeExistingOrParent(candidate)
	if err != nil {
		return "", err
	}

	if workDir == "" {
		return resolved, nil
	}

	canonicalWorkDir, err := canonicalizeExistingOrParent(workDir)
	if err != nil {
		return "", err
	}

	if !isDescendant(resolved, canonicalWorkDir) {
		return "", core.NewError(core.KindSandboxEscape, "path %q escapes workspace %q", p, workDir)
	}
	return resolved, nil
}

// canonicalizeExistingOrParent resolves symlinks/`.."` on the longest
// existing ancestor of path, then re-appends whatever suffix doesn't
// exist yet.
func canonicalizeExistingOrParent(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", core.Wrap(core.KindIO, err, "make path absolute: %s", path)
	}
	abs = filepath.Clean(abs)

	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}

	// Walk up until we find an existing ancestor.
	suffix := ""
	dir := abs
	for {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			if suffix == "" {
				return real, nil
			}
			return filepath.Join(real, suffix), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding an existing ancestor.
			return abs, nil
		}
		if suffix == "" {
			suffix = filepath.Base(dir)
		} else {
			suffix = filepath.Join(filepath.Base(dir), suffix)
		}
		dir = parent
	}
}

// isDescendant reports whether child is equal to or nested under parent.
func isDescendant(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
