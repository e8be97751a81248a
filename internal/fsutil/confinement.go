// Package fsutil guards filesystem operations that must stay under a root.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot reports a target that does not resolve beneath its root.
var ErrOutsideRoot = errors.New("path escapes root")

// ConfineAbsPath ensures that targetAbs is physically underneath the resolved
// path of rootAbs and returns the resolved target. Symlinks are followed on
// both sides; a target equal to the root is rejected.
func ConfineAbsPath(rootAbs, targetAbs string) (string, error) {
	if !filepath.IsAbs(targetAbs) {
		return "", fmt.Errorf("target path must be absolute: %s", targetAbs)
	}
	targetAbs = filepath.Clean(targetAbs)

	absRoot, err := filepath.Abs(rootAbs)
	if err != nil {
		return "", fmt.Errorf("invalid root path: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	realPath, err := resolve(targetAbs)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil {
		return "", fmt.Errorf("rel computation failed: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, targetAbs)
	}
	return realPath, nil
}

// resolve follows symlinks of an existing path, or of its parent when the
// path itself is gone.
func resolve(p string) (string, error) {
	if _, err := os.Lstat(p); err == nil {
		rp, err := filepath.EvalSymlinks(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		return rp, nil
	}
	dir := filepath.Dir(p)
	rp, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if _, statErr := os.Stat(dir); statErr == nil {
			return "", fmt.Errorf("failed to resolve parent path: %w", err)
		}
		return p, nil
	}
	return filepath.Join(rp, filepath.Base(p)), nil
}

// RemoveUnder deletes dir and its contents after checking that it lies
// beneath root. Relative paths are taken from the working directory. A missing
// dir is not an error.
func RemoveUnder(root, dir string) error {
	if root == "" || dir == "" {
		return errors.New("remove under: empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("remove under: %w", err)
	}
	confined, err := ConfineAbsPath(root, abs)
	if err != nil {
		return err
	}
	return os.RemoveAll(confined)
}
