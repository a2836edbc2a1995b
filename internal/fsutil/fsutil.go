// Package fsutil contains filesystem helpers shared by the object,
// index, ref and working-tree code: atomic writes, an ignore-aware
// walk, and a path-traversal guard.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrEscapesRoot is returned when a path built from untrusted input
// resolves outside of the base it was supposed to stay under.
var ErrEscapesRoot = fmt.Errorf("path escapes repository root")

// WriteAtomic writes data to path by first writing it to a sibling
// ".lock" file and renaming it into place. This guarantees concurrent
// readers never observe a torn write, matching git's own convention
// for updating refs, HEAD and the index.
func WriteAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err = fs.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("could not create directory %s: %w", dir, err)
	}

	tmp := path + ".lock"
	f, err := fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return xerrors.Errorf("could not create temp file %s: %w", tmp, err)
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return xerrors.Errorf("could not write temp file %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return xerrors.Errorf("could not close temp file %s: %w", tmp, err)
	}
	if err = fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return xerrors.Errorf("could not rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// WalkFunc is called for every regular file found by Walk, with a path
// relative to root and using forward slashes.
type WalkFunc func(relPath string) error

// Walk recursively visits every regular file under root, skipping any
// directory (or file) whose name is in ignore. Paths passed to fn use
// forward slashes regardless of the host OS.
func Walk(fs afero.Fs, root string, ignore map[string]struct{}, fn WalkFunc) error {
	return afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if _, skip := ignore[info.Name()]; skip {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return xerrors.Errorf("could not compute relative path for %s: %w", path, err)
		}
		return fn(filepath.ToSlash(rel))
	})
}

// SafeJoin joins base with an untrusted relative path and rejects the
// result if it would escape base, guarding against "../" traversal
// coming from index entries, tree entries or ref names.
func SafeJoin(base, untrusted string) (string, error) {
	cleaned := filepath.Join(base, filepath.FromSlash(untrusted))
	baseWithSep := filepath.Clean(base) + string(filepath.Separator)
	if cleaned != filepath.Clean(base) && !strings.HasPrefix(cleaned, baseWithSep) {
		return "", xerrors.Errorf("%s: %w", untrusted, ErrEscapesRoot)
	}
	return cleaned, nil
}
