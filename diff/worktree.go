package diff

import (
	"os"
	"path/filepath"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/internal/pathmap"
	"github.com/halide-vcs/gitkit/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// IndexMap flattens an index's stage-0 entries into the same
// path → Entry shape used by pathmap.Flatten, so it can feed Maps
// alongside a tree- or worktree-derived map.
func IndexMap(idx *index.Index) map[string]pathmap.Entry {
	out := map[string]pathmap.Entry{}
	for _, e := range idx.Entries() {
		if e.Stage != 0 {
			continue
		}
		out[e.Path] = pathmap.Entry{ID: e.ID, Mode: e.Mode}
	}
	return out
}

// WorktreeMap scans the worktree rooted at workTreePath, hashing file
// contents to produce OIDs. When idx is non-nil, a file whose size and
// mtime (second granularity) match the index's cached stat is assumed
// unchanged and its indexed OID is reused instead of being recomputed
// (spec §4.9's worktree-scan "stat fast-path").
func WorktreeMap(fs afero.Fs, hash githash.Hash, workTreePath string, idx *index.Index) (map[string]pathmap.Entry, error) {
	out := map[string]pathmap.Entry{}
	var byPath map[string]index.Entry
	if idx != nil {
		byPath = map[string]index.Entry{}
		for _, e := range idx.Entries() {
			if e.Stage == 0 {
				byPath[e.Path] = e
			}
		}
	}

	err := afero.Walk(fs, workTreePath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(workTreePath, p)
		if err != nil {
			return xerrors.Errorf("could not compute relative path for %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		mode := object.ModeFile
		if info.Mode()&0o111 != 0 {
			mode = object.ModeExecutable
		}

		if cached, ok := byPath[rel]; ok {
			if int64(cached.Size) == info.Size() && int64(cached.MTimeSec) == info.ModTime().Unix() {
				out[rel] = pathmap.Entry{ID: cached.ID, Mode: mode}
				return nil
			}
		}

		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return xerrors.Errorf("could not read %s: %w", p, err)
		}
		oid := hash.HashObject("blob", data)
		out[rel] = pathmap.Entry{ID: oid, Mode: mode}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk worktree: %w", err)
	}
	return out, nil
}

// IndexToWorkdir diffs the index against the on-disk worktree.
func IndexToWorkdir(fs afero.Fs, hash githash.Hash, workTreePath string, idx *index.Index, opts Options) ([]Delta, error) {
	wtMap, err := WorktreeMap(fs, hash, workTreePath, idx)
	if err != nil {
		return nil, err
	}
	return Maps(IndexMap(idx), wtMap, opts), nil
}

// HeadToIndex diffs HEAD's tree against the index.
func HeadToIndex(b backend.Backend, headTreeID githash.Oid, idx *index.Index, opts Options) ([]Delta, error) {
	headMap, err := pathmap.Flatten(b, headTreeID)
	if err != nil {
		return nil, err
	}
	return Maps(headMap, IndexMap(idx), opts), nil
}

// HeadToWorkdir diffs HEAD's tree against the on-disk worktree.
func HeadToWorkdir(b backend.Backend, fs afero.Fs, workTreePath string, headTreeID githash.Oid, idx *index.Index, opts Options) ([]Delta, error) {
	headMap, err := pathmap.Flatten(b, headTreeID)
	if err != nil {
		return nil, err
	}
	wtMap, err := WorktreeMap(fs, b.Hash(), workTreePath, idx)
	if err != nil {
		return nil, err
	}
	return Maps(headMap, wtMap, opts), nil
}
