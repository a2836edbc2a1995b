// Package status implements the three-way HEAD/index/worktree
// comparison described in spec §4.10, reusing the same path-map
// engine as package diff (spec §9's design note: the map-based
// approach is "reused verbatim for index and worktree diffs"; status
// is a third consumer of the identical flattening primitives).
package status

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/internal/pathmap"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// State is the status of a single path.
type State int8

const (
	Untracked State = iota + 1
	Added
	StagedDeleted
	Deleted
	StagedModified
	Modified
)

func (s State) String() string {
	switch s {
	case Untracked:
		return "Untracked"
	case Added:
		return "Added"
	case StagedDeleted:
		return "StagedDeleted"
	case Deleted:
		return "Deleted"
	case StagedModified:
		return "StagedModified"
	case Modified:
		return "Modified"
	default:
		return "Unknown"
	}
}

// Entry is a single path's status.
type Entry struct {
	Path  string
	State State
}

// Compute evaluates status for every path reachable from the union of
// headTreeID (the zero OID for an unborn HEAD), idx, and the on-disk
// worktree at workTreePath, per the decision table in spec §4.10.
func Compute(b backend.Backend, fs afero.Fs, workTreePath string, headTreeID githash.Oid, idx *index.Index) ([]Entry, error) {
	headMap, err := pathmap.Flatten(b, headTreeID)
	if err != nil {
		return nil, err
	}
	indexMap := map[string]index.Entry{}
	for _, e := range idx.Entries() {
		if e.Stage == 0 {
			indexMap[e.Path] = e
		}
	}

	paths := map[string]struct{}{}
	for p := range headMap {
		paths[p] = struct{}{}
	}
	for p := range indexMap {
		paths[p] = struct{}{}
	}

	var out []Entry
	for p := range paths {
		inHead := isIn(headMap, p)
		inIndex := isIn2(indexMap, p)
		onDisk, err := exists(fs, filepath.Join(workTreePath, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}

		state, emit, err := classify(b, fs, workTreePath, headMap, indexMap, p, inHead, inIndex, onDisk)
		if err != nil {
			return nil, err
		}
		if emit {
			out = append(out, Entry{Path: p, State: state})
		}
	}

	// Untracked: on-disk files not present in HEAD or the index.
	untracked, err := scanUntracked(fs, workTreePath, headMap, indexMap)
	if err != nil {
		return nil, err
	}
	out = append(out, untracked...)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func isIn(m map[string]pathmap.Entry, p string) bool { _, ok := m[p]; return ok }
func isIn2(m map[string]index.Entry, p string) bool  { _, ok := m[p]; return ok }

func exists(fs afero.Fs, p string) (bool, error) {
	ok, err := afero.Exists(fs, p)
	if err != nil {
		return false, xerrors.Errorf("could not stat %s: %w", p, err)
	}
	return ok, nil
}

//nolint:gocyclo // the decision table in spec §4.10 is inherently a flat case match
func classify(
	b backend.Backend, fs afero.Fs, workTreePath string,
	headMap map[string]pathmap.Entry, indexMap map[string]index.Entry,
	p string, inHead, inIndex, onDisk bool,
) (State, bool, error) {
	switch {
	case !inHead && inIndex && onDisk:
		return Added, true, nil
	case !inHead && inIndex && !onDisk:
		return Added, true, nil
	case inHead && !inIndex && !onDisk:
		return StagedDeleted, true, nil
	case inHead && inIndex && !onDisk:
		return Deleted, true, nil
	case inHead && !inIndex && onDisk:
		return Untracked, true, nil
	case inHead && inIndex && onDisk:
		headEntry := headMap[p]
		idxEntry := indexMap[p]
		if idxEntry.ID != headEntry.ID {
			return StagedModified, true, nil
		}
		differs, err := contentDiffers(fs, b.Hash(), workTreePath, p, idxEntry)
		if err != nil {
			return 0, false, err
		}
		if differs {
			return Modified, true, nil
		}
		return 0, false, nil
	default:
		return 0, false, nil
	}
}

// contentDiffers implements spec §4.10's content-differs test: compare
// size, then mtime (seconds); only when both match on-disk state is
// it assumed unchanged without recomputing mtime further — but since
// the stat fast path can't prove equality across a *differing* mtime,
// a changed mtime falls back to a real content hash comparison.
func contentDiffers(fs afero.Fs, hash githash.Hash, workTreePath, p string, cached index.Entry) (bool, error) {
	full := filepath.Join(workTreePath, filepath.FromSlash(p))
	info, err := fs.Stat(full)
	if err != nil {
		return false, xerrors.Errorf("could not stat %s: %w", full, err)
	}
	if uint32(info.Size()) != cached.Size {
		return true, nil
	}
	if uint32(info.ModTime().Unix()) == cached.MTimeSec {
		return false, nil
	}

	data, err := afero.ReadFile(fs, full)
	if err != nil {
		return false, xerrors.Errorf("could not read %s: %w", full, err)
	}
	oid := hash.HashObject("blob", data)
	return oid != cached.ID, nil
}

func scanUntracked(fs afero.Fs, workTreePath string, headMap map[string]pathmap.Entry, indexMap map[string]index.Entry) ([]Entry, error) {
	var out []Entry
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
		if isIn(headMap, rel) || isIn2(indexMap, rel) {
			return nil
		}
		out = append(out, Entry{Path: rel, State: Untracked})
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("could not walk worktree: %w", err)
	}
	return out, nil
}
