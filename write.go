package gitkit

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/internal/pathmap"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/refs"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Add stages path: it reads the worktree file, writes its blob object,
// and upserts an index entry populated from the file's current stat
// (spec §4.11's add).
func (r *Repository) Add(path string) error {
	idx, err := r.readIndex()
	if err != nil {
		return err
	}
	if err := r.stagePath(idx, path); err != nil {
		return err
	}
	return r.writeIndex(idx)
}

// AddAll walks the worktree, staging every new or changed file and
// dropping index entries whose file has been deleted on disk (spec
// §4.11's add_all).
func (r *Repository) AddAll() error {
	idx, err := r.readIndex()
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	err = afero.Walk(r.fs, r.workTreePath, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(r.workTreePath, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true
		return r.stagePath(idx, rel)
	})
	if err != nil {
		return newError(KindIO, "could not walk worktree", err)
	}

	for _, e := range idx.Entries() {
		if e.Stage != 0 || seen[e.Path] {
			continue
		}
		idx.Remove(e.Path)
	}

	return r.writeIndex(idx)
}

func (r *Repository) stagePath(idx *index.Index, path string) error {
	full := filepath.Join(r.workTreePath, filepath.FromSlash(path))
	info, err := r.fs.Stat(full)
	if err != nil {
		return newError(KindPathNotFound, path, err)
	}

	data, err := afero.ReadFile(r.fs, full)
	if err != nil {
		return newError(KindIO, "could not read "+path, err)
	}

	blob := object.New(r.hash, object.KindBlob, data)
	if _, err := r.backend.WriteObject(blob); err != nil {
		return newError(KindIO, "could not write blob for "+path, err)
	}

	mode := object.ModeFile
	if info.Mode()&0o111 != 0 {
		mode = object.ModeExecutable
	}

	idx.Add(index.Entry{
		MTimeSec: uint32(info.ModTime().Unix()),
		Mode:     mode,
		Size:     uint32(info.Size()),
		ID:       blob.ID(),
		Path:     path,
	})
	return nil
}

// Reset restores the index entry for path (or, if path is empty, every
// entry) to match HEAD's tree, dropping the entry when HEAD lacks the
// path (spec §4.11's reset).
func (r *Repository) Reset(path string) error {
	headTree, err := r.headTreeID()
	if err != nil {
		return err
	}
	headMap, err := pathmap.Flatten(r.backend, headTree)
	if err != nil {
		return err
	}

	idx, err := r.readIndex()
	if err != nil {
		return err
	}

	if path == "" {
		idx.Clear()
		for p, e := range headMap {
			idx.Add(index.Entry{Mode: e.Mode, ID: e.ID, Path: p})
		}
		return r.writeIndex(idx)
	}

	if e, ok := headMap[path]; ok {
		idx.Add(index.Entry{Mode: e.Mode, ID: e.ID, Path: path})
	} else {
		idx.Remove(path)
	}
	return r.writeIndex(idx)
}

// CreateCommit builds a tree from the current index, writes a commit
// object on top of it, and advances HEAD (or the branch it points at),
// per spec §4.11's create_commit. Fails with KindEmptyCommit if the
// index has no entries.
func (r *Repository) CreateCommit(message string, author, committer object.Signature) (githash.Oid, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	entries := idx.Entries()
	if len(entries) == 0 {
		return nil, newError(KindEmptyCommit, "index is empty", nil)
	}

	treeID, err := r.buildTreeFromIndex(entries)
	if err != nil {
		return nil, err
	}

	var parents []githash.Oid
	h, err := r.backend.Head()
	if err == nil && !h.Oid.IsZero() {
		parents = []githash.Oid{h.Oid}
	}

	commit := object.NewCommit(r.hash, treeID, author, object.NewCommitOptions{
		Committer: committer,
		ParentIDs: parents,
		Message:   message,
	})
	if _, err := r.backend.WriteObject(commit.ToObject()); err != nil {
		return nil, newError(KindIO, "could not write commit", err)
	}

	if err := r.advanceHead(commit.ID()); err != nil {
		return nil, err
	}
	return commit.ID(), nil
}

// advanceHead points HEAD's current branch (or HEAD itself, if
// detached) at oid.
func (r *Repository) advanceHead(oid githash.Oid) error {
	h, err := r.backend.Head()
	if err != nil {
		return newError(KindRefNotFound, "HEAD", err)
	}
	name := refs.Head
	if h.Kind == refs.HeadBranch {
		name = "refs/heads/" + h.Branch
	}
	if err := r.backend.WriteReference(refs.NewReference(name, oid)); err != nil {
		return newError(KindIO, "could not update "+name, err)
	}
	return nil
}

// buildTreeFromIndex implements spec §4.11 step 1: group index entries
// by directory prefix bottom-up, writing a Tree object per directory
// and composing parents from their children's written OIDs.
func (r *Repository) buildTreeFromIndex(entries []index.Entry) (githash.Oid, error) {
	type dirNode struct {
		files map[string]index.Entry // basename -> entry
		dirs  map[string]struct{}    // basename -> present
	}
	dirs := map[string]*dirNode{}

	ensureDir := func(dir string) *dirNode {
		if n, ok := dirs[dir]; ok {
			return n
		}
		n := &dirNode{files: map[string]index.Entry{}, dirs: map[string]struct{}{}}
		dirs[dir] = n

		// Link dir into its parent's subdirectory set, all the way up
		// to the (always-present) root, so every ancestor directory
		// gets a tree even if it holds no files of its own.
		if dir != "" {
			parent := filepath.ToSlash(filepath.Dir(dir))
			if parent == "." {
				parent = ""
			}
			ensureDir(parent).dirs[filepath.Base(dir)] = struct{}{}
		}
		return n
	}
	ensureDir("")

	for _, e := range entries {
		dir := filepath.ToSlash(filepath.Dir(e.Path))
		if dir == "." {
			dir = ""
		}
		ensureDir(dir).files[filepath.Base(e.Path)] = e
	}

	var buildDir func(dir string) (githash.Oid, error)
	buildDir = func(dir string) (githash.Oid, error) {
		node := ensureDir(dir)
		var te []object.TreeEntry
		for base, e := range node.files {
			te = append(te, object.TreeEntry{Name: base, ID: e.ID, Mode: e.Mode})
		}
		for base := range node.dirs {
			if base == "" {
				continue
			}
			childPath := base
			if dir != "" {
				childPath = dir + "/" + base
			}
			childID, err := buildDir(childPath)
			if err != nil {
				return nil, err
			}
			te = append(te, object.TreeEntry{Name: base, ID: childID, Mode: object.ModeSubtree})
		}
		tree := object.NewTree(r.hash, te)
		if _, err := r.backend.WriteObject(tree.ToObject()); err != nil {
			return nil, xerrors.Errorf("could not write tree for %q: %w", dir, err)
		}
		return tree.ID(), nil
	}

	rootID, err := buildDir("")
	if err != nil {
		return nil, newError(KindIO, "could not build tree from index", err)
	}
	return rootID, nil
}

// CreateBranch validates name and writes refs/heads/<name> pointing at
// target (or HEAD's current OID, if target is empty), per spec §4.11's
// create_branch. Nested names create intermediate directories.
func (r *Repository) CreateBranch(name string, target githash.Oid) error {
	if !isValidBranchName(name) {
		return newError(KindInvalidRefName, name, nil)
	}

	if target == nil {
		h, err := r.backend.Head()
		if err != nil {
			return newError(KindRefNotFound, "HEAD", err)
		}
		target = h.Oid
	}

	ref := refs.NewReference("refs/heads/"+name, target)
	if err := r.backend.WriteReferenceSafe(ref); err != nil {
		if errors.Is(err, refs.ErrRefExists) {
			return newError(KindRefAlreadyExists, name, err)
		}
		return newError(KindIO, "could not create branch "+name, err)
	}
	return nil
}

// isValidBranchName applies spec §4.11's create_branch name rules on
// top of the reference namespace's general validity rules.
func isValidBranchName(name string) bool {
	if name == "" || strings.HasPrefix(name, "-") {
		return false
	}
	return refs.IsRefNameValid("refs/heads/" + name)
}

// DeleteBranch removes refs/heads/<name>, refusing to delete the
// currently checked-out branch (spec §4.11's delete_branch).
func (r *Repository) DeleteBranch(name string) error {
	h, err := r.backend.Head()
	if err == nil && h.Kind == refs.HeadBranch && h.Branch == name {
		return newError(KindCannotDeleteCurrentBranch, name, nil)
	}

	if err := r.backend.DeleteReference("refs/heads/" + name); err != nil {
		if errors.Is(err, refs.ErrRefNotFound) {
			return newError(KindRefNotFound, name, err)
		}
		return newError(KindIO, "could not delete branch "+name, err)
	}
	return nil
}

// Checkout moves HEAD, the index, and the worktree to target, which is
// resolved as a branch name first and then as an OID prefix (spec
// §4.11's checkout). Fails KindDirtyWorkingTree if Status reports any
// uncommitted change.
func (r *Repository) Checkout(target string) error {
	dirty, err := r.Status()
	if err != nil {
		return err
	}
	if len(dirty) > 0 {
		return newError(KindDirtyWorkingTree, target, nil)
	}

	var newHead *refs.Reference
	var targetOid githash.Oid
	if branchRef, err := r.backend.Reference("refs/heads/" + target); err == nil {
		newHead = refs.NewSymbolicReference(refs.Head, "refs/heads/"+target)
		targetOid = branchRef.Target()
	} else {
		oid, rerr := r.ResolveOid(target)
		if rerr != nil {
			return newError(KindRefNotFound, target, rerr)
		}
		newHead = refs.NewReference(refs.Head, oid)
		targetOid = oid
	}

	commit, err := r.backend.Object(targetOid)
	if err != nil {
		return newError(KindObjectNotFound, target, err)
	}
	c, err := object.ParseCommit(r.hash, commit)
	if err != nil {
		return newError(KindTypeMismatch, target, err)
	}

	targetMap, err := pathmap.Flatten(r.backend, c.TreeID())
	if err != nil {
		return err
	}

	if err := r.syncWorktree(targetMap); err != nil {
		return err
	}

	idx := index.New(2)
	paths := make([]string, 0, len(targetMap))
	for p := range targetMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		e := targetMap[p]
		idx.Add(index.Entry{Mode: e.Mode, ID: e.ID, Path: p})
	}
	if err := r.writeIndex(idx); err != nil {
		return err
	}

	if err := r.backend.WriteReference(newHead); err != nil {
		return newError(KindIO, "could not update HEAD", err)
	}
	return nil
}

// syncWorktree writes every blob named in targetMap to disk (mode
// preserved) and removes any tracked file no longer present in it.
func (r *Repository) syncWorktree(targetMap map[string]pathmap.Entry) error {
	err := afero.Walk(r.fs, r.workTreePath, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(r.workTreePath, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if _, ok := targetMap[rel]; !ok {
			return r.fs.Remove(p)
		}
		return nil
	})
	if err != nil {
		return newError(KindIO, "could not scan worktree for checkout", err)
	}

	for p, e := range targetMap {
		obj, err := r.backend.Object(e.ID)
		if err != nil {
			return newError(KindIO, "could not read blob for "+p, err)
		}
		full := filepath.Join(r.workTreePath, filepath.FromSlash(p))
		if err := r.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return newError(KindIO, "could not create directory for "+p, err)
		}
		perm := os.FileMode(0o644)
		if e.Mode == object.ModeExecutable {
			perm = 0o755
		}
		if err := afero.WriteFile(r.fs, full, obj.Bytes(), perm); err != nil {
			return newError(KindIO, "could not write "+p, err)
		}
	}
	return nil
}
