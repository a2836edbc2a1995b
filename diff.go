package gitkit

import (
	"github.com/halide-vcs/gitkit/diff"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
)

// Delta mirrors diff.Delta at the facade boundary.
type Delta = diff.Delta

// DiffOptions mirrors diff.Options at the facade boundary.
type DiffOptions = diff.Options

// DefaultDiffOptions returns diff.DefaultOptions(): rename detection
// enabled (spec §4.9).
func DefaultDiffOptions() DiffOptions { return diff.DefaultOptions() }

// DiffTrees diffs two commit-ish refs' trees against each other.
func (r *Repository) DiffTrees(oldRef, newRef string, opts DiffOptions) ([]Delta, error) {
	oldTree, err := r.commitTreeID(oldRef)
	if err != nil {
		return nil, err
	}
	newTree, err := r.commitTreeID(newRef)
	if err != nil {
		return nil, err
	}
	deltas, err := diff.Trees(r.backend, oldTree, newTree, opts)
	if err != nil {
		return nil, newError(KindIO, "could not diff trees", err)
	}
	return deltas, nil
}

// CommitDiff diffs ref against its first parent (or against the empty
// tree for a root commit), per spec §4.9's "commit diff" shorthand.
func (r *Repository) CommitDiff(ref string, opts DiffOptions) ([]Delta, error) {
	c, err := r.Commit(ref)
	if err != nil {
		return nil, err
	}
	parentTree := r.hash.Zero()
	if parents := c.ParentIDs(); len(parents) > 0 {
		parent, err := r.backend.Object(parents[0])
		if err != nil {
			return nil, newError(KindIO, "could not read parent commit", err)
		}
		parentCommit, err := object.ParseCommit(r.hash, parent)
		if err != nil {
			return nil, newError(KindTypeMismatch, ref, err)
		}
		parentTree = parentCommit.TreeID()
	}
	deltas, err := diff.Trees(r.backend, parentTree, c.TreeID(), opts)
	if err != nil {
		return nil, newError(KindIO, "could not diff commit", err)
	}
	return deltas, nil
}

// DiffIndexToWorkdir diffs the staging index against the on-disk
// worktree.
func (r *Repository) DiffIndexToWorkdir(opts DiffOptions) ([]Delta, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	deltas, err := diff.IndexToWorkdir(r.fs, r.hash, r.workTreePath, idx, opts)
	if err != nil {
		return nil, newError(KindIO, "could not diff index to worktree", err)
	}
	return deltas, nil
}

// DiffHeadToIndex diffs HEAD's tree against the staging index.
func (r *Repository) DiffHeadToIndex(opts DiffOptions) ([]Delta, error) {
	headTree, err := r.headTreeID()
	if err != nil {
		return nil, err
	}
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	deltas, err := diff.HeadToIndex(r.backend, headTree, idx, opts)
	if err != nil {
		return nil, newError(KindIO, "could not diff HEAD to index", err)
	}
	return deltas, nil
}

// DiffHeadToWorkdir diffs HEAD's tree directly against the on-disk
// worktree, using the index only for its stat cache.
func (r *Repository) DiffHeadToWorkdir(opts DiffOptions) ([]Delta, error) {
	headTree, err := r.headTreeID()
	if err != nil {
		return nil, err
	}
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	deltas, err := diff.HeadToWorkdir(r.backend, r.fs, r.workTreePath, headTree, idx, opts)
	if err != nil {
		return nil, newError(KindIO, "could not diff HEAD to worktree", err)
	}
	return deltas, nil
}

// commitTreeID resolves ref to a commit and returns its tree's oid.
func (r *Repository) commitTreeID(ref string) (githash.Oid, error) {
	c, err := r.Commit(ref)
	if err != nil {
		return nil, err
	}
	return c.TreeID(), nil
}
