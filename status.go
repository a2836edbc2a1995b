package gitkit

import (
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/status"
)

// StatusEntry mirrors status.Entry at the facade boundary.
type StatusEntry = status.Entry

// Status computes the three-way HEAD/index/worktree comparison
// described in spec §4.10.
func (r *Repository) Status() ([]StatusEntry, error) {
	headTreeID, err := r.headTreeID()
	if err != nil {
		return nil, err
	}

	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}

	entries, err := status.Compute(r.backend, r.fs, r.workTreePath, headTreeID, idx)
	if err != nil {
		return nil, newError(KindIO, "could not compute status", err)
	}
	return entries, nil
}

// headTreeID resolves HEAD down to the tree of the commit it points
// at, returning the zero oid for an unborn branch (spec §12's resolved
// Open Question: an unborn HEAD diffs as if against an empty tree).
func (r *Repository) headTreeID() (githash.Oid, error) {
	h, err := r.backend.Head()
	if err != nil {
		return r.hash.Zero(), nil
	}
	if h.Oid.IsZero() {
		return r.hash.Zero(), nil
	}
	c, err := r.backend.Object(h.Oid)
	if err != nil {
		return nil, newError(KindIO, "could not read HEAD commit", err)
	}
	commit, err := object.ParseCommit(r.hash, c)
	if err != nil {
		return nil, newError(KindTypeMismatch, "HEAD", err)
	}
	return commit.TreeID(), nil
}
