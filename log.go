package gitkit

import (
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/history"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/refs"
)

// LogOptions filters a commit walk, mirroring history.Options at the
// facade boundary so callers never need to import package history
// directly for the common case.
type LogOptions = history.Options

// Log walks history starting at the commit-ish startRef ("HEAD", a
// full or prefix OID, or a branch/ref name resolved via RefSpec),
// newest commit first, per spec §4.8.
func (r *Repository) Log(startRef string, opts LogOptions) ([]*object.Commit, error) {
	var start githash.Oid
	var err error
	if startRef == refs.Head {
		h, herr := r.Head()
		if herr != nil {
			return nil, herr
		}
		start = h.Oid
	} else {
		start, err = r.RefSpec(startRef)
	}
	if err != nil {
		start, err = r.ResolveOid(startRef)
		if err != nil {
			return nil, err
		}
	}

	w := history.New(r.backend, start, opts)
	var out []*object.Commit
	for {
		c, ok, err := w.Next()
		if err != nil {
			return nil, newError(KindIO, "could not walk history", err)
		}
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out, nil
}
