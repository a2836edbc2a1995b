package gitkit

import (
	"strings"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/refs"
)

// ResolveOid accepts either a full 40-hex OID or a 4-40 char prefix
// and returns the matching object id, per spec §4.4's prefix lookup.
func (r *Repository) ResolveOid(hexOrPrefix string) (githash.Oid, error) {
	if len(hexOrPrefix) == r.hash.OidSize()*2 {
		oid, err := r.hash.FromHex(hexOrPrefix)
		if err == nil {
			return oid, nil
		}
	}
	oid, err := r.backend.ResolvePrefix(hexOrPrefix)
	if err != nil {
		return nil, newError(KindInvalidOid, hexOrPrefix, err)
	}
	return oid, nil
}

// Object returns the object with the given full or prefix OID.
func (r *Repository) Object(hexOrPrefix string) (*object.Object, error) {
	oid, err := r.ResolveOid(hexOrPrefix)
	if err != nil {
		return nil, err
	}
	o, err := r.backend.Object(oid)
	if err != nil {
		return nil, newError(KindObjectNotFound, hexOrPrefix, err)
	}
	return o, nil
}

// Commit returns the commit with the given full or prefix OID.
func (r *Repository) Commit(hexOrPrefix string) (*object.Commit, error) {
	o, err := r.Object(hexOrPrefix)
	if err != nil {
		return nil, err
	}
	c, err := object.ParseCommit(r.hash, o)
	if err != nil {
		return nil, newError(KindTypeMismatch, hexOrPrefix, err)
	}
	return c, nil
}

// Tree returns the tree with the given full or prefix OID.
func (r *Repository) Tree(hexOrPrefix string) (*object.Tree, error) {
	o, err := r.Object(hexOrPrefix)
	if err != nil {
		return nil, err
	}
	t, err := object.ParseTree(r.hash, o)
	if err != nil {
		return nil, newError(KindTypeMismatch, hexOrPrefix, err)
	}
	return t, nil
}

// Blob returns the blob with the given full or prefix OID.
func (r *Repository) Blob(hexOrPrefix string) (*object.Blob, error) {
	o, err := r.Object(hexOrPrefix)
	if err != nil {
		return nil, err
	}
	if o.Kind() != object.KindBlob {
		return nil, newError(KindTypeMismatch, hexOrPrefix, nil)
	}
	return object.NewBlob(o), nil
}

// RefSpec resolves an arbitrary ref specifier: a full 40-hex OID used
// verbatim, a "refs/..." name used verbatim, or else tried as
// "refs/heads/<name>" (spec §4.6's "resolve arbitrary refspec").
func (r *Repository) RefSpec(spec string) (githash.Oid, error) {
	if len(spec) == r.hash.OidSize()*2 {
		if oid, err := r.hash.FromHex(spec); err == nil {
			return oid, nil
		}
	}
	name := spec
	if !strings.HasPrefix(name, "refs/") {
		name = "refs/heads/" + name
	}
	ref, err := r.backend.Reference(name)
	if err != nil {
		return nil, newError(KindRefNotFound, spec, err)
	}
	return ref.Target(), nil
}

// Branch is a branch ref paired with the commit OID it points to.
type Branch struct {
	Name string
	Oid  githash.Oid
}

// Branches enumerates refs/heads/.
func (r *Repository) Branches() ([]Branch, error) {
	return r.listRefs("refs/heads/")
}

// RemoteBranches enumerates refs/remotes/.
func (r *Repository) RemoteBranches() ([]Branch, error) {
	return r.listRefs("refs/remotes/")
}

func (r *Repository) listRefs(prefix string) ([]Branch, error) {
	var out []Branch
	err := r.backend.WalkReferences(func(ref *refs.Reference) error {
		if strings.HasPrefix(ref.Name(), prefix) {
			out = append(out, Branch{Name: strings.TrimPrefix(ref.Name(), prefix), Oid: ref.Target()})
		}
		return nil
	})
	if err != nil {
		return nil, newError(KindIO, "could not enumerate "+prefix, err)
	}
	return out, nil
}

// Tag is a tag ref, resolved to its target commit and (for annotated
// tags) its message and tagger.
type Tag struct {
	Name    string
	Target  githash.Oid
	Message string // empty for lightweight tags
	Tagger  object.Signature
}

// Tags enumerates refs/tags/, resolving annotated tag objects to
// surface their message and tagger (spec §4.6).
func (r *Repository) Tags() ([]Tag, error) {
	var out []Tag
	err := r.backend.WalkReferences(func(ref *refs.Reference) error {
		const prefix = "refs/tags/"
		if !strings.HasPrefix(ref.Name(), prefix) {
			return nil
		}
		name := strings.TrimPrefix(ref.Name(), prefix)
		tag := Tag{Name: name, Target: ref.Target()}

		obj, err := r.backend.Object(ref.Target())
		if err == nil && obj.Kind() == object.KindTag {
			parsed, perr := object.ParseTag(r.hash, obj)
			if perr == nil {
				tag.Target = parsed.Target()
				tag.Message = parsed.Message()
				tag.Tagger = parsed.Tagger()
			}
		}
		out = append(out, tag)
		return nil
	})
	if err != nil {
		return nil, newError(KindIO, "could not enumerate tags", err)
	}
	return out, nil
}
