// Package pathmap flattens a tree object into a path → (oid, mode)
// map, the shared engine behind the tree diff, history path filter,
// and status computations (spec §4.9's "map-based tree diff" design
// note: one flattening routine reused verbatim by every consumer
// instead of a recursive co-walk per caller).
package pathmap

import (
	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"golang.org/x/xerrors"
)

// Entry is a flattened tree leaf: a blob or submodule pointer and its mode.
type Entry struct {
	ID   githash.Oid
	Mode object.Mode
}

// Flatten recursively expands the tree at treeID into a path → Entry
// map using forward-slash-joined paths. A zero treeID (as used for a
// root commit's nonexistent parent) yields an empty map.
func Flatten(b backend.Backend, treeID githash.Oid) (map[string]Entry, error) {
	out := map[string]Entry{}
	if treeID.IsZero() {
		return out, nil
	}
	if err := flattenInto(b, treeID, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(b backend.Backend, treeID githash.Oid, prefix string, out map[string]Entry) error {
	obj, err := b.Object(treeID)
	if err != nil {
		return xerrors.Errorf("could not read tree %s: %w", treeID.Short(), err)
	}
	tree, err := object.ParseTree(b.Hash(), obj)
	if err != nil {
		return xerrors.Errorf("could not parse tree %s: %w", treeID.Short(), err)
	}

	for _, e := range tree.Entries() {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + path
		}
		if e.Mode == object.ModeSubtree {
			if err := flattenInto(b, e.ID, path, out); err != nil {
				return err
			}
			continue
		}
		out[path] = Entry{ID: e.ID, Mode: e.Mode}
	}
	return nil
}
