package object

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/readutil"
	"golang.org/x/xerrors"
)

// Mode is the mode of an entry inside a tree.
type Mode int32

// The modes a tree entry may carry. Anything else is a parse error.
const (
	ModeFile       Mode = 0o100644
	ModeExecutable Mode = 0o100755
	ModeSymLink    Mode = 0o120000
	ModeSubmodule  Mode = 0o160000
	ModeSubtree    Mode = 0o040000
)

// IsValid reports whether m is one of the five modes git understands.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeSymLink, ModeSubmodule, ModeSubtree:
		return true
	default:
		return false
	}
}

// Kind returns the object kind that an entry with this mode points to.
func (m Mode) Kind() Kind {
	switch m {
	case ModeSubtree:
		return KindTree
	case ModeSubmodule:
		return KindCommit
	default:
		return KindBlob
	}
}

// TreeEntry is one entry of a tree object.
type TreeEntry struct {
	Name string
	ID   githash.Oid
	Mode Mode
}

// Tree is an ordered sequence of named, moded, content-addressed entries.
type Tree struct {
	raw     *Object
	entries []TreeEntry
}

// NewTree builds a Tree from entries, serializing them in git's
// canonical order (see sortEntries).
func NewTree(hash githash.Hash, entries []TreeEntry) *Tree {
	t := &Tree{entries: sortEntries(entries)}
	t.raw = t.toObject(hash)
	return t
}

// ParseTree decodes a tree object's payload.
//
// Each entry is encoded as "<octal-mode> <name>\0<20-byte-oid>",
// entries are simply concatenated, and on-disk order is preserved
// verbatim: callers must not assume ParseTree re-sorts anything.
func ParseTree(hash githash.Hash, o *Object) (*Tree, error) {
	if o.Kind() != KindTree {
		return nil, xerrors.Errorf("kind %s is not a tree: %w", o.Kind(), ErrInvalidObject)
	}

	data := o.Bytes()
	entries := []TreeEntry{}
	offset := 0
	for i := 1; offset < len(data); i++ {
		modeBytes := readutil.ReadTo(data[offset:], ' ')
		if modeBytes == nil {
			return nil, xerrors.Errorf("entry %d: missing mode: %w", i, ErrInvalidObject)
		}
		offset += len(modeBytes) + 1
		modeVal, err := strconv.ParseInt(string(modeBytes), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: invalid mode %q: %w", i, string(modeBytes), ErrInvalidObject)
		}
		mode := Mode(modeVal)
		if !mode.IsValid() {
			return nil, xerrors.Errorf("entry %d: unsupported mode %o: %w", i, modeVal, ErrInvalidObject)
		}

		nameBytes := readutil.ReadTo(data[offset:], 0)
		if nameBytes == nil {
			return nil, xerrors.Errorf("entry %d: missing name: %w", i, ErrInvalidObject)
		}
		offset += len(nameBytes) + 1

		if offset+hash.OidSize() > len(data) {
			return nil, xerrors.Errorf("entry %d: truncated oid: %w", i, ErrInvalidObject)
		}
		oid, err := hash.FromBytes(data[offset : offset+hash.OidSize()])
		if err != nil {
			return nil, xerrors.Errorf("entry %d: invalid oid: %w", i, ErrInvalidObject)
		}
		offset += hash.OidSize()

		entries = append(entries, TreeEntry{Name: string(nameBytes), ID: oid, Mode: mode})
	}

	return &Tree{raw: o, entries: entries}, nil
}

// Entries returns a copy of the tree's entries, in on-disk order.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the tree's id.
func (t *Tree) ID() githash.Oid { return t.raw.ID() }

// ToObject returns the Tree's underlying raw Object.
func (t *Tree) ToObject() *Object { return t.raw }

func (t *Tree) toObject(hash githash.Hash) *Object {
	buf := new(bytes.Buffer)
	for _, e := range t.entries {
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}
	return New(hash, KindTree, buf.Bytes())
}

// sortEntries returns entries in git's canonical tree order:
// byte-lexicographic on name, except subtree names sort as though
// suffixed with '/' so e.g. "lib" (a file) sorts before "lib.go" but
// "lib" (a directory) sorts after it.
func sortEntries(entries []TreeEntry) []TreeEntry {
	out := make([]TreeEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(e TreeEntry) string {
	if e.Mode == ModeSubtree {
		return e.Name + "/"
	}
	return e.Name
}
