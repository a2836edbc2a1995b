// Package index implements the binary codec and in-memory mutation API
// for the staging index (the DIRC format), described in spec §4.7. The
// teacher repo has no staging-area concept at all (it only reads and
// writes loose objects and refs), so this package's shape is grounded
// on the object package's codec style (explicit Parse/Serialize pair,
// sentinel errors wrapped with xerrors) rather than on any single
// teacher file.
package index

import (
	"errors"
	"sort"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
)

// ErrInvalidIndex is returned for any malformed index stream: bad
// signature, unsupported version, an unmapped on-disk mode, or (when
// Strict trailer checking is requested) a trailer checksum mismatch.
var ErrInvalidIndex = errors.New("invalid index")

// Signature is the 4-byte magic every index stream starts with.
const Signature = "DIRC"

// Supported on-disk versions. Version 4's path-compression scheme is
// not implemented; Parse accepts a v4 header but requires entries to
// carry the name in full, same as v2/v3.
const (
	MinVersion = 2
	MaxVersion = 4
)

// extendedFlag marks an entry as carrying the optional 2-byte extended
// flags field (v3+).
const extendedFlag = 0x4000

// nameMask is the portion of flags holding min(name_len, 0xFFF).
const nameMask = 0x0FFF

// stageShift/stageMask locate the 2-bit stage number within flags.
const (
	stageShift = 12
	stageMask  = 0x3
)

// Entry is a single staged file, matching spec §3's Index entry layout.
type Entry struct {
	CTimeSec  uint32
	CTimeNano uint32
	MTimeSec  uint32
	MTimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      object.Mode
	UID       uint32
	GID       uint32
	Size      uint32
	ID        githash.Oid
	Stage     uint8
	Path      string
}

// Index is the mutable staging-area document: a sorted list of Entry,
// rewritten atomically on every save (spec §3's Lifecycles note).
type Index struct {
	Version uint32
	entries []Entry
}

// New returns an empty index at the given on-disk version.
func New(version uint32) *Index {
	return &Index{Version: version}
}

// Entries returns the index's entries, sorted ascending by (path, stage).
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Get returns the stage-0 entry for path, if present.
func (idx *Index) Get(path string) (Entry, bool) {
	for _, e := range idx.entries {
		if e.Path == path && e.Stage == 0 {
			return e, true
		}
	}
	return Entry{}, false
}

// Add inserts e, replacing any existing entry with the same (Path, Stage).
func (idx *Index) Add(e Entry) {
	for i, existing := range idx.entries {
		if existing.Path == e.Path && existing.Stage == e.Stage {
			idx.entries[i] = e
			idx.sort()
			return
		}
	}
	idx.entries = append(idx.entries, e)
	idx.sort()
}

// Remove drops every stage of path from the index.
func (idx *Index) Remove(path string) {
	out := idx.entries[:0]
	for _, e := range idx.entries {
		if e.Path != path {
			out = append(out, e)
		}
	}
	idx.entries = out
}

// Clear empties the index.
func (idx *Index) Clear() {
	idx.entries = nil
}

// Len returns the number of entries currently staged.
func (idx *Index) Len() int { return len(idx.entries) }

func (idx *Index) sort() {
	sort.Slice(idx.entries, func(i, j int) bool {
		if idx.entries[i].Path != idx.entries[j].Path {
			return idx.entries[i].Path < idx.entries[j].Path
		}
		return idx.entries[i].Stage < idx.entries[j].Stage
	})
}
