// Package object implements the binary codecs for the four git object
// kinds (blob, tree, commit, tag) described in spec §3-4: parsing the
// on-disk "<kind> <size>\0<payload>" framing and serializing it back.
package object

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/readutil"
	"golang.org/x/xerrors"
)

// Sentinel errors. Every parse failure is wrapped with one of these so
// callers can branch with errors.Is without string matching.
var (
	ErrUnknownKind   = errors.New("unknown object kind")
	ErrInvalidObject = errors.New("invalid object")
	ErrSizeMismatch  = errors.New("object size does not match payload length")
)

// Kind is the type tag carried by the object framing.
type Kind int8

// The four kinds a loose object can be. Packfile-only delta kinds are
// out of scope (see spec §1 Non-goals: packfile decoding).
const (
	KindCommit Kind = 1
	KindTree   Kind = 2
	KindBlob   Kind = 3
	KindTag    Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// KindFromString maps the wire-format kind name to a Kind.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "commit":
		return KindCommit, nil
	case "tree":
		return KindTree, nil
	case "blob":
		return KindBlob, nil
	case "tag":
		return KindTag, nil
	default:
		return 0, ErrUnknownKind
	}
}

// Object is a raw, parsed git object: a kind plus its payload. Blob,
// Tree, Commit and Tag are typed views built from one of these.
type Object struct {
	hash    githash.Hash
	id      githash.Oid
	kind    Kind
	payload []byte
}

// New creates an in-memory object and computes its id.
func New(hash githash.Hash, kind Kind, payload []byte) *Object {
	o := &Object{hash: hash, kind: kind, payload: payload}
	o.id = hash.HashObject(kind.String(), payload)
	return o
}

// Parse decodes the framed form read back from a loose object file
// (post zlib-inflate): "<kind> <size>\0<payload>".
func Parse(hash githash.Hash, framed []byte) (*Object, error) {
	kindBytes := readutil.ReadTo(framed, ' ')
	if kindBytes == nil {
		return nil, xerrors.Errorf("missing kind: %w", ErrInvalidObject)
	}
	kind, err := KindFromString(string(kindBytes))
	if err != nil {
		return nil, xerrors.Errorf("unknown kind %q: %w", string(kindBytes), ErrInvalidObject)
	}
	offset := len(kindBytes) + 1

	sizeBytes := readutil.ReadTo(framed[offset:], 0)
	if sizeBytes == nil {
		return nil, xerrors.Errorf("missing size: %w", ErrInvalidObject)
	}
	size, err := strconv.Atoi(string(sizeBytes))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %q: %w", string(sizeBytes), ErrInvalidObject)
	}
	offset += len(sizeBytes) + 1

	payload := framed[offset:]
	if len(payload) != size {
		return nil, xerrors.Errorf("declared size %d, got %d: %w", size, len(payload), ErrSizeMismatch)
	}

	return &Object{
		hash:    hash,
		id:      hash.HashObject(kind.String(), payload),
		kind:    kind,
		payload: payload,
	}, nil
}

// ID returns the object's id, computed from its framed form.
func (o *Object) ID() githash.Oid { return o.id }

// Kind returns the object's kind.
func (o *Object) Kind() Kind { return o.kind }

// Size returns the length of the payload, in bytes.
func (o *Object) Size() int { return len(o.payload) }

// Bytes returns the object's raw payload (without the framing header).
func (o *Object) Bytes() []byte { return o.payload }

// Framed returns the "<kind> <size>\0<payload>" bytes that are hashed
// and, once zlib-compressed, written to disk.
func (o *Object) Framed() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(o.kind.String())
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(o.Size()))
	buf.WriteByte(0)
	buf.Write(o.payload)
	return buf.Bytes()
}
