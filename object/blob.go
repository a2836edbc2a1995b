package object

import (
	"bytes"

	"github.com/halide-vcs/gitkit/githash"
)

// Blob is an opaque, content-addressed byte sequence.
type Blob struct {
	raw *Object
}

// NewBlob wraps a raw Object as a Blob. The caller is responsible for
// making sure o.Kind() == KindBlob.
func NewBlob(o *Object) *Blob { return &Blob{raw: o} }

// ID returns the blob's id.
func (b *Blob) ID() githash.Oid { return b.raw.ID() }

// Bytes returns the blob's content.
func (b *Blob) Bytes() []byte { return b.raw.Bytes() }

// Size returns the size, in bytes, of the blob's content.
func (b *Blob) Size() int { return b.raw.Size() }

// IsBinary reports whether the blob's content contains a NUL byte,
// which is the only heuristic spec §3 asks for: no UTF-8 validation,
// no statistical analysis.
func (b *Blob) IsBinary() bool {
	return bytes.IndexByte(b.raw.Bytes(), 0) != -1
}

// ToObject returns the Blob's underlying raw Object.
func (b *Blob) ToObject() *Object { return b.raw }
