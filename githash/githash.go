// Package githash implements the object-identity hash used to
// content-address everything stored in the object database.
//
// The library only ever uses SHA-1 (spec'd data formats are all SHA-1
// sized), but the Hash/Oid split mirrors how the teacher repo keeps the
// algorithm pluggable behind an interface so a future SHA-256 repo
// format wouldn't require touching every caller.
package githash

import "errors"

// ErrInvalidOid is returned when a value cannot be interpreted as an Oid.
var ErrInvalidOid = errors.New("invalid oid")

// Hash is a content-addressing hash algorithm as used by git.
type Hash interface {
	// Name returns the name of the algorithm (e.g. "sha1").
	Name() string
	// OidSize returns the size, in bytes, of an Oid produced by this hash.
	OidSize() int
	// Sum returns the Oid of the given bytes.
	Sum(b []byte) Oid
	// HashObject returns the Oid of a git-framed object:
	// "<kind> <len>\0<payload>".
	HashObject(kind string, payload []byte) Oid
	// FromHex parses a hex string (upper or lower case) into an Oid.
	FromHex(s string) (Oid, error)
	// FromBytes casts a raw, already-decoded Oid-sized byte slice into an Oid.
	FromBytes(b []byte) (Oid, error)
	// Zero returns the zero-value Oid for this hash.
	Zero() Oid
}

// Oid is a content-addressed object identifier.
type Oid interface {
	// Bytes returns the raw, binary form of the Oid.
	Bytes() []byte
	// String returns the canonical lowercase hex form (40 chars for SHA-1).
	String() string
	// Short returns the first 7 hex characters.
	Short() string
	// IsZero returns whether this is the zero-value Oid.
	IsZero() bool
}
