package githash

import (
	"crypto/sha1" //nolint:gosec // content-addressing, not used for any security property
	"encoding/hex"
	"fmt"
	"strconv"
)

const sha1OidSize = 20

var zeroOid = oid{}

// sha1Hash is the Hash implementation used by every object store and
// every wire format in this library.
//
// Git's object format is defined in terms of SHA-1's 20-byte digest,
// and the incremental absorb-block/finalize state machine described by
// RFC 3174 is exactly what crypto/sha1 implements under the hood
// (crypto/sha1.digest keeps the same {h[0..4], length, pending-block}
// state and the same four 20-round bands of Boolean functions and
// constants). There is no third-party SHA-1 implementation anywhere in
// the example corpus, and re-deriving a hash primitive by hand instead
// of using the standard library's audited, constant-structure
// implementation would be a regression, not an improvement — see
// DESIGN.md for the longer version of this note.
type sha1Hash struct{}

// NewSHA1 returns the SHA-1 Hash implementation.
func NewSHA1() Hash { return sha1Hash{} }

func (sha1Hash) Name() string  { return "sha1" }
func (sha1Hash) OidSize() int  { return sha1OidSize }
func (sha1Hash) Zero() Oid     { return zeroOid }

func (sha1Hash) Sum(b []byte) Oid {
	var o oid = sha1.Sum(b)
	return o
}

// HashObject returns the Oid of a git-framed object: the kind, a
// space, the decimal payload length, a NUL, then the payload.
func (h sha1Hash) HashObject(kind string, payload []byte) Oid {
	header := kind + " " + strconv.Itoa(len(payload)) + "\x00"
	s := sha1.New() //nolint:gosec
	s.Write([]byte(header))
	s.Write(payload)
	var o oid
	copy(o[:], s.Sum(nil))
	return o
}

func (sha1Hash) FromHex(str string) (Oid, error) {
	b, err := hex.DecodeString(str)
	if err != nil {
		return zeroOid, fmt.Errorf("%s: %w", err.Error(), ErrInvalidOid)
	}
	return sha1Hash{}.FromBytes(b)
}

func (sha1Hash) FromBytes(b []byte) (Oid, error) {
	if len(b) != sha1OidSize {
		return zeroOid, ErrInvalidOid
	}
	var o oid
	copy(o[:], b)
	return o, nil
}

// oid is the SHA-1 implementation of Oid: a plain 20-byte array, so two
// Oids are comparable and hashable with ==, which the history walker's
// visited-set and the diff engine's path maps rely on.
type oid [sha1OidSize]byte

func (o oid) Bytes() []byte { return o[:] }
func (o oid) String() string { return hex.EncodeToString(o[:]) }
func (o oid) Short() string  { return hex.EncodeToString(o[:])[:7] }
func (o oid) IsZero() bool   { return o == zeroOid }
