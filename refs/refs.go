// Package refs implements the reference namespace described in spec §3:
// HEAD, branches, remote branches and tags, each a named pointer stored
// either as a 40-hex OID or as a symbolic "ref: <target>\n" indirection.
//
// This package is storage-agnostic: Reference and Head are plain value
// types, and resolution only depends on a caller-supplied Finder. The
// on-disk store lives in package backend/fsbackend, which depends on
// this package rather than the other way around (mirrors how the
// teacher repo splits ginternals.Reference from backend/fsbackend).
package refs

import (
	"errors"
	"strings"

	"github.com/halide-vcs/gitkit/githash"
)

// Well-known reference names.
const (
	Head   = "HEAD"
	Master = "master"
	Main   = "main"
)

// Sentinel errors. Wrapped with xerrors.Errorf("...: %w", Err...) at the
// call site so callers can branch with errors.Is.
var (
	ErrRefNotFound     = errors.New("reference not found")
	ErrRefExists       = errors.New("reference already exists")
	ErrRefNameInvalid  = errors.New("reference name is not valid")
	ErrRefInvalid      = errors.New("reference is not valid")
	ErrPackedRefInvalid = errors.New("packed-refs file is invalid")
	ErrUnknownRefType  = errors.New("unknown reference type")
)

// Type is the kind of value a Reference holds.
type Type int8

const (
	// OidType is a reference that targets an Oid directly.
	OidType Type = 1
	// SymbolicType is a reference that targets another reference by name.
	SymbolicType Type = 2
)

// Reference is a named pointer, as described in spec §3's Reference
// entity: a 40-hex OID, or the literal text "ref: <target>\n" pointing
// at another reference by name.
type Reference struct {
	name   string
	target string
	id     githash.Oid
	typ    Type
}

// NewReference builds a reference that points directly at target.
func NewReference(name string, target githash.Oid) *Reference {
	return &Reference{typ: OidType, name: name, id: target}
}

// NewSymbolicReference builds a reference that points at another
// reference by name, e.g. HEAD pointing at refs/heads/main.
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{typ: SymbolicType, name: name, target: target}
}

// Name returns the full reference name, e.g. "refs/heads/main".
func (r *Reference) Name() string { return r.name }

// Target returns the Oid this reference (or the chain it starts)
// resolves to. Only meaningful once the reference has gone through
// Resolve: a freshly-built symbolic reference has a zero Target.
func (r *Reference) Target() githash.Oid { return r.id }

// Type returns whether this is a direct or symbolic reference.
func (r *Reference) Type() Type { return r.typ }

// SymbolicTarget returns the name this reference points at. Only valid
// when Type() == SymbolicType.
func (r *Reference) SymbolicTarget() string { return r.target }

// IsRefNameValid reports whether name is a legal reference name, per
// the rules documented in spec §3 and git-check-ref-format(1):
//   - not empty, doesn't start or end with '/', doesn't end with '.'
//   - no control characters, no space, and none of * ? ~ : ^ [ \
//   - no "@{" and no ".." anywhere
//   - no path segment is empty, starts with '.', ends with '.', or
//     ends with ".lock"
func IsRefNameValid(name string) bool {
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		switch c {
		case '*', '?', '~', ':', '^', '[', '\\', ' ':
			return false
		}
		if i < len(name)-1 && (name[i:i+2] == "@{" || name[i:i+2] == "..") {
			return false
		}
	}

	for _, s := range strings.Split(name, "/") {
		if s == "" || s[0] == '.' || s[len(s)-1] == '.' || strings.HasSuffix(s, ".lock") {
			return false
		}
	}
	return true
}
