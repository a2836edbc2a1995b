// Package backend defines the storage interface used to persist and
// retrieve objects and references; the filesystem implementation of it
// lives in package backend/fsbackend.
package backend

import (
	"errors"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/refs"
)

// WalkStop is a sentinel error a walk callback can return to stop
// iteration early without the walk itself reporting a failure.
var WalkStop = errors.New("stop walking")

// ErrObjectNotFound is returned when an oid has no corresponding
// loose object on disk.
var ErrObjectNotFound = errors.New("object not found")

// ErrPrefixTooShort is returned by ResolvePrefix for a hex prefix
// shorter than 4 characters (spec §4.4).
var ErrPrefixTooShort = errors.New("oid prefix must be at least 4 characters")

// ErrAmbiguousPrefix is returned by ResolvePrefix when more than one
// object matches the given hex prefix.
var ErrAmbiguousPrefix = errors.New("oid prefix is ambiguous")

// OidWalkFunc is invoked once per object id during WalkLooseObjectIDs.
type OidWalkFunc func(oid githash.Oid) error

// RefWalkFunc is invoked once per reference during WalkReferences.
type RefWalkFunc func(ref *refs.Reference) error

// Backend stores and retrieves the two things a repository persists on
// disk: loose objects and references. Spec §5 scopes this library to a
// single-writer, lock-free usage model, so
// unlike the teacher repo this interface makes no concurrency promises
// of its own — callers needing cross-process coordination must
// serialize their own access.
type Backend interface {
	// Close releases any resources held by the backend.
	Close() error
	// Init lays out a fresh .git directory structure.
	Init() error

	// Object returns the object with the given oid.
	Object(oid githash.Oid) (*object.Object, error)
	// HasObject reports whether an object exists in the store.
	HasObject(oid githash.Oid) (bool, error)
	// WriteObject persists o, returning its oid. Writing an object that
	// already exists is a no-op beyond returning its oid.
	WriteObject(o *object.Object) (githash.Oid, error)
	// WalkLooseObjectIDs runs f over every oid present in the store.
	WalkLooseObjectIDs(f OidWalkFunc) error
	// ResolvePrefix finds the unique object whose hex id starts with
	// prefix. ErrPrefixTooShort if len(prefix) < 4, ErrObjectNotFound
	// if none match, ErrAmbiguousPrefix if more than one does.
	ResolvePrefix(prefix string) (githash.Oid, error)

	// Reference returns a stored reference by name, resolved through
	// any symbolic indirection. A missing reference yields an error
	// wrapping refs.ErrRefNotFound.
	Reference(name string) (*refs.Reference, error)
	// WriteReference persists ref, overwriting any existing value.
	WriteReference(ref *refs.Reference) error
	// WriteReferenceSafe persists ref, failing with refs.ErrRefExists
	// if a reference by that name already exists.
	WriteReferenceSafe(ref *refs.Reference) error
	// DeleteReference removes a reference from the store.
	DeleteReference(name string) error
	// WalkReferences runs f over every loose reference under refs/,
	// plus entries from packed-refs not shadowed by a loose one.
	WalkReferences(f RefWalkFunc) error
	// Head reads HEAD without following it past the first branch hop.
	Head() (*refs.Head, error)

	// Hash returns the content-addressing algorithm this store uses.
	Hash() githash.Hash
}
