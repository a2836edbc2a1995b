package refs

import (
	"bytes"
	"errors"
	"strings"

	"github.com/halide-vcs/gitkit/githash"
	"golang.org/x/xerrors"
)

// maxResolveDepth bounds symbolic-reference indirection. Spec §9 allows a
// simple depth bound in place of full cycle detection; we additionally
// track visited names (like the teacher repo) so a short cycle is
// reported as ErrRefInvalid rather than silently truncated at the depth
// limit with a confusing ErrRefNotFound deeper in the chain.
const maxResolveDepth = 10

// Finder returns the raw on-disk content of the reference named name:
// either "<40-hex-oid>\n" or "ref: <target>\n". Implementations live in
// package backend/fsbackend; this indirection keeps resolution logic
// free of any filesystem dependency.
type Finder func(name string) ([]byte, error)

// Resolve follows a (possibly symbolic) reference chain starting at
// name down to a direct, Oid-holding Reference.
func Resolve(hash githash.Hash, name string, finder Finder) (*Reference, error) {
	return resolve(hash, name, finder, map[string]struct{}{})
}

func resolve(hash githash.Hash, name string, finder Finder, visited map[string]struct{}) (*Reference, error) {
	if len(visited) >= maxResolveDepth {
		return nil, xerrors.Errorf("exceeded max resolution depth of %d: %w", maxResolveDepth, ErrRefInvalid)
	}
	if _, ok := visited[name]; ok {
		return nil, xerrors.Errorf("circular symbolic reference at %q: %w", name, ErrRefInvalid)
	}
	visited[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf("ref %q: %w", name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("ref: ")) {
		symbolicTarget := string(data[5:])
		target, err := resolve(hash, symbolicTarget, finder, visited)
		if err != nil {
			return nil, err
		}
		return &Reference{
			typ:    SymbolicType,
			name:   name,
			target: symbolicTarget,
			id:     target.id,
		}, nil
	}

	oid, err := hash.FromHex(string(data))
	if err != nil {
		return nil, xerrors.Errorf("ref %q holds %q: %w", name, string(data), ErrRefInvalid)
	}
	return &Reference{typ: OidType, name: name, id: oid}, nil
}

// HeadKind distinguishes an attached (symbolic-to-a-branch) HEAD from a
// detached (direct-OID) one.
type HeadKind int8

const (
	// HeadBranch is an attached HEAD: it points at a branch ref.
	HeadBranch HeadKind = 1
	// HeadDetached is a HEAD pointing directly at a commit Oid.
	HeadDetached HeadKind = 2
)

// Head is the value-type view of HEAD described in spec §3: either
// Branch{name, oid} or Detached{oid}.
type Head struct {
	Kind   HeadKind
	Branch string
	Oid    githash.Oid
}

// headsPrefix is the directory branch refs live under.
const headsPrefix = "refs/heads/"

// ResolveHead reads HEAD and classifies it as attached or detached. An
// attached HEAD pointing at a branch that doesn't exist yet (the
// "unborn branch" state right after init) resolves with a zero Oid
// rather than failing, per SPEC_FULL.md §12.
func ResolveHead(hash githash.Hash, finder Finder) (*Head, error) {
	data, err := finder(Head)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if !bytes.HasPrefix(data, []byte("ref: ")) {
		oid, err := hash.FromHex(string(data))
		if err != nil {
			return nil, xerrors.Errorf("HEAD holds %q: %w", string(data), ErrRefInvalid)
		}
		return &Head{Kind: HeadDetached, Oid: oid}, nil
	}

	target := string(data[5:])
	ref, err := resolve(hash, target, finder, map[string]struct{}{})
	if err != nil {
		if errors.Is(err, ErrRefNotFound) && strings.HasPrefix(target, headsPrefix) {
			return &Head{Kind: HeadBranch, Branch: strings.TrimPrefix(target, headsPrefix), Oid: hash.Zero()}, nil
		}
		return nil, err
	}

	h := &Head{Kind: HeadBranch, Oid: ref.id}
	if strings.HasPrefix(target, headsPrefix) {
		h.Branch = strings.TrimPrefix(target, headsPrefix)
	} else {
		h.Branch = target
	}
	return h, nil
}
