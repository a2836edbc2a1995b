package refs_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/refs"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func memFinder(store map[string][]byte) refs.Finder {
	return func(name string) ([]byte, error) {
		data, ok := store[name]
		if !ok {
			return nil, xerrors.Errorf("ref %q: %w", name, refs.ErrRefNotFound)
		}
		return data, nil
	}
}

func TestResolveDirectReference(t *testing.T) {
	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("x"))
	store := map[string][]byte{
		"refs/heads/main": []byte(oid.String() + "\n"),
	}

	ref, err := refs.Resolve(hash, "refs/heads/main", memFinder(store))
	require.NoError(t, err)
	require.Equal(t, refs.OidType, ref.Type())
	require.Equal(t, oid.String(), ref.Target().String())
}

func TestResolveSymbolicChain(t *testing.T) {
	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("x"))
	store := map[string][]byte{
		"HEAD":            []byte("ref: refs/heads/main\n"),
		"refs/heads/main": []byte(oid.String() + "\n"),
	}

	ref, err := refs.Resolve(hash, "HEAD", memFinder(store))
	require.NoError(t, err)
	require.Equal(t, refs.SymbolicType, ref.Type())
	require.Equal(t, "refs/heads/main", ref.SymbolicTarget())
	require.Equal(t, oid.String(), ref.Target().String())
}

func TestResolveDetectsCircularReference(t *testing.T) {
	hash := githash.NewSHA1()
	store := map[string][]byte{
		"refs/heads/a": []byte("ref: refs/heads/b\n"),
		"refs/heads/b": []byte("ref: refs/heads/a\n"),
	}

	_, err := refs.Resolve(hash, "refs/heads/a", memFinder(store))
	require.ErrorIs(t, err, refs.ErrRefInvalid)
}

func TestResolveRejectsInvalidName(t *testing.T) {
	hash := githash.NewSHA1()
	_, err := refs.Resolve(hash, "refs/heads/bad..name", memFinder(map[string][]byte{}))
	require.ErrorIs(t, err, refs.ErrRefNameInvalid)
}

func TestResolveHeadDetached(t *testing.T) {
	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("x"))
	store := map[string][]byte{"HEAD": []byte(oid.String() + "\n")}

	h, err := refs.ResolveHead(hash, memFinder(store))
	require.NoError(t, err)
	require.Equal(t, refs.HeadDetached, h.Kind)
	require.Equal(t, oid.String(), h.Oid.String())
}

func TestResolveHeadUnbornBranch(t *testing.T) {
	hash := githash.NewSHA1()
	store := map[string][]byte{"HEAD": []byte("ref: refs/heads/main\n")}

	h, err := refs.ResolveHead(hash, memFinder(store))
	require.NoError(t, err)
	require.Equal(t, refs.HeadBranch, h.Kind)
	require.Equal(t, "main", h.Branch)
	require.True(t, h.Oid.IsZero())
}

func TestIsRefNameValid(t *testing.T) {
	valid := []string{"refs/heads/main", "refs/heads/feature/x", "HEAD"}
	invalid := []string{"", "/", "refs/heads/", "refs/heads/.hidden", "refs/heads/x.lock", "a..b", "a b", "a~b", "a^b", "a:b", "a?b", "a*b", "a[b", "a@{b"}

	for _, n := range valid {
		require.True(t, refs.IsRefNameValid(n), n)
	}
	for _, n := range invalid {
		require.False(t, refs.IsRefNameValid(n), n)
	}
}
