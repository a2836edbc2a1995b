package fsbackend_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/refs"
	"github.com/stretchr/testify/require"
)

func TestWriteReferenceThenRead(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("commit"))
	ref := refs.NewReference("refs/heads/feature", oid)

	require.NoError(t, b.WriteReference(ref))

	got, err := b.Reference("refs/heads/feature")
	require.NoError(t, err)
	require.Equal(t, oid.String(), got.Target().String())
}

func TestWriteReferenceSafeRejectsExisting(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("commit"))
	ref := refs.NewReference("refs/heads/main", oid)

	require.NoError(t, b.WriteReferenceSafe(ref))
	err := b.WriteReferenceSafe(ref)
	require.ErrorIs(t, err, refs.ErrRefExists)
}

func TestDeleteReferencePrunesEmptyDirs(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("commit"))
	ref := refs.NewReference("refs/heads/feature/x", oid)
	require.NoError(t, b.WriteReference(ref))

	require.NoError(t, b.DeleteReference("refs/heads/feature/x"))

	_, err := b.Reference("refs/heads/feature/x")
	require.ErrorIs(t, err, refs.ErrRefNotFound)
}

func TestWalkReferences(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("commit"))
	require.NoError(t, b.WriteReference(refs.NewReference("refs/heads/main", oid)))
	require.NoError(t, b.WriteReference(refs.NewReference("refs/tags/v1", oid)))

	names := map[string]bool{}
	err := b.WalkReferences(func(ref *refs.Reference) error {
		names[ref.Name()] = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, names["refs/heads/main"])
	require.True(t, names["refs/tags/v1"])
}

func TestWalkReferencesCanStopEarly(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("commit"))
	require.NoError(t, b.WriteReference(refs.NewReference("refs/heads/a", oid)))
	require.NoError(t, b.WriteReference(refs.NewReference("refs/heads/b", oid)))

	count := 0
	err := b.WalkReferences(func(ref *refs.Reference) error {
		count++
		return backend.WalkStop
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
