package fsbackend_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/stretchr/testify/require"
)

func TestWriteObjectThenReadBack(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	blob := object.New(hash, object.KindBlob, []byte("hello world"))

	oid, err := b.WriteObject(blob)
	require.NoError(t, err)
	require.Equal(t, blob.ID().String(), oid.String())

	has, err := b.HasObject(oid)
	require.NoError(t, err)
	require.True(t, has)

	got, err := b.Object(oid)
	require.NoError(t, err)
	require.Equal(t, blob.Bytes(), got.Bytes())
	require.Equal(t, object.KindBlob, got.Kind())
}

func TestWriteObjectIsIdempotent(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	blob := object.New(githash.NewSHA1(), object.KindBlob, []byte("same content"))
	oid1, err := b.WriteObject(blob)
	require.NoError(t, err)
	oid2, err := b.WriteObject(blob)
	require.NoError(t, err)
	require.Equal(t, oid1.String(), oid2.String())
}

func TestObjectNotFound(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	missing := hash.Sum([]byte("nowhere"))

	has, err := b.HasObject(missing)
	require.NoError(t, err)
	require.False(t, has)

	_, err = b.Object(missing)
	require.ErrorIs(t, err, backend.ErrObjectNotFound)
}

func TestResolvePrefix(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	blob := object.New(hash, object.KindBlob, []byte("unique content for prefix test"))
	oid, err := b.WriteObject(blob)
	require.NoError(t, err)

	full := oid.String()
	got, err := b.ResolvePrefix(full[:8])
	require.NoError(t, err)
	require.Equal(t, full, got.String())

	_, err = b.ResolvePrefix(full[:3])
	require.ErrorIs(t, err, backend.ErrPrefixTooShort)

	_, err = b.ResolvePrefix("ffffffff")
	require.ErrorIs(t, err, backend.ErrObjectNotFound)
}

func TestWalkLooseObjectIDs(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.Init())

	hash := githash.NewSHA1()
	a := object.New(hash, object.KindBlob, []byte("a"))
	bb := object.New(hash, object.KindBlob, []byte("b"))
	_, err := b.WriteObject(a)
	require.NoError(t, err)
	_, err = b.WriteObject(bb)
	require.NoError(t, err)

	seen := map[string]bool{}
	err = b.WalkLooseObjectIDs(func(oid githash.Oid) error {
		seen[oid.String()] = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, seen[a.ID().String()])
	require.True(t, seen[bb.ID().String()])
}
