package object_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/stretchr/testify/require"
)

func TestTreeRoundTrip(t *testing.T) {
	hash := githash.NewSHA1()
	blob := object.New(hash, object.KindBlob, []byte("hi"))

	tree := object.NewTree(hash, []object.TreeEntry{
		{Name: "b.txt", ID: blob.ID(), Mode: object.ModeFile},
		{Name: "a.txt", ID: blob.ID(), Mode: object.ModeFile},
	})

	parsed, err := object.ParseTree(hash, tree.ToObject())
	require.NoError(t, err)
	require.Equal(t, tree.Entries(), parsed.Entries())
}

func TestTreeCanonicalSortOrder(t *testing.T) {
	hash := githash.NewSHA1()
	blob := object.New(hash, object.KindBlob, []byte("x")).ID()

	tree := object.NewTree(hash, []object.TreeEntry{
		{Name: "lib.go", ID: blob, Mode: object.ModeFile},
		{Name: "lib", ID: blob, Mode: object.ModeSubtree},
	})

	names := []string{}
	for _, e := range tree.Entries() {
		names = append(names, e.Name)
	}
	// "lib.go" sorts before the "lib" directory because directory names
	// compare as if suffixed with '/' ('.' is 0x2E, '/' is 0x2F).
	require.Equal(t, []string{"lib.go", "lib"}, names)
}

func TestParseTreeRejectsUnknownMode(t *testing.T) {
	hash := githash.NewSHA1()
	blob := object.New(hash, object.KindBlob, []byte("x")).ID()
	payload := []byte("100664 weird.txt\x00" + string(blob.Bytes()))
	raw := object.New(hash, object.KindTree, payload)

	_, err := object.ParseTree(hash, raw)
	require.ErrorIs(t, err, object.ErrInvalidObject)
}
