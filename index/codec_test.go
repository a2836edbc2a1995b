package index_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/object"
	"github.com/stretchr/testify/require"
)

func TestRoundTripEmptyIndex(t *testing.T) {
	hash := githash.NewSHA1()
	idx := index.New(2)

	data := index.Serialize(hash, idx)
	parsed, err := index.Parse(hash, data, true)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.Len())
	require.Equal(t, uint32(2), parsed.Version)
}

func TestRoundTripEntriesSortedByPathThenStage(t *testing.T) {
	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("x"))
	idx := index.New(2)

	idx.Add(index.Entry{Path: "b.txt", Mode: object.ModeFile, ID: oid, Size: 3})
	idx.Add(index.Entry{Path: "a.txt", Mode: object.ModeFile, ID: oid, Size: 1})
	idx.Add(index.Entry{Path: "a.txt", Mode: object.ModeFile, ID: oid, Stage: 1, Size: 2})

	data := index.Serialize(hash, idx)
	parsed, err := index.Parse(hash, data, true)
	require.NoError(t, err)

	entries := parsed.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "a.txt", entries[0].Path)
	require.Equal(t, uint8(0), entries[0].Stage)
	require.Equal(t, "a.txt", entries[1].Path)
	require.Equal(t, uint8(1), entries[1].Stage)
	require.Equal(t, "b.txt", entries[2].Path)
}

func TestParseRejectsBadSignature(t *testing.T) {
	hash := githash.NewSHA1()
	data := append([]byte("XXXX"), make([]byte, 28)...)
	_, err := index.Parse(hash, data, true)
	require.ErrorIs(t, err, index.ErrInvalidIndex)
}

func TestParseRejectsChecksumMismatchWhenStrict(t *testing.T) {
	hash := githash.NewSHA1()
	idx := index.New(2)
	idx.Add(index.Entry{Path: "a.txt", Mode: object.ModeFile, ID: hash.Sum([]byte("x"))})
	data := index.Serialize(hash, idx)
	data[len(data)-1] ^= 0xFF

	_, err := index.Parse(hash, data, true)
	require.ErrorIs(t, err, index.ErrInvalidIndex)
}

func TestMutations(t *testing.T) {
	hash := githash.NewSHA1()
	oid := hash.Sum([]byte("x"))
	idx := index.New(2)

	idx.Add(index.Entry{Path: "a.txt", Mode: object.ModeFile, ID: oid})
	idx.Add(index.Entry{Path: "b.txt", Mode: object.ModeFile, ID: oid})
	require.Equal(t, 2, idx.Len())

	idx.Remove("a.txt")
	require.Equal(t, 1, idx.Len())
	_, found := idx.Get("a.txt")
	require.False(t, found)

	idx.Clear()
	require.Equal(t, 0, idx.Len())
}
