package object_test

import (
	"testing"
	"time"

	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/object"
	"github.com/stretchr/testify/require"
)

func newSig(t time.Time) object.Signature {
	return object.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: t}
}

func TestCommitRoundTrip(t *testing.T) {
	hash := githash.NewSHA1()
	tree := object.NewTree(hash, nil)
	when := time.Unix(1700000000, 0).In(time.FixedZone("", -7*3600))
	author := newSig(when)

	commit := object.NewCommit(hash, tree.ID(), author, object.NewCommitOptions{
		Message: "Initial commit\n",
	})

	parsed, err := object.ParseCommit(hash, commit.ToObject())
	require.NoError(t, err)
	require.Equal(t, tree.ID().String(), parsed.TreeID().String())
	require.Empty(t, parsed.ParentIDs())
	require.Equal(t, author.Name, parsed.Author().Name)
	require.Equal(t, author.Email, parsed.Author().Email)
	require.Equal(t, author.When.Unix(), parsed.Author().When.Unix())
	require.Equal(t, "Initial commit\n", parsed.Message())
	require.Equal(t, "Initial commit", parsed.Summary())
}

func TestCommitWithParents(t *testing.T) {
	hash := githash.NewSHA1()
	tree := object.NewTree(hash, nil)
	author := newSig(time.Unix(1700000000, 0).UTC())
	parent := object.NewCommit(hash, tree.ID(), author, object.NewCommitOptions{Message: "root\n"})

	child := object.NewCommit(hash, tree.ID(), author, object.NewCommitOptions{
		Message:   "child\n",
		ParentIDs: []githash.Oid{parent.ID()},
	})

	parsed, err := object.ParseCommit(hash, child.ToObject())
	require.NoError(t, err)
	require.Len(t, parsed.ParentIDs(), 1)
	require.Equal(t, parent.ID().String(), parsed.ParentIDs()[0].String())
}

func TestParseSignature(t *testing.T) {
	sig, err := object.ParseSignature([]byte("Ada Lovelace <ada@example.com> 1700000000 -0700"))
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", sig.Name)
	require.Equal(t, "ada@example.com", sig.Email)
	require.Equal(t, int64(1700000000), sig.When.Unix())
}

func TestParseSignatureInvalid(t *testing.T) {
	_, err := object.ParseSignature([]byte("no email here"))
	require.ErrorIs(t, err, object.ErrInvalidSignature)
}

func TestCommitWithoutAuthorFailsToParse(t *testing.T) {
	hash := githash.NewSHA1()
	raw := object.New(hash, object.KindCommit, []byte("tree "+hash.Sum(nil).String()+"\n\nmessage"))
	_, err := object.ParseCommit(hash, raw)
	require.ErrorIs(t, err, object.ErrInvalidObject)
}
