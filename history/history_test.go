package history_test

import (
	"testing"
	"time"

	"github.com/halide-vcs/gitkit/backend/fsbackend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/history"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *fsbackend.Backend {
	t.Helper()
	fs := afero.NewMemMapFs()
	b := fsbackend.New(fs, githash.NewSHA1(), gitpath.DotGitPath)
	require.NoError(t, b.Init())
	return b
}

func sig(name string, when time.Time) object.Signature {
	return object.Signature{Name: name, Email: name + "@example.com", When: when}
}

func commitAt(t *testing.T, b *fsbackend.Backend, msg string, when time.Time, parents ...githash.Oid) githash.Oid {
	t.Helper()
	hash := b.Hash()
	tree := object.NewTree(hash, nil)
	_, err := b.WriteObject(tree.ToObject())
	require.NoError(t, err)

	c := object.NewCommit(hash, tree.ID(), sig("author", when), object.NewCommitOptions{
		Message:   msg + "\n",
		ParentIDs: parents,
	})
	oid, err := b.WriteObject(c.ToObject())
	require.NoError(t, err)
	return oid
}

func TestWalkerYieldsTwoCommitsNewestFirst(t *testing.T) {
	b := newTestBackend(t)
	t0 := time.Unix(1700000000, 0).UTC()
	first := commitAt(t, b, "Initial commit", t0)
	second := commitAt(t, b, "Second commit", t0.Add(time.Hour), first)

	w := history.New(b, second, history.Options{})
	c1, ok, err := w.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second.String(), c1.ID().String())
	require.Equal(t, "Second commit", c1.Summary())

	c2, ok, err := w.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first.String(), c2.ID().String())

	_, ok, err = w.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWalkerDiamondVisitsOnce(t *testing.T) {
	b := newTestBackend(t)
	t0 := time.Unix(1700000000, 0).UTC()
	root := commitAt(t, b, "root", t0)
	left := commitAt(t, b, "left", t0.Add(time.Hour), root)
	right := commitAt(t, b, "right", t0.Add(2*time.Hour), root)
	merge := commitAt(t, b, "merge", t0.Add(3*time.Hour), left, right)

	w := history.New(b, merge, history.Options{})
	seen := map[string]int{}
	for {
		c, ok, err := w.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[c.ID().String()]++
	}
	require.Equal(t, 1, seen[merge.String()])
	require.Equal(t, 1, seen[left.String()])
	require.Equal(t, 1, seen[right.String()])
	require.Equal(t, 1, seen[root.String()])
}

func TestWalkerFirstParentOnly(t *testing.T) {
	b := newTestBackend(t)
	t0 := time.Unix(1700000000, 0).UTC()
	root := commitAt(t, b, "root", t0)
	side := commitAt(t, b, "side", t0.Add(time.Hour), root)
	main := commitAt(t, b, "main", t0.Add(2*time.Hour), root)
	merge := commitAt(t, b, "merge", t0.Add(3*time.Hour), main, side)

	w := history.New(b, merge, history.Options{FirstParent: true})
	var ids []string
	for {
		c, ok, err := w.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, c.ID().String())
	}
	require.NotContains(t, ids, side.String())
	require.Contains(t, ids, main.String())
	require.Contains(t, ids, root.String())
}

func TestWalkerMaxCount(t *testing.T) {
	b := newTestBackend(t)
	t0 := time.Unix(1700000000, 0).UTC()
	first := commitAt(t, b, "a", t0)
	second := commitAt(t, b, "b", t0.Add(time.Hour), first)

	w := history.New(b, second, history.Options{MaxCount: 1})
	_, ok, err := w.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = w.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
