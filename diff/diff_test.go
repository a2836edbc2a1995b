package diff_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/backend/fsbackend"
	"github.com/halide-vcs/gitkit/diff"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func writeBlob(t *testing.T, b *fsbackend.Backend, hash githash.Hash, content string) githash.Oid {
	t.Helper()
	oid, err := b.WriteObject(object.New(hash, object.KindBlob, []byte(content)))
	require.NoError(t, err)
	return oid
}

func writeTree(t *testing.T, b *fsbackend.Backend, hash githash.Hash, entries []object.TreeEntry) githash.Oid {
	t.Helper()
	tree := object.NewTree(hash, entries)
	oid, err := b.WriteObject(tree.ToObject())
	require.NoError(t, err)
	return oid
}

func newTestBackend(t *testing.T) *fsbackend.Backend {
	t.Helper()
	fs := afero.NewMemMapFs()
	b := fsbackend.New(fs, githash.NewSHA1(), gitpath.DotGitPath)
	require.NoError(t, b.Init())
	return b
}

func TestTreesRootCommitAllAdded(t *testing.T) {
	b := newTestBackend(t)
	hash := b.Hash()

	f1 := writeBlob(t, b, hash, "one")
	f2 := writeBlob(t, b, hash, "two")
	newTree := writeTree(t, b, hash, []object.TreeEntry{
		{Name: "file1.txt", ID: f1, Mode: object.ModeFile},
		{Name: "file2.txt", ID: f2, Mode: object.ModeFile},
	})

	deltas, err := diff.Trees(b, hash.Zero(), newTree, diff.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	for _, d := range deltas {
		require.Equal(t, diff.Added, d.Status)
	}
}

func TestTreesDetectsRename(t *testing.T) {
	b := newTestBackend(t)
	hash := b.Hash()

	content := writeBlob(t, b, hash, "same content")
	oldTree := writeTree(t, b, hash, []object.TreeEntry{
		{Name: "old_name.txt", ID: content, Mode: object.ModeFile},
	})
	newTree := writeTree(t, b, hash, []object.TreeEntry{
		{Name: "new_name.txt", ID: content, Mode: object.ModeFile},
	})

	deltas, err := diff.Trees(b, oldTree, newTree, diff.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	require.Equal(t, diff.Renamed, deltas[0].Status)
	require.Equal(t, "old_name.txt", deltas[0].OldPath)
	require.Equal(t, "new_name.txt", deltas[0].Path)
}

func TestTreesModified(t *testing.T) {
	b := newTestBackend(t)
	hash := b.Hash()

	oldContent := writeBlob(t, b, hash, "v1")
	newContent := writeBlob(t, b, hash, "v2")
	oldTree := writeTree(t, b, hash, []object.TreeEntry{{Name: "a.txt", ID: oldContent, Mode: object.ModeFile}})
	newTree := writeTree(t, b, hash, []object.TreeEntry{{Name: "a.txt", ID: newContent, Mode: object.ModeFile}})

	deltas, err := diff.Trees(b, oldTree, newTree, diff.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	require.Equal(t, diff.Modified, deltas[0].Status)
}

func TestTreesSubtrees(t *testing.T) {
	b := newTestBackend(t)
	hash := b.Hash()

	main := writeBlob(t, b, hash, "fn main() {}")
	subtree := writeTree(t, b, hash, []object.TreeEntry{{Name: "main.rs", ID: main, Mode: object.ModeFile}})
	root := writeTree(t, b, hash, []object.TreeEntry{{Name: "src", ID: subtree, Mode: object.ModeSubtree}})

	deltas, err := diff.Trees(b, hash.Zero(), root, diff.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	require.Equal(t, "src/main.rs", deltas[0].Path)
	require.Equal(t, diff.Added, deltas[0].Status)
}
