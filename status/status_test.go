package status_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/backend/fsbackend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) (*fsbackend.Backend, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	b := fsbackend.New(fs, githash.NewSHA1(), gitpath.DotGitPath)
	require.NoError(t, b.Init())
	return b, fs
}

func TestStatusUntrackedOnCleanRepo(t *testing.T) {
	b, fs := newTestBackend(t)
	require.NoError(t, afero.WriteFile(fs, "/repo/test_untracked.txt", []byte("test"), 0o644))

	idx := index.New(2)
	entries, err := status.Compute(b, fs, "/repo", b.Hash().Zero(), idx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "test_untracked.txt", entries[0].Path)
	require.Equal(t, status.Untracked, entries[0].State)
}

func TestStatusCleanRepoIsEmptyExcludingUntracked(t *testing.T) {
	b, fs := newTestBackend(t)
	hash := b.Hash()

	content := []byte("contents of a")
	require.NoError(t, afero.WriteFile(fs, "/repo/a", content, 0o644))
	info, err := fs.Stat("/repo/a")
	require.NoError(t, err)

	oid, err := b.WriteObject(object.New(hash, object.KindBlob, content))
	require.NoError(t, err)

	idx := index.New(2)
	idx.Add(index.Entry{
		Path: "a", Mode: object.ModeFile, ID: oid,
		Size: uint32(info.Size()), MTimeSec: uint32(info.ModTime().Unix()),
	})

	tree := object.NewTree(hash, []object.TreeEntry{{Name: "a", ID: oid, Mode: object.ModeFile}})
	_, err = b.WriteObject(tree.ToObject())
	require.NoError(t, err)

	entries, err := status.Compute(b, fs, "/repo", tree.ID(), idx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStatusAddedFile(t *testing.T) {
	b, fs := newTestBackend(t)
	hash := b.Hash()

	content := []byte("new file")
	require.NoError(t, afero.WriteFile(fs, "/repo/new.txt", content, 0o644))
	oid, err := b.WriteObject(object.New(hash, object.KindBlob, content))
	require.NoError(t, err)

	idx := index.New(2)
	idx.Add(index.Entry{Path: "new.txt", Mode: object.ModeFile, ID: oid})

	entries, err := status.Compute(b, fs, "/repo", hash.Zero(), idx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, status.Added, entries[0].State)
}
