// Package fsbackend implements backend.Backend on top of an afero.Fs,
// storing loose objects under objects/<2-hex>/<38-hex> and references
// as plain files under refs/, with packed-refs as a read-only fallback.
package fsbackend

import (
	"path/filepath"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/cache"
	"github.com/halide-vcs/gitkit/internal/fsutil"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize bounds the number of parsed objects kept in memory.
const defaultCacheSize = 256

// Backend is the filesystem-backed implementation of backend.Backend.
// Unlike the teacher repo, it holds no mutex and no in-memory object
// index: spec §5 commits this library to a single-writer usage model.
// Object reads go through a bounded LRU cache of parsed objects first;
// every other lookup simply Stats/Opens the file it needs.
type Backend struct {
	root string
	fs   afero.Fs
	hash githash.Hash

	cache *cache.LRU
}

// New returns a Backend rooted at dotGitPath (the .git directory).
func New(fs afero.Fs, hash githash.Hash, dotGitPath string) *Backend {
	return &Backend{
		root:  dotGitPath,
		fs:    fs,
		hash:  hash,
		cache: cache.NewLRU(defaultCacheSize),
	}
}

// Hash returns the content-addressing algorithm this store uses.
func (b *Backend) Hash() githash.Hash { return b.hash }

// Close releases any resources held by the backend. The filesystem
// backend holds none; it exists to satisfy backend.Backend.
func (b *Backend) Close() error { return nil }

// Init lays out a fresh .git directory: objects/, refs/{heads,tags},
// HEAD pointing at the unborn refs/heads/main, and a minimal config.
func (b *Backend) Init() error {
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.ObjectsInfoPath,
		gitpath.ObjectsPackPath,
		gitpath.RefsHeadsPath,
		gitpath.RefsTagsPath,
	}
	for _, d := range dirs {
		full := filepath.Join(b.root, d)
		if err := b.fs.MkdirAll(full, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	desc := []byte("Unnamed repository; edit this file 'description' to name the repository.\n")
	if err := afero.WriteFile(b.fs, filepath.Join(b.root, gitpath.DescriptionPath), desc, 0o644); err != nil {
		return xerrors.Errorf("could not create %s: %w", gitpath.DescriptionPath, err)
	}

	head := []byte("ref: " + gitpath.RefsHeadsPath + "/main\n")
	if err := fsutil.WriteAtomic(b.fs, filepath.Join(b.root, gitpath.HEADPath), head, 0o644); err != nil {
		return xerrors.Errorf("could not create HEAD: %w", err)
	}

	if err := b.writeDefaultConfig(); err != nil {
		return xerrors.Errorf("could not write default config: %w", err)
	}
	return nil
}
