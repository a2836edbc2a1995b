// Package gitkit is the repository facade described in spec §4.12: it
// opens, discovers, and initializes a repository and dispatches to the
// object store, reference resolver, index codec, and the derived
// engines (history, diff, status) built in their own packages.
//
// Grounded on the teacher's root-level Repository type (repo.go, since
// removed — see DESIGN.md): the same Init/Open entry points and the
// same afero-backed worktree handle, generalized to route through this
// module's backend.Backend interface and config.Config instead of the
// teacher's now-superseded direct os/ioutil calls.
package gitkit

import (
	"path/filepath"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/backend/fsbackend"
	"github.com/halide-vcs/gitkit/config"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/index"
	"github.com/halide-vcs/gitkit/internal/env"
	"github.com/halide-vcs/gitkit/internal/fsutil"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/refs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options customizes how a Repository is opened, discovered, or
// initialized. The zero value uses the real OS filesystem, SHA-1, and
// a no-op logger — everything a caller needs for ordinary use.
type Options struct {
	// FS backs both the .git directory and the worktree. Defaults to
	// afero.NewOsFs(). Tests pass afero.NewMemMapFs() for a hermetic
	// in-memory repository (SPEC_FULL.md §10.4).
	FS afero.Fs
	// Hash is the content-addressing algorithm. Defaults to SHA-1,
	// the only one spec §4.1 names.
	Hash githash.Hash
	// Logger receives a debug-level trace when Init creates a
	// repository; no other operation logs. Defaults to a no-op logger
	// (SPEC_FULL.md §10.1).
	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}
	if o.Hash == nil {
		o.Hash = githash.NewSHA1()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// Repository is a handle to an opened repository: its object/ref
// store, its config, and (for non-bare repositories) its worktree.
// A handle holds no long-lived file descriptors and is safe to use
// from one goroutine at a time (spec §5's single-writer model).
type Repository struct {
	fs           afero.Fs
	hash         githash.Hash
	log          *zap.SugaredLogger
	backend      backend.Backend
	cfg          *config.Config
	gitDirPath   string
	workTreePath string
}

// Init creates a fresh repository at path: <path>/.git/{objects,
// refs/heads, refs/tags}, a HEAD symbolic to refs/heads/<default
// branch>, and a minimal config.
func Init(path string, opts Options) (*Repository, error) {
	opts = opts.withDefaults()
	gitDirPath := filepath.Join(path, gitpath.DotGitPath)

	b := fsbackend.New(opts.FS, opts.Hash, gitDirPath)
	if err := b.Init(); err != nil {
		return nil, newError(KindIO, "could not initialize repository", err)
	}

	cfg, err := config.Load(opts.FS, env.NewFromKVList([]string{config.EnvGitDir + "=" + gitDirPath}), config.LoadOptions{})
	if err != nil {
		return nil, newError(KindIO, "could not load repository config", err)
	}

	r := &Repository{
		fs: opts.FS, hash: opts.Hash, log: opts.Logger,
		backend: b, cfg: cfg, gitDirPath: gitDirPath, workTreePath: path,
	}
	r.log.Debugw("repository initialized", "path", path)
	return r, nil
}

// Open opens an existing repository at path, which may be either the
// worktree root or the .git directory itself.
func Open(path string, opts Options) (*Repository, error) {
	opts = opts.withDefaults()

	gitDirPath := path
	workTreePath := filepath.Dir(path)
	isDotGit, err := afero.DirExists(opts.FS, filepath.Join(path, gitpath.DotGitPath))
	if err != nil {
		return nil, newError(KindIO, "could not check repository layout", err)
	}
	if isDotGit {
		gitDirPath = filepath.Join(path, gitpath.DotGitPath)
		workTreePath = path
	}

	if err := verifyLayout(opts.FS, gitDirPath); err != nil {
		return nil, err
	}

	b := fsbackend.New(opts.FS, opts.Hash, gitDirPath)
	cfg, err := config.Load(opts.FS, env.NewFromKVList([]string{config.EnvGitDir + "=" + gitDirPath}), config.LoadOptions{})
	if err != nil {
		return nil, newError(KindIO, "could not load repository config", err)
	}

	return &Repository{
		fs: opts.FS, hash: opts.Hash, log: opts.Logger,
		backend: b, cfg: cfg, gitDirPath: gitDirPath, workTreePath: workTreePath,
	}, nil
}

// Discover walks up from path looking for a ".git" directory, then
// opens the repository rooted there.
func Discover(path string, opts Options) (*Repository, error) {
	opts = opts.withDefaults()

	dir := path
	prev := ""
	for dir != prev {
		if ok, _ := afero.DirExists(opts.FS, filepath.Join(dir, gitpath.DotGitPath)); ok {
			return Open(dir, opts)
		}
		prev = dir
		dir = filepath.Dir(dir)
	}
	return nil, newError(KindNotARepository, path, nil)
}

func verifyLayout(fs afero.Fs, gitDirPath string) error {
	for _, required := range []string{gitpath.HEADPath, gitpath.ObjectsPath, gitpath.RefsPath} {
		ok, err := afero.Exists(fs, filepath.Join(gitDirPath, required))
		if err != nil {
			return newError(KindIO, "could not check "+required, err)
		}
		if !ok {
			return newError(KindNotARepository, gitDirPath, nil)
		}
	}
	return nil
}

// Hash returns the repository's content-addressing algorithm.
func (r *Repository) Hash() githash.Hash { return r.hash }

// GitDirPath returns the path to the .git directory, derived from the
// path given to Init, Open or Discover (relative if that one was).
func (r *Repository) GitDirPath() string { return r.gitDirPath }

// WorkTreePath returns the path to the worktree root, derived from the
// path given to Init, Open or Discover (relative if that one was).
func (r *Repository) WorkTreePath() string { return r.workTreePath }

// Config exposes the repository's config file.
func (r *Repository) Config() *config.Config { return r.cfg }

// Head resolves HEAD, classifying it as an attached branch or a
// detached OID (spec §4.6).
func (r *Repository) Head() (*refs.Head, error) {
	h, err := r.backend.Head()
	if err != nil {
		return nil, newError(KindRefNotFound, "HEAD", err)
	}
	return h, nil
}

// readIndex loads the staging index, returning an empty one if it
// doesn't exist yet (a freshly initialized repository has none).
func (r *Repository) readIndex() (*index.Index, error) {
	exists, err := afero.Exists(r.fs, r.indexPath())
	if err != nil {
		return nil, newError(KindIO, "could not stat index", err)
	}
	if !exists {
		return index.New(2), nil
	}

	data, err := afero.ReadFile(r.fs, r.indexPath())
	if err != nil {
		return nil, newError(KindIO, "could not read index", err)
	}
	idx, err := index.Parse(r.hash, data, true)
	if err != nil {
		return nil, newError(KindInvalidIndex, "index", err)
	}
	return idx, nil
}

// Index returns the staging index, or an empty one if the repository
// has none yet.
func (r *Repository) Index() (*index.Index, error) { return r.readIndex() }

func (r *Repository) writeIndex(idx *index.Index) error {
	data := index.Serialize(r.hash, idx)
	if err := fsutil.WriteAtomic(r.fs, r.indexPath(), data, 0o644); err != nil {
		return newError(KindIO, "could not write index", err)
	}
	return nil
}

func (r *Repository) indexPath() string {
	return filepath.Join(r.gitDirPath, gitpath.IndexPath)
}
