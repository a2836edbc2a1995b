// Package config resolves the on-disk layout of a repository (the
// .git directory, the object store, the working tree) from a mix of
// environment variables and filesystem discovery, and exposes the
// repository's config file (.git/config, in git-config/INI syntax)
// through a small get(section, key) surface.
//
// Grounded on Nivl-git-go's ginternals/config package: the same
// GIT_DIR / GIT_WORK_TREE / GIT_OBJECT_DIRECTORY resolution rules,
// adapted to run over afero.Fs instead of the real OS filesystem so
// repository discovery stays hermetically testable like the rest of
// this module.
package config

import (
	"errors"
	"path/filepath"

	"github.com/halide-vcs/gitkit/internal/env"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// Environment variable names recognized during discovery, matching
// git's own environment contract.
const (
	EnvGitDir           = "GIT_DIR"
	EnvWorkTree         = "GIT_WORK_TREE"
	EnvObjectDir        = "GIT_OBJECT_DIRECTORY"
	EnvConfigNoSystem   = "GIT_CONFIG_NOSYSTEM"
	EnvCeilingDirs      = "GIT_CEILING_DIRECTORIES"
)

// ErrNoRepo is returned when no .git directory can be found by
// walking up from the working directory, and none was set explicitly
// through GIT_DIR.
var ErrNoRepo = errors.New("not a git repository (or any of the parent directories)")

// ErrWorkTreeWithoutGitDir is returned when GIT_WORK_TREE is set but
// GIT_DIR isn't: git-go (and git itself) requires an explicit GIT_DIR
// before a custom work tree makes sense.
var ErrWorkTreeWithoutGitDir = errors.New("GIT_WORK_TREE can't be set without GIT_DIR")

// LoadOptions controls how Load resolves a repository's paths.
type LoadOptions struct {
	// WorkingDirectory is the directory discovery starts from. Empty
	// means the current directory ("."), which is how the caller
	// layer (gitkit.Discover) is expected to pass it after resolving
	// the real OS working directory itself.
	WorkingDirectory string
	// SkipSystemConfig disables reading of any repo-external config
	// layer (reserved for future global/system config support; there
	// is currently no global layer implemented, so this is
	// currently a no-op kept for interface parity with the teacher).
	SkipSystemConfig bool
}

// Config exposes a repository's on-disk paths and its config file.
type Config struct {
	fs afero.Fs

	GitDirPath    string
	WorkTreePath  string
	ObjectDirPath string

	local *ini.File
}

// Load resolves a repository's paths from e and the filesystem, and
// loads its config file. If GIT_DIR is unset, it walks up from
// opts.WorkingDirectory looking for a ".git" directory.
func Load(fs afero.Fs, e *env.Env, opts LoadOptions) (*Config, error) {
	wd := opts.WorkingDirectory
	if wd == "" {
		wd = "."
	}

	gitDir := e.Get(EnvGitDir)
	workTree := e.Get(EnvWorkTree)

	if workTree != "" && gitDir == "" {
		return nil, ErrWorkTreeWithoutGitDir
	}

	if gitDir == "" {
		discovered, err := discoverGitDir(fs, wd)
		if err != nil {
			return nil, err
		}
		gitDir = discovered
	} else if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(wd, gitDir)
	}

	if workTree == "" {
		workTree = filepath.Dir(gitDir)
	} else if !filepath.IsAbs(workTree) {
		workTree = filepath.Join(wd, workTree)
	}

	objectDir := e.Get(EnvObjectDir)
	if objectDir == "" {
		objectDir = filepath.Join(gitDir, gitpath.ObjectsPath)
	} else if !filepath.IsAbs(objectDir) {
		objectDir = filepath.Join(wd, objectDir)
	}

	cfg := &Config{
		fs:            fs,
		GitDirPath:    gitDir,
		WorkTreePath:  workTree,
		ObjectDirPath: objectDir,
	}

	local, err := loadLocalFile(fs, filepath.Join(gitDir, gitpath.ConfigPath))
	if err != nil {
		return nil, xerrors.Errorf("could not load %s: %w", gitpath.ConfigPath, err)
	}
	cfg.local = local

	return cfg, nil
}

// discoverGitDir walks up from p looking for a ".git" directory,
// mirroring Nivl-git-go's pathutil.WorkingTreeFromPath but operating
// through afero so it works against an in-memory filesystem in tests.
func discoverGitDir(fs afero.Fs, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", xerrors.Errorf("could not resolve absolute path of %s: %w", p, err)
	}

	dir := abs
	prev := ""
	for dir != prev {
		candidate := filepath.Join(dir, gitpath.DotGitPath)
		info, err := fs.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
		prev = dir
		dir = filepath.Dir(dir)
	}
	return "", ErrNoRepo
}

// loadLocalFile reads the repository's config file, returning an
// empty-but-valid *ini.File if it doesn't exist yet (a freshly
// Init'd repository writes one immediately, but callers resolving
// paths before Init must not fail here).
func loadLocalFile(fs afero.Fs, path string) (*ini.File, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("could not stat %s: %w", path, err)
	}
	if !exists {
		return ini.Empty(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("could not read %s: %w", path, err)
	}
	f, err := ini.Load(data)
	if err != nil {
		return nil, xerrors.Errorf("could not parse %s: %w", path, err)
	}
	return f, nil
}

// Get returns the value of section.key, and whether it was set.
func (c *Config) Get(section, key string) (string, bool) {
	sec, err := c.local.GetSection(section)
	if err != nil {
		return "", false
	}
	if !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).String(), true
}

// Set assigns section.key = value in memory; call Save to persist it.
func (c *Config) Set(section, key, value string) error {
	sec, err := c.local.GetSection(section)
	if err != nil {
		sec, err = c.local.NewSection(section)
		if err != nil {
			return xerrors.Errorf("could not create section %s: %w", section, err)
		}
	}
	sec.Key(key).SetValue(value)
	return nil
}

// Save writes the local config file back to disk. It writes through
// the afero handle rather than ini.File.SaveTo, which would otherwise
// bypass the filesystem abstraction and hit the real OS filesystem.
func (c *Config) Save() (err error) {
	path := filepath.Join(c.GitDirPath, gitpath.ConfigPath)
	f, err := c.fs.Create(path)
	if err != nil {
		return xerrors.Errorf("could not create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err = c.local.WriteTo(f); err != nil {
		return xerrors.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// RepoFormatVersion returns core.repositoryformatversion, defaulting
// to 0 (the only version this module understands) when unset.
func (c *Config) RepoFormatVersion() int {
	v, ok := c.Get("core", "repositoryformatversion")
	if !ok {
		return 0
	}
	n, err := parseInt(v)
	if err != nil {
		return 0
	}
	return n
}

// DefaultBranch returns init.defaultbranch, defaulting to "main".
func (c *Config) DefaultBranch() string {
	v, ok := c.Get("init", "defaultbranch")
	if !ok || v == "" {
		return "main"
	}
	return v
}

func parseInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, xerrors.Errorf("not a number: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
