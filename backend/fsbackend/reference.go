package fsbackend

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/internal/fsutil"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/refs"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference by name, resolved through any
// symbolic indirection. It consults loose ref files first, falling
// back to packed-refs (spec §9's packed-refs read-fallback).
func (b *Backend) Reference(name string) (*refs.Reference, error) {
	var packed map[string]string

	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, xerrors.Errorf("could not read reference %s: %w", name, err)
		}

		if packed == nil {
			packed, err = b.parsePackedRefs()
			if err != nil {
				return nil, xerrors.Errorf("could not load packed-refs: %w", err)
			}
		}
		sha, ok := packed[name]
		if !ok {
			return nil, xerrors.Errorf("ref %q: %w", name, refs.ErrRefNotFound)
		}
		return []byte(sha), nil
	}
	return refs.Resolve(b.hash, name, finder)
}

// Head reads HEAD and classifies it as attached or detached, per
// spec §3's Head value type.
func (b *Backend) Head() (*refs.Head, error) {
	var packed map[string]string
	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, xerrors.Errorf("could not read reference %s: %w", name, err)
		}
		if packed == nil {
			packed, err = b.parsePackedRefs()
			if err != nil {
				return nil, xerrors.Errorf("could not load packed-refs: %w", err)
			}
		}
		sha, ok := packed[name]
		if !ok {
			return nil, xerrors.Errorf("ref %q: %w", name, refs.ErrRefNotFound)
		}
		return []byte(sha), nil
	}
	return refs.ResolveHead(b.hash, finder)
}

// systemPath maps a ref's unix-style name to a host filesystem path.
func (b *Backend) systemPath(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

// parsePackedRefs parses the packed-refs file into a refName -> hex-oid
// map. https://git-scm.com/docs/git-pack-refs
func (b *Backend) parsePackedRefs() (parsed map[string]string, err error) {
	parsed = map[string]string{}
	f, err := b.fs.Open(filepath.Join(b.root, gitpath.PackedRefsPath))
	if err != nil {
		if os.IsNotExist(err) {
			return parsed, nil
		}
		return nil, xerrors.Errorf("could not open %s: %w", gitpath.PackedRefsPath, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	sc := bufio.NewScanner(f)
	for i := 1; sc.Scan(); i++ {
		line := sc.Text()
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("unexpected data on line %d: %w", i, refs.ErrPackedRefInvalid)
		}
		parsed[parts[1]] = parts[0]
	}
	if sc.Err() != nil {
		return nil, xerrors.Errorf("could not parse %s: %w", gitpath.PackedRefsPath, sc.Err())
	}
	return parsed, nil
}

// WriteReference persists ref on disk, overwriting any existing loose
// value. Writes go through a sibling ".lock" file and rename so
// concurrent readers never observe a torn write.
func (b *Backend) WriteReference(ref *refs.Reference) error {
	if !refs.IsRefNameValid(ref.Name()) {
		return refs.ErrRefNameInvalid
	}

	var content string
	switch ref.Type() {
	case refs.SymbolicType:
		content = "ref: " + ref.SymbolicTarget() + "\n"
	case refs.OidType:
		content = ref.Target().String() + "\n"
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), refs.ErrUnknownRefType)
	}

	if err := fsutil.WriteAtomic(b.fs, b.systemPath(ref.Name()), []byte(content), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference %s: %w", ref.Name(), err)
	}
	return nil
}

// WriteReferenceSafe persists ref, failing with refs.ErrRefExists if a
// reference by that name already exists, either loose or packed.
func (b *Backend) WriteReferenceSafe(ref *refs.Reference) error {
	if !refs.IsRefNameValid(ref.Name()) {
		return refs.ErrRefNameInvalid
	}

	_, err := b.fs.Stat(b.systemPath(ref.Name()))
	if !os.IsNotExist(err) {
		if err != nil {
			return xerrors.Errorf("could not check if reference %s exists: %w", ref.Name(), err)
		}
		return refs.ErrRefExists
	}

	packed, err := b.parsePackedRefs()
	if err != nil {
		return xerrors.Errorf("could not check packed-refs: %w", err)
	}
	if _, ok := packed[ref.Name()]; ok {
		return refs.ErrRefExists
	}

	return b.WriteReference(ref)
}

// DeleteReference removes a loose reference's file and prunes any
// parent directories left empty (e.g. refs/heads/feature/ after
// deleting the last branch nested under it).
func (b *Backend) DeleteReference(name string) error {
	p := b.systemPath(name)
	if err := b.fs.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return xerrors.Errorf("ref %q: %w", name, refs.ErrRefNotFound)
		}
		return xerrors.Errorf("could not remove reference %s: %w", name, err)
	}

	dir := filepath.Dir(p)
	refsRoot := filepath.Join(b.root, gitpath.RefsPath)
	for dir != refsRoot && strings.HasPrefix(dir, refsRoot) {
		entries, err := afero.ReadDir(b.fs, dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := b.fs.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// WalkReferences runs f over every loose reference under refs/, then
// over any packed-refs entry not shadowed by a loose one.
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	seen := map[string]struct{}{}
	root := filepath.Join(b.root, gitpath.RefsPath)

	err := afero.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return xerrors.Errorf("could not compute relative ref path for %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		seen[name] = struct{}{}

		ref, err := b.Reference(name)
		if err != nil {
			return xerrors.Errorf("could not resolve reference %s: %w", name, err)
		}
		return f(ref)
	})
	if err == backend.WalkStop { //nolint:errorlint // control-flow sentinel
		return nil
	}
	if err != nil {
		return err
	}

	packed, err := b.parsePackedRefs()
	if err != nil {
		return xerrors.Errorf("could not load packed-refs: %w", err)
	}
	for name := range packed {
		if _, ok := seen[name]; ok {
			continue
		}
		ref, err := b.Reference(name)
		if err != nil {
			return xerrors.Errorf("could not resolve packed reference %s: %w", name, err)
		}
		if werr := f(ref); werr != nil {
			if werr == backend.WalkStop { //nolint:errorlint // control-flow sentinel
				return nil
			}
			return werr
		}
	}
	return nil
}
