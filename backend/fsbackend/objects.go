package fsbackend

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/halide-vcs/gitkit/backend"
	"github.com/halide-vcs/gitkit/githash"
	"github.com/halide-vcs/gitkit/internal/errutil"
	"github.com/halide-vcs/gitkit/internal/fsutil"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"github.com/halide-vcs/gitkit/object"
	"github.com/halide-vcs/gitkit/zlibutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Object returns the object with the given oid, reading and
// zlib-inflating its loose file. Packfile decoding is out of scope
// (spec §1 Non-goals), so a miss here is final.
func (b *Backend) Object(oid githash.Oid) (*object.Object, error) {
	if o, found := b.cache.Get(oid); found {
		if obj, ok := o.(*object.Object); ok {
			return obj, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObjectPath returns .git/objects/<2-hex>/<38-hex> for sha.
func (b *Backend) looseObjectPath(sha string) string {
	return filepath.Join(b.root, gitpath.ObjectsPath, sha[:2], sha[2:])
}

func (b *Backend) looseObject(oid githash.Oid) (o *object.Object, err error) {
	sha := oid.String()
	p := b.looseObjectPath(sha)
	f, err := b.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("object %s: %w", sha, backend.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not open object %s at %s: %w", sha, p, err)
	}
	defer errutil.Close(f, &err)

	compressed, err := io.ReadAll(f)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at %s: %w", sha, p, err)
	}

	framed, err := zlibutil.Decompress(compressed)
	if err != nil {
		return nil, xerrors.Errorf("object %s at %s: %w", sha, p, err)
	}

	return object.Parse(b.hash, framed)
}

// HasObject reports whether an object exists in the store.
func (b *Backend) HasObject(oid githash.Oid) (bool, error) {
	_, err := b.fs.Stat(b.looseObjectPath(oid.String()))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not stat object %s: %w", oid.String(), err)
}

// WriteObject persists o's framed, zlib-compressed form to its loose
// object path. Objects racing on the same oid produce identical bytes,
// so the last rename to finish wins without corruption (spec §5).
func (b *Backend) WriteObject(o *object.Object) (githash.Oid, error) {
	found, err := b.HasObject(o.ID())
	if err != nil {
		return nil, xerrors.Errorf("could not check for existing object %s: %w", o.ID().String(), err)
	}
	if found {
		return o.ID(), nil
	}

	compressed, err := zlibutil.Compress(o.Framed())
	if err != nil {
		return nil, xerrors.Errorf("could not compress object %s: %w", o.ID().String(), err)
	}

	p := b.looseObjectPath(o.ID().String())
	if err = b.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, xerrors.Errorf("could not create directory for object %s: %w", o.ID().String(), err)
	}
	// Git objects are read-only on disk once written.
	if err = fsutil.WriteAtomic(b.fs, p, compressed, 0o444); err != nil {
		return nil, xerrors.Errorf("could not persist object %s at %s: %w", o.ID().String(), p, err)
	}

	b.cache.Add(o.ID(), o)
	return o.ID(), nil
}

// WalkLooseObjectIDs runs f over every oid found under objects/.
func (b *Backend) WalkLooseObjectIDs(f backend.OidWalkFunc) error {
	root := filepath.Join(b.root, gitpath.ObjectsPath)
	err := afero.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && !isLooseObjectDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		dir := filepath.Base(filepath.Dir(path))
		if !isLooseObjectDir(dir) {
			return nil
		}

		oid, err := b.hash.FromHex(dir + info.Name())
		if err != nil {
			return xerrors.Errorf("could not parse oid from %s/%s: %w", dir, info.Name(), err)
		}
		return f(oid)
	})
	if err == backend.WalkStop { //nolint:errorlint // sentinel used as a control-flow signal, not a wrapped error
		return nil
	}
	return err
}

// ResolvePrefix implements spec §4.4's prefix lookup: enumerate
// objects/<first-2-chars>/ and collect every entry whose remaining
// name starts with the rest of prefix.
func (b *Backend) ResolvePrefix(prefix string) (githash.Oid, error) {
	if len(prefix) < 4 {
		return nil, xerrors.Errorf("prefix %q: %w", prefix, backend.ErrPrefixTooShort)
	}

	dir := filepath.Join(b.root, gitpath.ObjectsPath, prefix[:2])
	rest := prefix[2:]

	entries, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("prefix %q: %w", prefix, backend.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not list %s: %w", dir, err)
	}

	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), rest) {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return nil, xerrors.Errorf("prefix %q: %w", prefix, backend.ErrObjectNotFound)
	case 1:
		return b.hash.FromHex(prefix[:2] + matches[0])
	default:
		return nil, xerrors.Errorf("prefix %q: %w", prefix, backend.ErrAmbiguousPrefix)
	}
}

func isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	for _, c := range name {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
