package fsbackend

import (
	"path/filepath"

	"github.com/halide-vcs/gitkit/internal/errutil"
	"github.com/halide-vcs/gitkit/internal/gitpath"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// Config core section keys, as written to .git/config by Init.
const (
	CfgCore              = "core"
	CfgCoreFormatVersion = "repositoryformatversion"
	CfgCoreFileMode      = "filemode"
	CfgCoreBare          = "bare"
)

// writeDefaultConfig writes the minimal [core] section a freshly
// initialized repository needs, per spec §4.12's init(). It writes
// through b.fs rather than ini.v1's own SaveTo (which always goes to
// the real OS filesystem) so the backend stays testable against
// afero.NewMemMapFs.
func (b *Backend) writeDefaultConfig() (err error) {
	cfg := ini.Empty()
	core, err := cfg.NewSection(CfgCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}

	values := map[string]string{
		CfgCoreFormatVersion: "0",
		CfgCoreFileMode:      "true",
		CfgCoreBare:          "false",
	}
	for k, v := range values {
		if _, err := core.NewKey(k, v); err != nil {
			return xerrors.Errorf("could not set core.%s: %w", k, err)
		}
	}

	p := filepath.Join(b.root, gitpath.ConfigPath)
	f, err := b.fs.Create(p)
	if err != nil {
		return xerrors.Errorf("could not create %s: %w", p, err)
	}
	defer errutil.Close(f, &err)

	if _, err = cfg.WriteTo(f); err != nil {
		return xerrors.Errorf("could not write config to %s: %w", p, err)
	}
	return nil
}
