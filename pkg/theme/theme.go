// Package theme installs and removes the packaged theme assets in the
// target user's home. The assets themselves are an external deliverable;
// this package only moves trees around and fixes ownership.
package theme

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
	"github.com/nocturne-theme/nocturne-hook/pkg/paths"
)

// Assets locates the theme files shipped by the package and knows where
// they land in a user's home.
type Assets struct {
	SourceDir string
	ThemeName string
	logger    zerolog.Logger
}

// NewAssets creates an Assets for the given package source directory.
func NewAssets(sourceDir, themeName string) *Assets {
	return &Assets{
		SourceDir: sourceDir,
		ThemeName: themeName,
		logger:    logging.GetLogger("theme"),
	}
}

// mapping pairs a source subdirectory with its destination in the home.
type mapping struct {
	src  string
	dest string
}

func (a *Assets) mappings(p *paths.Paths) []mapping {
	return []mapping{
		{filepath.Join(a.SourceDir, "themes", a.ThemeName), filepath.Join(p.ThemesDir(), a.ThemeName)},
		{filepath.Join(a.SourceDir, "icons", a.ThemeName), filepath.Join(p.IconsDir(), a.ThemeName)},
		{filepath.Join(a.SourceDir, "gtk-3.0"), p.Gtk3ConfigDir()},
		{filepath.Join(a.SourceDir, "gtk-4.0"), p.Gtk4ConfigDir()},
	}
}

// Install copies every shipped asset tree into the user's home and returns
// the destination paths it touched. Source subdirectories the package does
// not ship are skipped.
func (a *Assets) Install(p *paths.Paths) ([]string, error) {
	var installed []string
	for _, m := range a.mappings(p) {
		if _, err := os.Stat(m.src); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return installed, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", m.src)
		}
		if err := copyTree(m.src, m.dest); err != nil {
			return installed, err
		}
		installed = append(installed, m.dest)
		a.logger.Info().Str("src", m.src).Str("dest", m.dest).Msg("Installed theme assets")
	}
	return installed, nil
}

// Remove deletes the theme's own directories from the user's home. The GTK
// config directories are not touched here: they go back to their captured
// state through the archive restore.
func (a *Assets) Remove(p *paths.Paths) error {
	targets := []string{
		filepath.Join(p.ThemesDir(), a.ThemeName),
		filepath.Join(p.IconsDir(), a.ThemeName),
	}
	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", target)
		}
		a.logger.Info().Str("path", target).Msg("Removed theme assets")
	}
	return nil
}

// copyTree copies src into dest, merging into an existing destination.
func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", path)
		}
		target := filepath.Join(dest, rel)

		switch {
		case info.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
			}
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", path)
			}
			_ = os.Remove(target)
			if err := os.Symlink(link, target); err != nil {
				return errors.Wrapf(err, errors.ErrFileCreate, "failed to link %s", target)
			}
		default:
			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
		}
		return nil
	})
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dest))
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create %s", dest)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return errors.Wrapf(copyErr, errors.ErrFileCreate, "failed to copy to %s", dest)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, errors.ErrFileCreate, "failed to copy to %s", dest)
	}
	return nil
}

// Chown recursively changes ownership of path to uid/gid. Hooks run as
// root; everything they create in the user's home has to end up owned by
// the user or the desktop cannot modify it later.
func Chown(path string, uid, gid int) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", p)
		}
		if err := os.Lchown(p, uid, gid); err != nil {
			return errors.Wrapf(err, errors.ErrChown, "failed to chown %s", p)
		}
		return nil
	})
}
