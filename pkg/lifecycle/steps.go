package lifecycle

import (
	"os"
	"path/filepath"
	"time"

	"github.com/nocturne-theme/nocturne-hook/pkg/archive"
	"github.com/nocturne-theme/nocturne-hook/pkg/backup"
	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/gsettings"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
	"github.com/nocturne-theme/nocturne-hook/pkg/manifest"
	"github.com/nocturne-theme/nocturne-hook/pkg/paths"
	"github.com/nocturne-theme/nocturne-hook/pkg/session"
	"github.com/nocturne-theme/nocturne-hook/pkg/theme"
)

// Deps carries the collaborators the step sequences operate on.
type Deps struct {
	Store    gsettings.Store
	Paths    *paths.Paths
	Manifest *manifest.Manifest
	Assets   *theme.Assets
	User     *session.TargetUser

	// ThemeName is the value written into the settings store on install.
	ThemeName string

	// Now stamps archive names; overridable for tests.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// themedSettings are the store keys the install points at the new theme.
// The icon key is only written when the package shipped an icon tree, so a
// theme without icons never points the desktop at an icon set that does
// not exist. Nocturne is a dark theme; color-scheme follows it.
func themedSettings(name string, withIcons bool) []backup.Entry {
	quoted := "'" + name + "'"
	entries := []backup.Entry{
		{Schema: "org.gnome.desktop.interface", Key: "gtk-theme", Value: quoted},
		{Schema: "org.gnome.desktop.interface", Key: "color-scheme", Value: "'prefer-dark'"},
		{Schema: "org.gnome.desktop.wm.preferences", Key: "theme", Value: quoted},
		{Schema: "org.gnome.shell.extensions.user-theme", Key: "name", Value: quoted},
	}
	if withIcons {
		entries = append(entries, backup.Entry{
			Schema: "org.gnome.desktop.interface", Key: "icon-theme", Value: quoted,
		})
	}
	return entries
}

// InstallSteps builds the postinstall sequence: verify the desktop,
// snapshot the directories the theme will touch, capture settings, copy
// assets in, point the settings store at the theme, then hand ownership of
// everything back to the user.
func InstallSteps(d *Deps) []Step {
	logger := logging.GetLogger("lifecycle.install")

	var snapshots []string
	var installed []string

	return []Step{
		{
			Name:  "check-desktop",
			Fatal: true,
			Run:   session.CheckDesktop,
		},
		{
			Name: "snapshot-directories",
			Run: func() error {
				var firstErr error
				for _, rel := range d.Manifest.Directories {
					path, err := archive.Snapshot(d.Paths.UserPath(rel), d.Paths.BackupDir(), d.now())
					if err != nil {
						logger.Warn().Err(err).Str("dir", rel).Msg("Failed to snapshot directory, continuing")
						if firstErr == nil {
							firstErr = err
						}
						continue
					}
					if path != "" {
						snapshots = append(snapshots, path)
					}
				}
				return firstErr
			},
			Compensate: func() error {
				for _, path := range snapshots {
					if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
						return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove snapshot %s", path)
					}
				}
				return nil
			},
		},
		{
			Name: "capture-settings",
			Run: func() error {
				_, err := backup.Capture(d.Store, d.Manifest.Settings, d.Paths.SettingsBackupFile())
				return err
			},
			Compensate: func() error {
				if err := os.Remove(d.Paths.SettingsBackupFile()); err != nil && !os.IsNotExist(err) {
					return errors.Wrap(err, errors.ErrFileAccess, "failed to remove settings backup")
				}
				return nil
			},
		},
		{
			Name:  "install-assets",
			Fatal: true,
			Run: func() error {
				var err error
				installed, err = d.Assets.Install(d.Paths)
				return err
			},
			Compensate: func() error {
				return d.Assets.Remove(d.Paths)
			},
		},
		{
			Name:      "apply-settings",
			Retryable: true,
			Run: func() error {
				iconsDest := filepath.Join(d.Paths.IconsDir(), d.ThemeName)
				withIcons := false
				for _, dest := range installed {
					if dest == iconsDest {
						withIcons = true
					}
				}

				var firstErr error
				for _, entry := range themedSettings(d.ThemeName, withIcons) {
					if err := d.Store.Set(entry.Schema, entry.Key, entry.Value); err != nil {
						logger.Warn().Err(err).
							Str("schema", entry.Schema).
							Str("key", entry.Key).
							Msg("Failed to apply theme setting, continuing")
						if firstErr == nil {
							firstErr = err
						}
					}
				}
				return firstErr
			},
		},
		{
			Name: "fix-ownership",
			Run: func() error {
				targets := append([]string{d.Paths.BackupDir()}, installed...)
				for _, rel := range d.Manifest.Directories {
					targets = append(targets, d.Paths.UserPath(rel))
				}
				for _, target := range targets {
					if err := theme.Chown(target, d.User.UID, d.User.GID); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// RemoveSteps builds the postremove sequence: take the assets out, put the
// snapshotted directories back, replay the captured settings, and fix
// ownership of whatever was recreated. Every step tolerates missing
// artifacts; removal of a package whose install never completed still ends
// in a clean state.
func RemoveSteps(d *Deps) []Step {
	logger := logging.GetLogger("lifecycle.remove")

	return []Step{
		{
			Name: "remove-assets",
			Run: func() error {
				return d.Assets.Remove(d.Paths)
			},
		},
		{
			Name: "restore-directories",
			Run: func() error {
				var firstErr error
				for _, rel := range d.Manifest.Directories {
					if _, err := archive.RestoreDir(d.Paths.UserPath(rel), d.Paths.BackupDir()); err != nil {
						logger.Warn().Err(err).Str("dir", rel).Msg("Failed to restore directory, continuing")
						if firstErr == nil {
							firstErr = err
						}
					}
				}
				return firstErr
			},
		},
		{
			Name: "restore-settings",
			Run: func() error {
				_, err := backup.Restore(d.Store, d.Paths.SettingsBackupFile())
				return err
			},
		},
		{
			Name: "fix-ownership",
			Run: func() error {
				targets := make([]string, 0, len(d.Manifest.Directories))
				for _, rel := range d.Manifest.Directories {
					targets = append(targets, d.Paths.UserPath(rel))
				}
				for _, target := range targets {
					if err := theme.Chown(target, d.User.UID, d.User.GID); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
