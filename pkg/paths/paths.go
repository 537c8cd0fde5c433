// Package paths provides centralized path handling for nocturne-hook.
// Every user-facing path derives from the target user's home directory,
// never from the installer's own environment: lifecycle hooks run with the
// package manager's privileges while the state they manage belongs to the
// user whose session receives the theme.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
)

// Directory and file names inside the target user's home.
// These are fixed: the restore side of the hook must find exactly what the
// install side wrote, across package upgrades.
const (
	// BackupDirName is the backup directory created under the user's home
	BackupDirName = ".nocturne-backup"

	// SettingsBackupFileName holds the captured desktop settings
	SettingsBackupFileName = "gsettings.bak"

	// ThemesDirName is the per-user shell/GTK theme directory
	ThemesDirName = ".themes"

	// IconsDirName is the per-user icon theme directory
	IconsDirName = ".icons"

	// HookDirName is the directory name for installer-side state (log files)
	HookDirName = "nocturne"

	// LogFileName is the name of the hook log file
	LogFileName = "nocturne-hook.log"
)

// Paths resolves the fixed locations nocturne-hook reads and writes for one
// target user.
type Paths struct {
	home string
}

// New creates a Paths instance rooted at the given home directory.
func New(home string) (*Paths, error) {
	if home == "" {
		return nil, errors.New(errors.ErrInvalidInput, "home directory is required")
	}
	if !filepath.IsAbs(home) {
		return nil, errors.Newf(errors.ErrInvalidInput, "home directory must be absolute, got %q", home)
	}
	return &Paths{home: filepath.Clean(home)}, nil
}

// Home returns the target user's home directory.
func (p *Paths) Home() string {
	return p.home
}

// BackupDir returns the directory holding all backup artifacts.
func (p *Paths) BackupDir() string {
	return filepath.Join(p.home, BackupDirName)
}

// SettingsBackupFile returns the path of the captured-settings file.
func (p *Paths) SettingsBackupFile() string {
	return filepath.Join(p.BackupDir(), SettingsBackupFileName)
}

// UserPath resolves a home-relative path (as listed in the manifest's
// directories-of-interest) to an absolute one.
func (p *Paths) UserPath(rel string) string {
	return filepath.Join(p.home, rel)
}

// ThemesDir returns the user's ~/.themes directory.
func (p *Paths) ThemesDir() string {
	return filepath.Join(p.home, ThemesDirName)
}

// IconsDir returns the user's ~/.icons directory.
func (p *Paths) IconsDir() string {
	return filepath.Join(p.home, IconsDirName)
}

// Gtk3ConfigDir returns the user's GTK 3 configuration directory.
func (p *Paths) Gtk3ConfigDir() string {
	return filepath.Join(p.home, ".config", "gtk-3.0")
}

// Gtk4ConfigDir returns the user's GTK 4 configuration directory.
func (p *Paths) Gtk4ConfigDir() string {
	return filepath.Join(p.home, ".config", "gtk-4.0")
}

// LogFilePath returns the installer-side log file location, following the
// XDG state directory of whoever runs the hook. The environment is checked
// at call time so a state dir exported after process start still wins.
func LogFilePath() string {
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		return filepath.Join(stateDir, HookDirName, LogFileName)
	}
	return filepath.Join(xdg.StateHome, HookDirName, LogFileName)
}
