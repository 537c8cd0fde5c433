package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocturne-theme/nocturne-hook/pkg/manifest"
	"github.com/nocturne-theme/nocturne-hook/pkg/paths"
	"github.com/nocturne-theme/nocturne-hook/pkg/session"
	"github.com/nocturne-theme/nocturne-hook/pkg/testutil"
	"github.com/nocturne-theme/nocturne-hook/pkg/theme"
)

func testDeps(t *testing.T) (*Deps, *testutil.MemoryStore) {
	t.Helper()

	home := testutil.TempHome(t)
	p, err := paths.New(home)
	require.NoError(t, err)

	store := testutil.NewMemoryStore()
	store.Seed("org.gnome.desktop.interface", "gtk-theme", "'Adwaita'")
	store.Seed("org.gnome.desktop.wm.preferences", "theme", "'Adwaita'")
	store.Seed("org.gnome.shell.extensions.user-theme", "name", "''")

	src := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "themes", "Nocturne", "index.theme"), "[Desktop Entry]\nName=Nocturne\n")
	testutil.WriteFile(t, filepath.Join(src, "gtk-3.0", "gtk.css"), "window { background: #101014; }\n")

	m := &manifest.Manifest{
		Settings: []manifest.Setting{
			{Schema: "org.gnome.desktop.interface", Key: "gtk-theme"},
			{Schema: "org.gnome.desktop.wm.preferences", Key: "theme"},
			{Schema: "org.gnome.shell.extensions.user-theme", Key: "name"},
		},
		Directories: []string{".themes", ".config/gtk-3.0"},
	}

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	deps := &Deps{
		Store:     store,
		Paths:     p,
		Manifest:  m,
		Assets:    theme.NewAssets(src, "Nocturne"),
		User:      &session.TargetUser{Name: "test", UID: os.Getuid(), GID: os.Getgid(), Home: home},
		ThemeName: "Nocturne",
		Now:       func() time.Time { return ts },
	}
	return deps, store
}

func TestInstallThenRemoveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")

	deps, store := testDeps(t)
	p := deps.Paths

	// pre-existing user state the cycle must preserve
	testutil.WriteFile(t, filepath.Join(p.ThemesDir(), "Custom", "index.theme"), "mine")
	testutil.WriteFile(t, filepath.Join(p.Gtk3ConfigDir(), "bookmarks"), "file:///home\n")

	runner := NewRunner(false)
	report, err := runner.Execute(InstallSteps(deps))
	require.NoError(t, err)
	assert.Len(t, report.Completed, 6)

	// settings captured before they were changed
	backupContent := testutil.ReadFile(t, p.SettingsBackupFile())
	assert.Contains(t, backupContent, "org.gnome.desktop.interface gtk-theme 'Adwaita'\n")

	// directories snapshotted
	archives, _ := filepath.Glob(filepath.Join(p.BackupDir(), "*.tar.gz"))
	assert.Len(t, archives, 2)

	// assets in place, store pointed at the theme
	assert.FileExists(t, filepath.Join(p.ThemesDir(), "Nocturne", "index.theme"))
	assert.FileExists(t, filepath.Join(p.Gtk3ConfigDir(), "gtk.css"))
	assert.Equal(t, "'Nocturne'", store.Values["org.gnome.desktop.interface gtk-theme"])

	report, err = runner.Execute(RemoveSteps(deps))
	require.NoError(t, err)
	assert.Len(t, report.Completed, 4)

	// theme gone, prior state back
	_, statErr := os.Stat(filepath.Join(p.ThemesDir(), "Nocturne"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, "mine", testutil.ReadFile(t, filepath.Join(p.ThemesDir(), "Custom", "index.theme")))
	assert.Equal(t, "file:///home\n", testutil.ReadFile(t, filepath.Join(p.Gtk3ConfigDir(), "bookmarks")))
	_, statErr = os.Stat(filepath.Join(p.Gtk3ConfigDir(), "gtk.css"))
	assert.True(t, os.IsNotExist(statErr), "themed gtk.css must not survive removal")

	// settings replayed and the backup file consumed
	assert.Equal(t, "'Adwaita'", store.Values["org.gnome.desktop.interface gtk-theme"])
	_, statErr = os.Stat(p.SettingsBackupFile())
	assert.True(t, os.IsNotExist(statErr))

	// applied archives consumed as well
	archives, _ = filepath.Glob(filepath.Join(p.BackupDir(), "*.tar.gz"))
	assert.Empty(t, archives)
}

func TestInstallWrongDesktopAborts(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "KDE")
	t.Setenv("PATH", t.TempDir()) // no gnome-shell on PATH either

	deps, store := testDeps(t)

	_, err := NewRunner(false).Execute(InstallSteps(deps))
	require.Error(t, err)

	// nothing happened: no backup dir, no assets, no settings written
	_, statErr := os.Stat(deps.Paths.BackupDir())
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, store.SetCalls)
}

func TestInstallWithoutSessionStillInstallsAssets(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")

	deps, store := testDeps(t)
	// every store call fails, as when the user has no active session
	store.FailGet["org.gnome.desktop.interface gtk-theme"] = true
	store.FailGet["org.gnome.desktop.wm.preferences theme"] = true
	store.FailGet["org.gnome.shell.extensions.user-theme name"] = true

	report, err := NewRunner(false).Execute(InstallSteps(deps))
	require.NoError(t, err, "an unreachable settings store must not abort the install")

	// capture proceeded with an empty backup, assets still landed
	assert.Contains(t, report.Completed, "install-assets")
	assert.FileExists(t, filepath.Join(deps.Paths.ThemesDir(), "Nocturne", "index.theme"))
	assert.Equal(t, "", testutil.ReadFile(t, deps.Paths.SettingsBackupFile()))
}

func TestApplySettingsFollowTheTheme(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")

	deps, store := testDeps(t)
	// this package also ships an icon tree
	testutil.WriteFile(t, filepath.Join(deps.Assets.SourceDir, "icons", "Nocturne", "index.theme"), "[Icon Theme]\nName=Nocturne\n")

	_, err := NewRunner(false).Execute(InstallSteps(deps))
	require.NoError(t, err)

	assert.Equal(t, "'Nocturne'", store.Values["org.gnome.desktop.interface icon-theme"])
	assert.Equal(t, "'prefer-dark'", store.Values["org.gnome.desktop.interface color-scheme"])
}

func TestApplySettingsSkipIconsWhenNotShipped(t *testing.T) {
	t.Setenv("XDG_CURRENT_DESKTOP", "GNOME")

	deps, store := testDeps(t)

	_, err := NewRunner(false).Execute(InstallSteps(deps))
	require.NoError(t, err)

	_, touched := store.Values["org.gnome.desktop.interface icon-theme"]
	assert.False(t, touched, "no installed icon tree, icon-theme must stay as the user had it")
	assert.Equal(t, "'prefer-dark'", store.Values["org.gnome.desktop.interface color-scheme"])
}

func TestRemoveWithNothingInstalled(t *testing.T) {
	deps, store := testDeps(t)

	report, err := NewRunner(false).Execute(RemoveSteps(deps))
	require.NoError(t, err)
	assert.Len(t, report.Completed, 4)
	assert.Empty(t, store.SetCalls, "no backup file means no settings replay")
}

func TestRemoveIsDryRunSafe(t *testing.T) {
	deps, _ := testDeps(t)
	p := deps.Paths
	testutil.WriteFile(t, p.SettingsBackupFile(), "org.gnome.desktop.interface gtk-theme 'Adwaita'\n")

	_, err := NewRunner(true).Execute(RemoveSteps(deps))
	require.NoError(t, err)

	// dry run leaves the backup artifacts alone
	assert.FileExists(t, p.SettingsBackupFile())
}
