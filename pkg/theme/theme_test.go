package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocturne-theme/nocturne-hook/pkg/paths"
	"github.com/nocturne-theme/nocturne-hook/pkg/testutil"
)

func newTestPaths(t *testing.T) *paths.Paths {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	return p
}

func TestInstall(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "themes", "Nocturne", "index.theme"), "[Desktop Entry]\nName=Nocturne\n")
	testutil.WriteFile(t, filepath.Join(src, "themes", "Nocturne", "gnome-shell", "gnome-shell.css"), "stage {}\n")
	testutil.WriteFile(t, filepath.Join(src, "gtk-3.0", "settings.ini"), "[Settings]\ngtk-theme-name=Nocturne\n")
	// no icons/ or gtk-4.0/ shipped

	p := newTestPaths(t)
	assets := NewAssets(src, "Nocturne")

	installed, err := assets.Install(p)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(p.ThemesDir(), "Nocturne"),
		p.Gtk3ConfigDir(),
	}, installed)

	assert.Equal(t, "[Desktop Entry]\nName=Nocturne\n",
		testutil.ReadFile(t, filepath.Join(p.ThemesDir(), "Nocturne", "index.theme")))
	assert.Equal(t, "stage {}\n",
		testutil.ReadFile(t, filepath.Join(p.ThemesDir(), "Nocturne", "gnome-shell", "gnome-shell.css")))
	assert.Equal(t, "[Settings]\ngtk-theme-name=Nocturne\n",
		testutil.ReadFile(t, filepath.Join(p.Gtk3ConfigDir(), "settings.ini")))
}

func TestInstallMergesIntoExistingConfig(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "gtk-3.0", "gtk.css"), "window {}\n")

	p := newTestPaths(t)
	testutil.WriteFile(t, filepath.Join(p.Gtk3ConfigDir(), "bookmarks"), "file:///home\n")

	assets := NewAssets(src, "Nocturne")
	_, err := assets.Install(p)
	require.NoError(t, err)

	// user's unrelated file survives the merge
	assert.Equal(t, "file:///home\n", testutil.ReadFile(t, filepath.Join(p.Gtk3ConfigDir(), "bookmarks")))
	assert.Equal(t, "window {}\n", testutil.ReadFile(t, filepath.Join(p.Gtk3ConfigDir(), "gtk.css")))
}

func TestRemove(t *testing.T) {
	p := newTestPaths(t)
	testutil.WriteFile(t, filepath.Join(p.ThemesDir(), "Nocturne", "index.theme"), "x")
	testutil.WriteFile(t, filepath.Join(p.ThemesDir(), "Adwaita", "index.theme"), "y")
	testutil.WriteFile(t, filepath.Join(p.IconsDir(), "Nocturne", "cursor.theme"), "z")

	assets := NewAssets("/nonexistent", "Nocturne")
	require.NoError(t, assets.Remove(p))

	_, err := os.Stat(filepath.Join(p.ThemesDir(), "Nocturne"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(p.IconsDir(), "Nocturne"))
	assert.True(t, os.IsNotExist(err))

	// other themes untouched
	_, err = os.Stat(filepath.Join(p.ThemesDir(), "Adwaita"))
	assert.NoError(t, err)
}

func TestRemoveNothingInstalled(t *testing.T) {
	p := newTestPaths(t)
	assets := NewAssets("/nonexistent", "Nocturne")
	assert.NoError(t, assets.Remove(p))
}

func TestChownMissingPath(t *testing.T) {
	// chown of an absent tree is a no-op, not an error
	assert.NoError(t, Chown(filepath.Join(t.TempDir(), "missing"), 1000, 1000))
}

func TestChownOwnFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "f"), "content")

	// chown to our own uid/gid always succeeds, even unprivileged
	assert.NoError(t, Chown(dir, os.Getuid(), os.Getgid()))
}

func TestReadMetainfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metainfo.xml")
	testutil.WriteFile(t, path, `<?xml version="1.0" encoding="UTF-8"?>
<component type="generic">
  <id>org.nocturne.Theme</id>
  <name>Nocturne</name>
  <summary>A dark GTK and GNOME Shell theme</summary>
  <releases>
    <release version="2.4.1" date="2026-07-01"/>
    <release version="2.4.0" date="2026-05-12"/>
  </releases>
</component>
`)

	meta, err := ReadMetainfo(path)
	require.NoError(t, err)
	assert.Equal(t, "org.nocturne.Theme", meta.ID)
	assert.Equal(t, "Nocturne", meta.Name)
	assert.Equal(t, "2.4.1", meta.Version)
	assert.Equal(t, "A dark GTK and GNOME Shell theme", meta.Summary)
}

func TestReadMetainfoMissingFile(t *testing.T) {
	meta, err := ReadMetainfo(filepath.Join(t.TempDir(), "missing.xml"))
	require.NoError(t, err)
	assert.Equal(t, &Metadata{}, meta)
}

func TestReadMetainfoMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metainfo.xml")
	testutil.WriteFile(t, path, "<component><unclosed>")

	_, err := ReadMetainfo(path)
	require.Error(t, err)
}
