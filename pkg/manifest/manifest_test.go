package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m := Default()

	require.NotEmpty(t, m.Settings)
	assert.Contains(t, m.Settings, Setting{Schema: "org.gnome.desktop.interface", Key: "gtk-theme"})
	assert.Contains(t, m.Settings, Setting{Schema: "org.gnome.shell.extensions.user-theme", Key: "name"})
	assert.Equal(t, []string{".themes", ".icons", ".config/gtk-3.0", ".config/gtk-4.0"}, m.Directories)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		wantErr bool
		check   func(t *testing.T, m *Manifest)
	}{
		{
			name: "override file",
			content: `
settings:
  - schema: org.gnome.desktop.interface
    key: font-name
directories:
  - .fonts
`,
			check: func(t *testing.T, m *Manifest) {
				assert.Equal(t, []Setting{{Schema: "org.gnome.desktop.interface", Key: "font-name"}}, m.Settings)
				assert.Equal(t, []string{".fonts"}, m.Directories)
			},
		},
		{
			name:    "missing file falls back to default",
			missing: true,
			check: func(t *testing.T, m *Manifest) {
				assert.Equal(t, Default().Settings, m.Settings)
			},
		},
		{
			name:    "malformed file",
			content: "settings: [not closed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.yaml")
			if !tt.missing {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			}

			m, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Directories, m.Directories)
}
