package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrSettingsGet, "failed to read setting")
	assert.Equal(t, ErrSettingsGet, err.Code)
	assert.Equal(t, "failed to read setting", err.Message)
	assert.Equal(t, "[SETTINGS_GET] failed to read setting", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrArchiveCreate, "cannot archive %s", ".themes")
	assert.Equal(t, "[ARCHIVE_CREATE] cannot archive .themes", err.Error())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		inner   error
		wantNil bool
	}{
		{"wraps non-nil error", fmt.Errorf("boom"), false},
		{"nil error returns nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.inner, ErrBackupWrite, "write failed")
			if tt.wantNil {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, ErrBackupWrite, err.Code)
			assert.ErrorIs(t, err, tt.inner)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestIs(t *testing.T) {
	err := Wrapf(fmt.Errorf("no session"), ErrSessionUnavailable, "user %s", "alice")
	assert.True(t, errors.Is(err, New(ErrSessionUnavailable, "anything")))
	assert.False(t, errors.Is(err, New(ErrDesktopUnsupported, "anything")))
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrDesktopUnsupported, "not a GNOME session")
	assert.True(t, IsErrorCode(err, ErrDesktopUnsupported))
	assert.False(t, IsErrorCode(err, ErrSettingsSet))
	assert.False(t, IsErrorCode(fmt.Errorf("plain"), ErrDesktopUnsupported))

	// wrapped HookError is still recognized
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsErrorCode(wrapped, ErrDesktopUnsupported))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrBackupParse, GetErrorCode(New(ErrBackupParse, "bad line")))
	assert.Equal(t, ErrUnknown, GetErrorCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrSettingsSet, "set failed").
		WithDetail("schema", "org.gnome.desktop.interface").
		WithDetail("key", "gtk-theme")
	assert.Equal(t, "org.gnome.desktop.interface", err.Details["schema"])
	assert.Equal(t, "gtk-theme", err.Details["key"])
}
