// Package session resolves the user whose desktop session the hook operates
// on. Lifecycle hooks run with the package manager's privileges, so the
// session owner has to be recovered from the invoking environment before any
// per-user settings call is made.
package session

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

// Seams for tests.
var (
	lookPath   = exec.LookPath
	runUserDir = "/run/user"
)

// TargetUser identifies the desktop session owner.
type TargetUser struct {
	Name string
	UID  int
	GID  int
	Home string
}

// Resolve determines the target user. An explicit override wins, then
// SUDO_USER, then PKEXEC_UID. Running unprivileged, the current user is the
// target.
func Resolve(override string) (*TargetUser, error) {
	logger := logging.GetLogger("session")

	if override != "" {
		return lookupByName(override)
	}

	if name := os.Getenv("SUDO_USER"); name != "" && name != "root" {
		logger.Debug().Str("user", name).Msg("Target user from SUDO_USER")
		return lookupByName(name)
	}

	if uid := os.Getenv("PKEXEC_UID"); uid != "" {
		logger.Debug().Str("uid", uid).Msg("Target user from PKEXEC_UID")
		u, err := user.LookupId(uid)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrUserLookup, "unknown uid %s", uid)
		}
		return fromUser(u)
	}

	if os.Geteuid() != 0 {
		u, err := user.Current()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrUserLookup, "cannot determine current user")
		}
		logger.Debug().Str("user", u.Username).Msg("Target user is the invoking user")
		return fromUser(u)
	}

	return nil, errors.New(errors.ErrUserLookup,
		"cannot determine target user: set SUDO_USER or configure hook.target_user")
}

func lookupByName(name string) (*TargetUser, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "unknown user %s", name)
	}
	return fromUser(u)
}

func fromUser(u *user.User) (*TargetUser, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "non-numeric uid %s", u.Uid)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserLookup, "non-numeric gid %s", u.Gid)
	}
	return &TargetUser{
		Name: u.Username,
		UID:  uid,
		GID:  gid,
		Home: u.HomeDir,
	}, nil
}

// CheckDesktop verifies the machine runs the one desktop shell whose
// settings store this hook knows how to talk to. Failing this check aborts
// the install.
func CheckDesktop() error {
	current := os.Getenv("XDG_CURRENT_DESKTOP")
	for _, part := range strings.Split(current, ":") {
		if strings.EqualFold(part, "GNOME") {
			return nil
		}
	}

	if _, err := lookPath("gnome-shell"); err == nil {
		return nil
	}

	return errors.Newf(errors.ErrDesktopUnsupported,
		"GNOME Shell not detected (XDG_CURRENT_DESKTOP=%q)", current)
}

// BusEnvironment returns the environment variables that address the target
// user's session bus. Absence of the runtime directory means no active
// session; callers treat that as a skip, not a failure.
func BusEnvironment(uid int) ([]string, error) {
	dir := filepath.Join(runUserDir, strconv.Itoa(uid))
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSessionUnavailable,
			"no session runtime directory for uid %d", uid)
	}

	return []string{
		fmt.Sprintf("DBUS_SESSION_BUS_ADDRESS=unix:path=%s", filepath.Join(dir, "bus")),
		fmt.Sprintf("XDG_RUNTIME_DIR=%s", dir),
	}, nil
}
