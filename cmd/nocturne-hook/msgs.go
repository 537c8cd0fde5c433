package main

// Message constants
const (
	MsgRootShort = "Lifecycle hooks for the Nocturne desktop theme"
	MsgRootLong  = `nocturne-hook is invoked by the package manager around installation and
removal of the Nocturne GTK/GNOME Shell theme package.

On install it backs up the user's desktop settings and theme directories,
copies the packaged assets into the user's home, and points the desktop at
the new theme. On removal it puts everything back the way it was.`

	MsgPreinstallShort = "Verify the environment before the theme package is installed"
	MsgPreinstallLong  = `The 'preinstall' hook checks that the machine runs the desktop shell the
Nocturne theme targets. A failed check aborts the package installation with
a non-zero exit code; nothing has been modified at that point.`

	MsgPostinstallShort = "Back up current desktop state and apply the theme"
	MsgPostinstallLong  = `The 'postinstall' hook runs after the package files are on disk. It:
  - snapshots the user's theme directories into ~/.nocturne-backup
  - captures the current desktop settings to a backup file
  - copies the packaged theme assets into the user's home
  - points the desktop settings at the Nocturne theme
  - returns ownership of everything it touched to the user

Failures that only affect one setting or directory are reported and
skipped. A failure to install the theme assets themselves aborts the hook
and rolls the completed steps back.`

	MsgPostremoveShort = "Restore the desktop state saved at install time"
	MsgPostremoveLong  = `The 'postremove' hook runs after the package files are gone. It removes the
theme's directories from the user's home, re-extracts the directory
snapshots taken at install time, replays the captured desktop settings, and
deletes the backup artifacts it consumed.

Missing backup artifacts are not an error: removing a package that never
finished installing simply finds nothing to restore.`

	MsgDocsShort = "Show the hook documentation"

	MsgGenConfigShort = "Generate the hook configuration file"
	MsgGenConfigLong  = `Output the effective configuration as TOML, or write it to the system
config path with -w. An existing config file is never overwritten.`

	MsgExampleGenConfig = `  nocturne-hook gen-config            # Output to stdout
  sudo nocturne-hook gen-config -w     # Write to /etc/nocturne/hook.toml`

	MsgExamplePostinstall = `  # Normally invoked by the package manager, but can be run by hand:
  sudo nocturne-hook postinstall

  # Preview without touching anything
  sudo nocturne-hook postinstall --dry-run`

	MsgExamplePostremove = `  # Normally invoked by the package manager, but can be run by hand:
  sudo nocturne-hook postremove

  # Preview without touching anything
  sudo nocturne-hook postremove --dry-run`
)
