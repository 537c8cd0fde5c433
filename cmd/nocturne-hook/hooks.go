package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nocturne-theme/nocturne-hook/pkg/config"
	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/gsettings"
	"github.com/nocturne-theme/nocturne-hook/pkg/lifecycle"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
	"github.com/nocturne-theme/nocturne-hook/pkg/manifest"
	"github.com/nocturne-theme/nocturne-hook/pkg/paths"
	"github.com/nocturne-theme/nocturne-hook/pkg/session"
	"github.com/nocturne-theme/nocturne-hook/pkg/style"
	"github.com/nocturne-theme/nocturne-hook/pkg/theme"
)

func newPreinstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preinstall",
		Short: MsgPreinstallShort,
		Long:  MsgPreinstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := style.NewPrinter(os.Stdout)
			if err := session.CheckDesktop(); err != nil {
				printer.Errorf("%v", err)
				return err
			}
			printer.Successf("GNOME desktop detected")
			return nil
		},
	}
}

func newPostinstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "postinstall",
		Short:   MsgPostinstallShort,
		Long:    MsgPostinstallLong,
		Example: MsgExamplePostinstall,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			printer := style.NewPrinter(os.Stdout)

			deps, cfg, err := buildDeps()
			if err != nil {
				if errors.IsErrorCode(err, errors.ErrUserLookup) {
					printer.Warnf("Cannot determine whose desktop to theme, leaving settings untouched: %v", err)
					return nil
				}
				printer.Errorf("%v", err)
				return err
			}

			if meta, metaErr := theme.ReadMetainfo(cfg.Theme.Metainfo); metaErr == nil && meta.Name != "" {
				printer.Infof("Installing %s %s for %s", meta.Name, meta.Version, deps.User.Name)
			} else {
				printer.Infof("Installing %s theme for %s", cfg.Theme.Name, deps.User.Name)
			}

			report, err := lifecycle.NewRunner(dryRun).Execute(lifecycle.InstallSteps(deps))
			printer.Report("install", report, dryRun)
			if err != nil {
				printer.Errorf("%v", err)
			}
			return err
		},
	}
}

func newPostremoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "postremove",
		Short:   MsgPostremoveShort,
		Long:    MsgPostremoveLong,
		Example: MsgExamplePostremove,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			printer := style.NewPrinter(os.Stdout)

			deps, cfg, err := buildDeps()
			if err != nil {
				if errors.IsErrorCode(err, errors.ErrUserLookup) {
					printer.Warnf("Cannot determine whose desktop to restore, nothing to do: %v", err)
					return nil
				}
				printer.Errorf("%v", err)
				return err
			}

			printer.Infof("Restoring desktop state for %s (%s theme removed)", deps.User.Name, cfg.Theme.Name)

			report, err := lifecycle.NewRunner(dryRun).Execute(lifecycle.RemoveSteps(deps))
			printer.Report("removal", report, dryRun)
			if err != nil {
				printer.Errorf("%v", err)
			}
			return err
		},
	}
}

// buildDeps assembles the collaborators for a lifecycle run: configuration,
// target user, paths rooted at that user's home, the settings manifest, and
// a settings store wired into the user's session when the hook runs
// privileged.
func buildDeps() (*lifecycle.Deps, *config.Config, error) {
	logger := logging.GetLogger("hooks")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	user, err := session.Resolve(cfg.Hook.TargetUser)
	if err != nil {
		return nil, nil, err
	}

	p, err := paths.New(user.Home)
	if err != nil {
		return nil, nil, err
	}

	m, err := manifest.Load(cfg.Hook.Manifest)
	if err != nil {
		return nil, nil, err
	}

	var opts []gsettings.Option
	if os.Geteuid() == 0 {
		busEnv, busErr := session.BusEnvironment(user.UID)
		if busErr != nil {
			// No active session: settings calls will fail per-entry and be
			// skipped, the file and archive work still proceeds.
			logger.Warn().Err(busErr).Str("user", user.Name).Msg("No session bus for target user")
		}
		opts = append(opts, gsettings.AsUser(user.Name, busEnv))
	}
	store := gsettings.NewCLIStore(gsettings.NewExecRunner(), opts...)

	return &lifecycle.Deps{
		Store:     store,
		Paths:     p,
		Manifest:  m,
		Assets:    theme.NewAssets(cfg.Theme.SourceDir, cfg.Theme.Name),
		User:      user,
		ThemeName: cfg.Theme.Name,
	}, cfg, nil
}
