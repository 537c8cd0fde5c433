package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nocturne-theme/nocturne-hook/pkg/config"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

func newGenConfigCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgExampleGenConfig,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.genconfig")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			content, err := config.Dump(cfg)
			if err != nil {
				return err
			}

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			target := config.SystemConfigPath
			if _, err := os.Stat(target); err == nil {
				logger.Warn().Str("path", target).Msg("Config file already exists, skipping")
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return err
			}
			logger.Info().Str("path", target).Msg("Written config file")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the config to "+config.SystemConfigPath+" instead of stdout")

	return cmd
}
