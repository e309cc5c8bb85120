// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gudenau/rlaunch/internal/config"
)

// newConfigCommand creates the `rlaunch config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rlaunch configuration",
		Long: `Manage rlaunch configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/rlaunch/config.cue
    macOS: ~/Library/Application Support/rlaunch/config.cue
    Windows: %AppData%\rlaunch\config.cue
  - ./rlaunch.cue

RLAUNCH_* environment variables override file values, e.g.
RLAUNCH_JAVA_MAJOR=21 or RLAUNCH_VERIFY_STRICT=true.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), nil)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			source := s.path
			if source == "" {
				source = "(using defaults)"
			}
			fmt.Fprintf(w, "// source: %s\n", source)
			fmt.Fprint(w, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Config directory:"), cfgDir)
			fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Config file:"),
				filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Local file:"),
				filepath.Join(app.workDir, config.LocalConfigFile))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			path, created, err := config.CreateDefaultConfig(cfgDir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			} else {
				fmt.Fprintf(w, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
			}
			return nil
		},
	})

	return cfgCmd
}
