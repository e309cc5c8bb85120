// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/gudenau/rlaunch/internal/launch"
)

func newRunCommand(app *App) *cobra.Command {
	var refresh bool

	runCmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Provision the runtime and start the application",
		Long: `Provision the runtime and libraries, then replace this process with
java. Arguments after "--" are passed to the application.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplication(cmd.Context(), app, refresh, args)
		},
	}
	runCmd.Flags().BoolVar(&refresh, "refresh", false, "query the version feed even if the cached answer is fresh")
	return runCmd
}

// runApplication provisions and execs java. On Unix it only returns on
// failure; elsewhere it returns the application's exit status.
func runApplication(ctx context.Context, app *App, refresh bool, args []string) error {
	s, err := app.session(ctx, nil)
	if err != nil {
		return err
	}
	d, err := s.driver(refresh)
	if err != nil {
		return err
	}
	res, err := d.Run(ctx)
	if err != nil {
		return err
	}

	err = s.launcher().Exec(launch.Command{
		Java:       res.Java,
		ModulePath: res.ModulePath,
		MainModule: s.cfg.MainModule,
		Args:       args,
	})
	var status *launch.ExitStatusError
	if errors.As(err, &status) {
		if status.Code == 0 {
			return nil
		}
		return &ExitError{Code: status.Code}
	}
	return err
}
