// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gudenau/rlaunch/internal/provision"
)

func newProvisionCommand(app *App) *cobra.Command {
	var refresh bool

	provisionCmd := &cobra.Command{
		Use:   "provision",
		Short: "Download and verify the runtime and libraries without launching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), nil)
			if err != nil {
				return err
			}
			d, err := s.driver(refresh)
			if err != nil {
				return err
			}
			res, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}
			printProvisionResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	provisionCmd.Flags().BoolVar(&refresh, "refresh", false, "query the version feed even if the cached answer is fresh")
	return provisionCmd
}

func printProvisionResult(w io.Writer, res *provision.Result) {
	runtime := "reused"
	switch res.Initial {
	case provision.StateRuntimeAbsent:
		runtime = "installed"
	case provision.StateRuntimeCorrupt:
		runtime = "reinstalled (failed verification)"
	}
	if res.Downloaded {
		runtime += ", archive downloaded"
	}

	fmt.Fprintln(w, SuccessStyle.Render("✓")+" Runtime ready")
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), res.Version)
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Java:"), res.Java)
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Runtime:"), runtime)
	if res.Manifest.Files > 0 {
		fmt.Fprintf(w, "%s %d files, %d bytes\n", KeyStyle.Render("Manifest:"), res.Manifest.Files, res.Manifest.Bytes)
	}
	fmt.Fprintln(w, KeyStyle.Render("Module path:"))
	for _, p := range res.ModulePath {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
