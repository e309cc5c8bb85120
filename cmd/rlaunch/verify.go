// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gudenau/rlaunch/internal/provision"
)

func newVerifyCommand(app *App) *cobra.Command {
	var strict bool

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the cached runtime against its manifest",
		Long: `Check every file of the cached runtime against the digests recorded
when it was installed. Nothing is modified. Exits with status 1 if the
runtime is missing or does not match.

With --strict, files that are not listed in the manifest also count as
a mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("strict") {
				overrides["verify.strict"] = strict
			}
			s, err := app.session(cmd.Context(), overrides)
			if err != nil {
				return err
			}
			d, err := s.driver(false)
			if err != nil {
				return err
			}
			insp, err := d.Inspect(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch insp.State {
			case provision.StateRuntimeValid:
				fmt.Fprintf(w, "%s Runtime %s verified: %s\n", SuccessStyle.Render("✓"), insp.Version, insp.Layout.Runtime)
				return nil
			case provision.StateRuntimeAbsent:
				fmt.Fprintf(w, "%s Runtime %s is not installed. Run 'rlaunch provision' first.\n", WarningStyle.Render("!"), insp.Version)
			default:
				fmt.Fprintf(w, "%s Runtime %s failed verification: %s\n", ErrorStyle.Render("✗"), insp.Version, insp.Layout.Runtime)
			}
			return &ExitError{Code: 1}
		},
	}
	verifyCmd.Flags().BoolVar(&strict, "strict", false, "treat files missing from the manifest as a mismatch")
	return verifyCmd
}
