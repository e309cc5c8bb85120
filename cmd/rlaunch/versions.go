// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gudenau/rlaunch/internal/adoptium"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// versionsReport is the machine-readable form of the versions command.
type versionsReport struct {
	Major    uint32             `json:"major" yaml:"major"`
	OS       string             `json:"os" yaml:"os"`
	Arch     string             `json:"arch" yaml:"arch"`
	Selected *adoptium.Version  `json:"selected,omitempty" yaml:"selected,omitempty"`
	Versions []adoptium.Version `json:"versions" yaml:"versions"`
}

func newVersionsCommand(app *App) *cobra.Command {
	var output string

	versionsCmd := &cobra.Command{
		Use:   "versions",
		Short: "List the releases the version feed offers for this platform",
		Long: `List the first page of releases the version feed offers for this
platform, newest first, and mark the one rlaunch would select for the
configured major version. The version cache is neither read nor written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (valid: text, json, yaml)", output)
			}

			s, err := app.session(cmd.Context(), nil)
			if err != nil {
				return err
			}
			target := app.target
			versions, err := s.versionClient().ListVersions(cmd.Context(), adoptium.Query{OS: target.OS, Arch: target.Arch})
			if err != nil {
				return err
			}

			report := versionsReport{
				Major:    uint32(s.cfg.Java.Major), //nolint:gosec // validated positive
				OS:       target.OS,
				Arch:     target.Arch,
				Versions: versions,
			}
			best, err := adoptium.Select(versions, report.Major)
			switch {
			case err == nil:
				report.Selected = &best
			case !errors.Is(err, adoptium.ErrNoMatchingVersion):
				return err
			}

			return writeVersionsReport(cmd.OutOrStdout(), output, report)
		},
	}
	versionsCmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	return versionsCmd
}

func writeVersionsReport(w io.Writer, format string, report versionsReport) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%s %s/%s\n\n", TitleStyle.Render("Releases for"), report.OS, report.Arch)
	if len(report.Versions) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (the feed listed no releases)"))
	}
	for _, v := range report.Versions {
		marker := "  "
		if report.Selected != nil && v == *report.Selected {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Fprintf(w, "%s%s\n", marker, v)
	}
	fmt.Fprintln(w)
	if report.Selected == nil {
		fmt.Fprintf(w, "%s no release with major version %d\n", WarningStyle.Render("!"), report.Major)
	} else {
		fmt.Fprintf(w, "Selected for major %d: %s\n", report.Major, report.Selected)
	}
	return nil
}
