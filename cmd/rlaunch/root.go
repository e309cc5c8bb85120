// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/gudenau/rlaunch/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app. Running the root
// command without a subcommand is the same as "rlaunch run".
func NewRootCommand(app *App) *cobra.Command {
	var refresh bool

	rootCmd := &cobra.Command{
		Use:   "rlaunch [-- args...]",
		Short: "Provision a Java runtime and launch a modular application",
		Long: TitleStyle.Render("rlaunch") + SubtitleStyle.Render(" - a self-provisioning Java launcher") + `

rlaunch downloads a Java runtime from the Adoptium feed on first use,
fingerprints every file it extracts, and re-verifies the runtime before
each launch. Library jars are fetched from a Maven repository and checked
against their published SHA-1 sums. Once everything is in place rlaunch
replaces itself with:

  java -p <libraries> -m <main module> [args...]

` + SubtitleStyle.Render("Examples:") + `
  rlaunch                       Provision and start the application
  rlaunch -- --demo             Pass --demo to the application
  rlaunch provision --refresh   Re-check the feed and repair the cache
  rlaunch verify --strict       Check the runtime, including extra files
  rlaunch versions -o json      List the releases the feed offers`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplication(cmd.Context(), app, refresh, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.opts.configFile, "config", "", "config file (default is <user config dir>/rlaunch/config.cue)")
	flags.StringVar(&app.opts.cacheDir, "cache-dir", "", "override the cache directory")
	flags.IntVar(&app.opts.major, "major", 0, "override the Java feature release")
	flags.BoolVarP(&app.opts.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "query the version feed even if the cached answer is fresh")

	rootCmd.AddCommand(
		newRunCommand(app),
		newProvisionCommand(app),
		newVerifyCommand(app),
		newVersionsCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// Execute runs the CLI and exits the process with the command's status.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// renderError prints err once, with suggestions and, in verbose mode, the
// full chain. Errors that were already reported are skipped.
func (a *App) renderError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.opts.verbose))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
