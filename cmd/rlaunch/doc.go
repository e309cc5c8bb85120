// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for rlaunch.
//
// The root command provisions the Java runtime and libraries and then
// replaces the process with the application. Subcommands expose the
// individual steps: provision, verify, versions and config.
package cmd
