// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Values are layered: built-in defaults, then the first config file found
// (the --config flag, {UserConfigDir}/rlaunch/config.cue, or ./rlaunch.cue),
// then RLAUNCH_* environment variables (RLAUNCH_JAVA_MAJOR for java.major),
// then explicit overrides from command-line flags. Config files are validated
// against the embedded #Config schema (config_schema.cue) before they are merged.
package config
