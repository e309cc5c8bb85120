// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is searched for rlaunch.cue. Empty means the current directory.
	WorkDir string
	// Overrides are applied last, keyed by dotted config key
	// (e.g. "java.major").
	Overrides map[string]any
}

// Provider loads configuration from explicit options.
type Provider interface {
	// Load returns the effective configuration and the path of the file it
	// was read from, or "" when no file was found.
	Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
