// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gudenau/rlaunch/internal/cueutil"
	"github.com/gudenau/rlaunch/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "rlaunch"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is looked up in the working directory when the user
	// config file does not exist.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "RLAUNCH"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the rlaunch configuration directory under the
// platform's user configuration directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions performs option-driven config loading and reports the
// file it read, or "" when only defaults and the environment applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := resolveConfigPath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'rlaunch config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", issue.Wrap(fmt.Errorf("failed to parse config: %w", err), issue.KindConfig, "load configuration", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithKind(issue.KindConfig).
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check RLAUNCH_* environment variables and command-line flags as well as the config file").
			Wrap(err).
			BuildError()
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("java.major", d.Java.Major)
	v.SetDefault("java.image_type", d.Java.ImageType)
	v.SetDefault("java.vendor", d.Java.Vendor)
	v.SetDefault("java.version_check_interval", d.Java.VersionCheckInterval)
	v.SetDefault("feed_url", d.FeedURL)
	v.SetDefault("repository_url", d.RepositoryURL)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("main_module", d.MainModule)
	v.SetDefault("libraries", d.Libraries)
	v.SetDefault("verify.strict", d.Verify.Strict)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

// resolveConfigPath picks the config file to load. An explicit path must
// exist; the default locations are optional.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithKind(issue.KindConfig).
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'rlaunch config init' to create a config file").
				Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
		return p, nil
	}
	if p := filepath.Join(opts.WorkDir, LocalConfigFile); fileExists(p) {
		return p, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges the
// fields it sets into v. Unset fields keep their defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values, err := cueutil.Decode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to dir/config.cue
// unless a file already exists there. It reports the path and whether the
// file was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, issue.Wrap(err, issue.KindFilesystem, "create config directory", dir)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	f, err := os.OpenFile(cfgPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return cfgPath, false, nil
	}
	if err != nil {
		return "", false, issue.Wrap(err, issue.KindFilesystem, "create config file", cfgPath)
	}

	_, err = f.WriteString(GenerateCUE(DefaultConfig()))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", false, issue.Wrap(err, issue.KindFilesystem, "write config file", cfgPath)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// rlaunch configuration\n\n")

	sb.WriteString("java: {\n")
	fmt.Fprintf(&sb, "\tmajor: %d\n", cfg.Java.Major)
	fmt.Fprintf(&sb, "\timage_type: %q\n", cfg.Java.ImageType)
	fmt.Fprintf(&sb, "\tvendor: %q\n", cfg.Java.Vendor)
	fmt.Fprintf(&sb, "\tversion_check_interval: %q\n", cfg.Java.VersionCheckInterval.String())
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "feed_url: %q\n", cfg.FeedURL)
	fmt.Fprintf(&sb, "repository_url: %q\n", cfg.RepositoryURL)
	fmt.Fprintf(&sb, "cache_dir: %q\n", cfg.CacheDir)
	fmt.Fprintf(&sb, "main_module: %q\n", cfg.MainModule)

	sb.WriteString("\nlibraries: [\n")
	for _, lib := range cfg.Libraries {
		fmt.Fprintf(&sb, "\t{coordinate: %q, remote: %v},\n", lib.Coordinate, lib.Remote)
	}
	sb.WriteString("]\n")

	fmt.Fprintf(&sb, "\nverify: strict: %v\n", cfg.Verify.Strict)
	fmt.Fprintf(&sb, "log: level: %q\n", cfg.Log.Level)

	sb.WriteString("\nhttp: {\n")
	if cfg.HTTP.UserAgent != "" {
		fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.HTTP.UserAgent)
	}
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.HTTP.Timeout.String())
	sb.WriteString("}\n")

	return sb.String()
}
