// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/logging"
	"github.com/gudenau/rlaunch/internal/maven"
)

const (
	// ImageTypeJRE selects runtime-only builds.
	ImageTypeJRE ImageType = "jre"
	// ImageTypeJDK selects full development kits.
	ImageTypeJDK ImageType = "jdk"

	// DefaultMajor is the runtime feature release provisioned by default.
	DefaultMajor = 20
	// DefaultCacheDir is relative to the working directory.
	DefaultCacheDir = "libs"
	// DefaultMainModule is the module/class handed to java -m.
	DefaultMainModule = "net.gudenau.cavegame.launcher/net.gudenau.cavegame.launcher.Launcher"
)

var (
	// ErrInvalidImageType is returned when an ImageType value is not recognized.
	ErrInvalidImageType = errors.New("invalid image type")
	// ErrInvalidURL is the sentinel error wrapped by InvalidURLError.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidLibraryEntry is the sentinel error wrapped by InvalidLibraryEntryError.
	ErrInvalidLibraryEntry = errors.New("invalid library entry")
	// ErrInvalidJavaConfig is the sentinel error wrapped by InvalidJavaConfigError.
	ErrInvalidJavaConfig = errors.New("invalid java config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ImageType is the feed's image_type filter.
	ImageType string

	// InvalidImageTypeError is returned when an ImageType value is not recognized.
	InvalidImageTypeError struct {
		Value ImageType
	}

	// InvalidURLError is returned when a URL setting is not an absolute
	// http(s) URL.
	InvalidURLError struct {
		Field string
		Value string
	}

	// InvalidLibraryEntryError is returned when a LibraryEntry coordinate
	// cannot be parsed.
	InvalidLibraryEntryError struct {
		Index int
		Err   error
	}

	// InvalidJavaConfigError collects field-level errors from JavaConfig.
	InvalidJavaConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field-level errors from all of Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Java selects the runtime build.
		Java JavaConfig `json:"java" yaml:"java" mapstructure:"java"`
		// FeedURL is the base URL of the runtime version feed.
		FeedURL string `json:"feed_url" yaml:"feed_url" mapstructure:"feed_url"`
		// RepositoryURL is the base URL of the library repository.
		RepositoryURL string `json:"repository_url" yaml:"repository_url" mapstructure:"repository_url"`
		// CacheDir is the root of the runtime and library cache.
		CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`
		// MainModule is passed to java -m.
		MainModule string `json:"main_module" yaml:"main_module" mapstructure:"main_module"`
		// Libraries are placed on the module path in order.
		Libraries []LibraryEntry `json:"libraries" yaml:"libraries" mapstructure:"libraries"`
		// Verify configures runtime verification.
		Verify VerifyConfig `json:"verify" yaml:"verify" mapstructure:"verify"`
		// Log configures the logger.
		Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`
		// HTTP configures outbound requests.
		HTTP HTTPConfig `json:"http" yaml:"http" mapstructure:"http"`
	}

	// JavaConfig selects the runtime build.
	JavaConfig struct {
		// Major is the feature release to provision (e.g. 20).
		Major int `json:"major" yaml:"major" mapstructure:"major"`
		// ImageType is "jre" or "jdk".
		ImageType ImageType `json:"image_type" yaml:"image_type" mapstructure:"image_type"`
		// Vendor is the feed's vendor filter.
		Vendor string `json:"vendor" yaml:"vendor" mapstructure:"vendor"`
		// VersionCheckInterval is how long a feed answer is reused. Zero
		// queries the feed on every run.
		VersionCheckInterval time.Duration `json:"version_check_interval" yaml:"version_check_interval" mapstructure:"version_check_interval"`
	}

	// LibraryEntry is one module path entry.
	LibraryEntry struct {
		// Coordinate is "group:artifact:version[:classifier]".
		Coordinate string `json:"coordinate" yaml:"coordinate" mapstructure:"coordinate"`
		// Remote fetches the artifact from the repository when true.
		// Otherwise the file must already exist in the cache.
		Remote bool `json:"remote" yaml:"remote" mapstructure:"remote"`
	}

	// VerifyConfig configures runtime verification.
	VerifyConfig struct {
		// Strict also treats files missing from the manifest as corruption.
		Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		// Level is one of debug, info, warn, error.
		Level string `json:"level" yaml:"level" mapstructure:"level"`
	}

	// HTTPConfig configures outbound requests.
	HTTPConfig struct {
		// UserAgent overrides the default User-Agent header.
		UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
		// Timeout bounds each request. Zero means no timeout.
		Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	}
)

// String returns the string representation of the ImageType.
func (t ImageType) String() string { return string(t) }

// IsValid returns whether the ImageType is one of the defined image types,
// and a list of validation errors if it is not.
func (t ImageType) IsValid() (bool, []error) {
	switch t {
	case ImageTypeJRE, ImageTypeJDK:
		return true, nil
	default:
		return false, []error{&InvalidImageTypeError{Value: t}}
	}
}

// Error implements the error interface for InvalidImageTypeError.
func (e *InvalidImageTypeError) Error() string {
	return fmt.Sprintf("invalid image type %q (valid: jre, jdk)", e.Value)
}

// Unwrap returns ErrInvalidImageType for errors.Is() compatibility.
func (e *InvalidImageTypeError) Unwrap() error { return ErrInvalidImageType }

// Error implements the error interface for InvalidURLError.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("%s: invalid URL %q: must be an absolute http or https URL", e.Field, e.Value)
}

// Unwrap returns ErrInvalidURL for errors.Is() compatibility.
func (e *InvalidURLError) Unwrap() error { return ErrInvalidURL }

// Error implements the error interface for InvalidLibraryEntryError.
func (e *InvalidLibraryEntryError) Error() string {
	return fmt.Sprintf("libraries[%d]: %v", e.Index, e.Err)
}

// Unwrap returns both the sentinel and the parse error.
func (e *InvalidLibraryEntryError) Unwrap() []error {
	return []error{ErrInvalidLibraryEntry, e.Err}
}

// Error implements the error interface for InvalidJavaConfigError.
func (e *InvalidJavaConfigError) Error() string {
	return fmt.Sprintf("invalid java config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidJavaConfig for errors.Is() compatibility.
func (e *InvalidJavaConfigError) Unwrap() error { return ErrInvalidJavaConfig }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsValid returns whether the JavaConfig has valid fields.
func (c JavaConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Major <= 0 {
		errs = append(errs, fmt.Errorf("major must be positive, got %d", c.Major))
	}
	if valid, fieldErrs := c.ImageType.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.Vendor) == "" {
		errs = append(errs, errors.New("vendor must not be empty"))
	}
	if c.VersionCheckInterval < 0 {
		errs = append(errs, fmt.Errorf("version_check_interval must not be negative, got %s", c.VersionCheckInterval))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidJavaConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Parse returns the entry as a resolver library.
func (e LibraryEntry) Parse() (maven.Library, error) {
	c, err := maven.ParseCoordinate(e.Coordinate)
	if err != nil {
		return maven.Library{}, err
	}
	return maven.Library{Coordinate: c, Remote: e.Remote}, nil
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Java.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if !isHTTPURL(c.FeedURL) {
		errs = append(errs, &InvalidURLError{Field: "feed_url", Value: c.FeedURL})
	}
	if !isHTTPURL(c.RepositoryURL) {
		errs = append(errs, &InvalidURLError{Field: "repository_url", Value: c.RepositoryURL})
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		errs = append(errs, errors.New("cache_dir must not be empty"))
	}
	if !strings.Contains(c.MainModule, "/") {
		errs = append(errs, fmt.Errorf("main_module %q must have the form module/class", c.MainModule))
	}
	if len(c.Libraries) == 0 {
		errs = append(errs, errors.New("libraries must not be empty"))
	}
	for i, entry := range c.Libraries {
		if _, err := entry.Parse(); err != nil {
			errs = append(errs, &InvalidLibraryEntryError{Index: i, Err: err})
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate returns an *InvalidConfigError describing every invalid field,
// or nil.
func (c Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// ParsedLibraries converts the configured entries.
func (c Config) ParsedLibraries() ([]maven.Library, error) {
	libs := make([]maven.Library, 0, len(c.Libraries))
	for i, entry := range c.Libraries {
		lib, err := entry.Parse()
		if err != nil {
			return nil, &InvalidLibraryEntryError{Index: i, Err: err}
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Java: JavaConfig{
			Major:                DefaultMajor,
			ImageType:            ImageType(adoptium.DefaultImageType),
			Vendor:               adoptium.DefaultVendor,
			VersionCheckInterval: 24 * time.Hour,
		},
		FeedURL:       adoptium.DefaultBaseURL,
		RepositoryURL: maven.DefaultRepositoryURL,
		CacheDir:      DefaultCacheDir,
		MainModule:    DefaultMainModule,
		Libraries: []LibraryEntry{
			{Coordinate: "net.gudenau.cavegame.launcher:launcher:0.0.0", Remote: true},
			{Coordinate: "net.gudenau.cavegame:cavegame:0.0.0:logger", Remote: true},
			{Coordinate: "org.jetbrains:annotations:24.0.1", Remote: true},
		},
		Log: LogConfig{Level: "info"},
	}
}
