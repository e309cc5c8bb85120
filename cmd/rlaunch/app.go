// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/config"
	"github.com/gudenau/rlaunch/internal/download"
	"github.com/gudenau/rlaunch/internal/extract"
	"github.com/gudenau/rlaunch/internal/launch"
	"github.com/gudenau/rlaunch/internal/logging"
	"github.com/gudenau/rlaunch/internal/maven"
	"github.com/gudenau/rlaunch/internal/platform"
	"github.com/gudenau/rlaunch/internal/provision"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; command handlers build their components
	// through it.
	App struct {
		Config     ConfigProvider
		exec       func(argv0 string, argv, envv []string) error
		httpClient *http.Client
		target     platform.Target
		workDir    string
		stdout     io.Writer
		stderr     io.Writer
		opts       globalOptions
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Exec replaces the process-replacement call used to start java.
		Exec func(argv0 string, argv, envv []string) error
		// HTTPClient is used for every request. The default honors
		// http.timeout from the configuration.
		HTTPClient *http.Client
		// Target overrides the host platform.
		Target platform.Target
		// WorkDir anchors relative cache paths and the ./rlaunch.cue lookup.
		WorkDir string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// globalOptions holds the persistent flags.
	globalOptions struct {
		configFile string
		cacheDir   string
		major      int
		verbose    bool
	}

	// session is one command invocation's resolved configuration.
	session struct {
		app    *App
		cfg    *config.Config
		path   string
		logger *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Target == (platform.Target{}) {
		deps.Target = platform.Current()
	}

	return &App{
		Config:     deps.Config,
		exec:       deps.Exec,
		httpClient: deps.HTTPClient,
		target:     deps.Target,
		workDir:    deps.WorkDir,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// session loads the configuration with flag overrides layered on top and
// builds the logger.
func (a *App) session(ctx context.Context, overrides map[string]any) (*session, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if a.opts.cacheDir != "" {
		overrides["cache_dir"] = a.opts.cacheDir
	}
	if a.opts.major != 0 {
		overrides["java.major"] = a.opts.major
	}
	if a.opts.verbose {
		overrides["log.level"] = "debug"
	}

	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.opts.configFile,
		WorkDir:        a.workDir,
		Overrides:      overrides,
	})
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(a.stderr, logging.Options{Level: level, Prefix: logging.DefaultPrefix})
	if path != "" {
		logger.Debug("loaded configuration", "path", path)
	}

	return &session{app: a, cfg: cfg, path: path, logger: logger}, nil
}

// cacheRoot resolves the cache directory against the working directory.
func (s *session) cacheRoot() string {
	if filepath.IsAbs(s.cfg.CacheDir) || s.app.workDir == "" {
		return s.cfg.CacheDir
	}
	return filepath.Join(s.app.workDir, s.cfg.CacheDir)
}

func (s *session) userAgent() string {
	if s.cfg.HTTP.UserAgent != "" {
		return s.cfg.HTTP.UserAgent
	}
	return "rlaunch/" + Version
}

func (s *session) httpClient() *http.Client {
	if s.app.httpClient != nil {
		return s.app.httpClient
	}
	return &http.Client{Timeout: s.cfg.HTTP.Timeout}
}

func (s *session) versionClient() *adoptium.Client {
	return adoptium.NewClient(
		adoptium.WithHTTPClient(s.httpClient()),
		adoptium.WithBaseURL(s.cfg.FeedURL),
		adoptium.WithUserAgent(s.userAgent()),
		adoptium.WithImageType(s.cfg.Java.ImageType.String()),
		adoptium.WithVendor(s.cfg.Java.Vendor),
		adoptium.WithLogger(s.logger),
	)
}

// driver assembles the provisioning pipeline from the configuration.
func (s *session) driver(refresh bool) (*provision.Driver, error) {
	libs, err := s.cfg.ParsedLibraries()
	if err != nil {
		return nil, err
	}

	root := s.cacheRoot()
	fetcher := download.NewFetcher(
		download.WithHTTPClient(s.httpClient()),
		download.WithUserAgent(s.userAgent()),
		download.WithLogger(s.logger),
	)

	return provision.New(provision.Dependencies{
		Versions:  s.versionClient(),
		Archives:  fetcher,
		Extractor: extract.New(extract.WithLogger(s.logger)),
		Libraries: maven.NewResolver(root, fetcher,
			maven.WithRepositoryURL(s.cfg.RepositoryURL),
			maven.WithLogger(s.logger),
		),
	}, provision.Options{
		Major:                uint32(s.cfg.Java.Major), //nolint:gosec // validated positive
		Target:               s.app.target,
		CacheRoot:            root,
		Libraries:            libs,
		StrictVerify:         s.cfg.Verify.Strict,
		VersionCheckInterval: s.cfg.Java.VersionCheckInterval,
		Refresh:              refresh,
		FeedSource:           feedSource(s.cfg),
		Logger:               s.logger,
	})
}

// feedSource identifies the feed settings a cached version was selected under.
func feedSource(cfg *config.Config) string {
	return cfg.FeedURL + "|" + cfg.Java.ImageType.String() + "|" + cfg.Java.Vendor
}

func (s *session) launcher() *launch.Launcher {
	opts := []launch.Option{launch.WithLogger(s.logger)}
	if s.app.exec != nil {
		opts = append(opts, launch.WithExec(s.app.exec))
	}
	return launch.New(opts...)
}
