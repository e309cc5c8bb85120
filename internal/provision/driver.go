// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
	"github.com/gudenau/rlaunch/internal/manifest"
	"github.com/gudenau/rlaunch/internal/maven"
	"github.com/gudenau/rlaunch/internal/platform"
)

// ErrAlreadyRan is returned by a second call to Driver.Run.
var ErrAlreadyRan = errors.New("provisioning driver already ran")

type (
	// VersionResolver picks a runtime version and knows where to download it.
	VersionResolver interface {
		SelectBest(ctx context.Context, major uint32, osName, arch string) (adoptium.Version, error)
		BinaryURL(v adoptium.Version, osName, arch string) string
	}

	// ArchiveFetcher downloads a file unless it is already present.
	ArchiveFetcher interface {
		FetchIfAbsent(ctx context.Context, url, dest string) (bool, error)
	}

	// Extractor unpacks an archive into a directory.
	Extractor interface {
		Extract(archivePath, destDir string) error
	}

	// LibraryResolver maps libraries to local jar paths.
	LibraryResolver interface {
		ResolveAll(ctx context.Context, libs []maven.Library) ([]string, error)
	}

	// Clock supplies the current time for version cache expiry.
	Clock interface {
		Now() time.Time
	}

	// Dependencies are the collaborators a Driver orchestrates.
	Dependencies struct {
		Versions  VersionResolver
		Archives  ArchiveFetcher
		Extractor Extractor
		Libraries LibraryResolver
	}

	// Options configures a Driver.
	Options struct {
		// Major is the Java major version to provision.
		Major uint32
		// Target selects the runtime build. The zero value means the host.
		Target platform.Target
		// CacheRoot is the library cache directory.
		CacheRoot string
		// Libraries are resolved, in order, after the runtime is ready.
		Libraries []maven.Library
		// StrictVerify also treats files missing from the manifest as corruption.
		StrictVerify bool
		// VersionCheckInterval is how long a resolved version is reused
		// before the feed is queried again. Zero disables the cache.
		VersionCheckInterval time.Duration
		// Refresh ignores the version cache for this run.
		Refresh bool
		// FeedSource distinguishes cached answers from different feeds, e.g.
		// the feed URL plus image type and vendor.
		FeedSource string
		// Clock defaults to the system clock.
		Clock Clock
		// Logger defaults to a discarding logger.
		Logger *log.Logger
		// OnTransition, when set, observes every state entered.
		OnTransition func(State)
	}

	// Result is the outcome of a successful Run.
	Result struct {
		Version adoptium.Version
		Layout  Layout
		// Java is the path of the runtime's java launcher.
		Java string
		// ModulePath holds the resolved library jars in configuration order.
		ModulePath []string
		// Initial is the runtime state found before any repair.
		Initial State
		// Downloaded reports whether the archive was fetched during this run.
		Downloaded bool
		// Manifest describes the manifest built during this run, if any.
		Manifest manifest.Summary
	}

	// Inspection is the read-only view of the cached runtime used by verify.
	Inspection struct {
		Version adoptium.Version
		Layout  Layout
		State   State
	}

	// Driver runs the provisioning sequence.
	Driver struct {
		deps   Dependencies
		opts   Options
		cache  *versionCache
		logger *log.Logger
		ran    atomic.Bool
	}

	systemClock struct{}
)

func (systemClock) Now() time.Time { return time.Now() }

// New validates deps and creates a Driver.
func New(deps Dependencies, opts Options) (*Driver, error) {
	var missing []string
	if deps.Versions == nil {
		missing = append(missing, "Versions")
	}
	if deps.Archives == nil {
		missing = append(missing, "Archives")
	}
	if deps.Extractor == nil {
		missing = append(missing, "Extractor")
	}
	if deps.Libraries == nil {
		missing = append(missing, "Libraries")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("provision: missing dependencies: %s", strings.Join(missing, ", "))
	}

	if opts.Target == (platform.Target{}) {
		opts.Target = platform.Current()
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	logger := logging.OrDiscard(opts.Logger)

	return &Driver{
		deps: deps,
		opts: opts,
		cache: &versionCache{
			path:   filepath.Join(opts.CacheRoot, filepath.FromSlash(VersionCacheFile)),
			ttl:    opts.VersionCheckInterval,
			clock:  opts.Clock,
			logger: logger,
		},
		logger: logger,
	}, nil
}

// Run provisions the runtime and libraries. It may be called once.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if !d.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRan
	}

	d.enter(StateResolvingVersion)
	version, err := d.resolveVersion(ctx, true)
	if err != nil {
		return nil, err
	}
	layout := NewLayout(d.opts.CacheRoot, version, d.opts.Target)
	res := &Result{Version: version, Layout: layout}

	d.enter(StateCheckingExistingRuntime)
	state, err := d.checkRuntime(layout)
	if err != nil {
		return nil, err
	}
	res.Initial = state
	d.enter(state)

	if state == StateRuntimeCorrupt {
		d.logger.Warn("runtime failed verification, reinstalling", "version", version.String())
		if err := wipe(layout); err != nil {
			return nil, err
		}
	}
	if state != StateRuntimeValid {
		if err := d.install(ctx, version, layout, res); err != nil {
			return nil, err
		}
	}

	res.Java = d.opts.Target.JavaBinary(layout.Runtime)
	if _, err := os.Stat(res.Java); err != nil {
		return nil, issue.NewErrorContext().
			WithKind(issue.KindFilesystem).
			WithOperation("locate java launcher").
			WithResource(res.Java).
			WithSuggestion("Run 'rlaunch provision --refresh' to reinstall the runtime").
			Wrap(err).
			BuildError()
	}

	d.enter(StateFetchingLibraries)
	paths, err := d.deps.Libraries.ResolveAll(ctx, d.opts.Libraries)
	if err != nil {
		return nil, err
	}
	res.ModulePath = paths

	d.enter(StateReady)
	return res, nil
}

// Inspect resolves the version and reports the state of its cached runtime
// without modifying anything. A stale version cache is read but not
// rewritten.
func (d *Driver) Inspect(ctx context.Context) (*Inspection, error) {
	version, err := d.resolveVersion(ctx, false)
	if err != nil {
		return nil, err
	}
	layout := NewLayout(d.opts.CacheRoot, version, d.opts.Target)
	state, err := d.checkRuntime(layout)
	if err != nil {
		return nil, err
	}
	return &Inspection{Version: version, Layout: layout, State: state}, nil
}

func (d *Driver) enter(s State) {
	d.logger.Debug("provisioning", "state", s.String())
	if d.opts.OnTransition != nil {
		d.opts.OnTransition(s)
	}
}

// resolveVersion answers from the version cache when it is fresh and
// otherwise queries the feed, storing the answer only when persist is set.
func (d *Driver) resolveVersion(ctx context.Context, persist bool) (adoptium.Version, error) {
	key := cacheKey{major: d.opts.Major, target: d.opts.Target, source: d.opts.FeedSource}

	if !d.opts.Refresh {
		if v, ok := d.cache.load(key); ok {
			d.logger.Debug("using cached runtime version", "version", v.String())
			return v, validateLabel(v)
		}
	}

	v, err := d.deps.Versions.SelectBest(ctx, d.opts.Major, d.opts.Target.OS, d.opts.Target.Arch)
	if err != nil {
		return adoptium.Version{}, err
	}
	if err := validateLabel(v); err != nil {
		return adoptium.Version{}, err
	}
	if persist {
		if err := d.cache.store(key, v); err != nil {
			d.logger.Warn("could not write version cache", "path", d.cache.path, "error", err)
		}
	}
	d.logger.Info("resolved runtime version", "version", v.String())
	return v, nil
}

// validateLabel rejects labels that cannot be used as a single path segment.
func validateLabel(v adoptium.Version) error {
	label := v.String()
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return issue.NewErrorContext().
			WithKind(issue.KindDecode).
			WithOperation("use runtime version label").
			WithResource(fmt.Sprintf("%q", label)).
			BuildError()
	}
	return nil
}

// checkRuntime classifies the cached runtime as valid, corrupt or absent.
func (d *Driver) checkRuntime(l Layout) (State, error) {
	info, err := os.Stat(l.Runtime)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return StateRuntimeAbsent, nil
	case err != nil:
		return 0, issue.Wrap(err, issue.KindFilesystem, "inspect runtime", l.Runtime)
	case !info.IsDir():
		d.logger.Debug("runtime path is not a directory", "path", l.Runtime)
		return StateRuntimeCorrupt, nil
	}

	if _, err := os.Stat(l.Manifest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d.logger.Debug("runtime has no manifest", "path", l.Manifest)
			return StateRuntimeCorrupt, nil
		}
		return 0, issue.Wrap(err, issue.KindFilesystem, "inspect manifest", l.Manifest)
	}

	opts := []manifest.Option{manifest.WithLogger(d.logger)}
	if d.opts.StrictVerify {
		opts = append(opts, manifest.WithStrict())
	}
	ok, err := manifest.Verify(l.Manifest, l.Runtime, opts...)
	if err != nil {
		return 0, err
	}
	if !ok {
		return StateRuntimeCorrupt, nil
	}
	return StateRuntimeValid, nil
}

// install fetches, extracts and fingerprints the runtime.
func (d *Driver) install(ctx context.Context, v adoptium.Version, l Layout, res *Result) error {
	_, err := os.Stat(l.Archive)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.enter(StateFetchingArchive)
		url := d.deps.Versions.BinaryURL(v, d.opts.Target.OS, d.opts.Target.Arch)
		if _, err := d.deps.Archives.FetchIfAbsent(ctx, url, l.Archive); err != nil {
			return err
		}
		res.Downloaded = true
	case err != nil:
		return issue.Wrap(err, issue.KindFilesystem, "inspect archive", l.Archive)
	}

	d.enter(StateExtracting)
	if err := d.deps.Extractor.Extract(l.Archive, l.Destination); err != nil {
		if issue.KindOf(err) == issue.KindDecode {
			d.logger.Warn("removing unreadable archive", "path", l.Archive)
			_ = os.Remove(l.Archive)
		}
		return err
	}
	if info, err := os.Stat(l.Runtime); err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return issue.NewErrorContext().
			WithKind(issue.KindFilesystem).
			WithOperation("locate extracted runtime").
			WithResource(l.Runtime).
			WithSuggestion("The archive did not contain the expected top-level directory").
			Wrap(err).
			BuildError()
	}

	d.enter(StateBuildingManifest)
	summary, err := manifest.Build(l.Runtime, l.Manifest, manifest.WithLogger(d.logger))
	if err != nil {
		return err
	}
	res.Manifest = summary
	return nil
}

// wipe removes the runtime directory, the archive and the manifest.
func wipe(l Layout) error {
	if err := os.RemoveAll(l.Runtime); err != nil {
		return issue.Wrap(err, issue.KindFilesystem, "remove runtime", l.Runtime)
	}
	for _, p := range []string{l.Archive, l.Manifest} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return issue.Wrap(err, issue.KindFilesystem, "remove file", p)
		}
	}
	return nil
}
