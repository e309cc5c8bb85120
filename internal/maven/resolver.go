// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/digest"
	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
)

const (
	// DefaultRepositoryURL is Maven Central.
	DefaultRepositoryURL = "https://repo1.maven.org/maven2"

	sidecarExt = ".sha1"
)

type (
	// Fetcher downloads a URL to a destination that does not exist yet.
	Fetcher interface {
		FetchIfAbsent(ctx context.Context, url, dest string) (bool, error)
	}

	// Library is a jar the launcher needs on its module path.
	Library struct {
		Coordinate Coordinate
		// Remote allows fetching the jar when it is not cached. Local-only
		// libraries are expected to have been placed in the cache already.
		Remote bool
	}

	// Resolver maps coordinates to verified local jar paths.
	Resolver struct {
		root    string
		repoURL string
		fetcher Fetcher
		logger  *log.Logger
	}

	// Option configures a Resolver during construction.
	Option func(*Resolver)
)

// WithRepositoryURL overrides the remote repository base URL.
func WithRepositoryURL(u string) Option {
	return func(r *Resolver) {
		r.repoURL = u
	}
}

// WithLogger sets the logger used for cache decisions.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrDiscard(l)
	}
}

// NewResolver creates a Resolver caching jars under root.
func NewResolver(root string, fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		root:    root,
		repoURL: DefaultRepositoryURL,
		fetcher: fetcher,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the local path of c's jar.
//
// When useRemote is false the path is returned without touching the
// filesystem. Otherwise a cached jar is checked against its cached SHA-1
// sidecar. On a mismatch, or when only one of the two exists, both are
// deleted and downloaded again. A freshly downloaded pair is not
// re-verified; the next Resolve checks it.
func (r *Resolver) Resolve(ctx context.Context, c Coordinate, useRemote bool) (string, error) {
	jar := c.LocalPath(r.root)
	if !useRemote {
		return jar, nil
	}
	sidecar := jar + sidecarExt

	ok, err := r.cached(jar, sidecar)
	if err != nil {
		return "", err
	}
	if ok {
		r.logger.Debug("library cached", "coordinate", c.String())
		return jar, nil
	}

	url := c.URL(r.repoURL)
	if _, err := r.fetcher.FetchIfAbsent(ctx, url, jar); err != nil {
		return "", fmt.Errorf("fetching %s: %w", c, err)
	}
	if _, err := r.fetcher.FetchIfAbsent(ctx, url+sidecarExt, sidecar); err != nil {
		return "", fmt.Errorf("fetching checksum for %s: %w", c, err)
	}
	return jar, nil
}

// cached reports whether both files exist and agree. Stale or partial pairs
// are removed.
func (r *Resolver) cached(jar, sidecar string) (bool, error) {
	jarExists, err := exists(jar)
	if err != nil {
		return false, err
	}
	sidecarExists, err := exists(sidecar)
	if err != nil {
		return false, err
	}
	if !jarExists || !sidecarExists {
		return false, r.removePair(jar, sidecar)
	}

	want, err := digest.ReadSidecar(sidecar)
	if errors.Is(err, digest.ErrMalformed) {
		return false, issue.NewErrorContext().
			WithKind(issue.KindDecode).
			WithOperation("read checksum").
			WithResource(sidecar).
			WithSuggestion("Delete the file so it is downloaded again").
			Wrap(err).
			BuildError()
	}
	if err != nil {
		return false, issue.Wrap(err, issue.KindFilesystem, "read checksum", sidecar)
	}

	got, err := digest.FileSHA1(jar)
	if err != nil {
		return false, issue.Wrap(err, issue.KindFilesystem, "hash library", jar)
	}
	if bytes.Equal(got[:], want) {
		return true, nil
	}

	r.logger.Warn("cached library does not match its checksum, fetching again", "path", jar)
	return false, r.removePair(jar, sidecar)
}

// removePair deletes whichever of the jar and its sidecar exist.
func (r *Resolver) removePair(jar, sidecar string) error {
	for _, p := range []string{jar, sidecar} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return issue.Wrap(err, issue.KindFilesystem, "remove stale library", p)
		}
	}
	return nil
}

// ResolveAll resolves libs in order and returns their local paths.
func (r *Resolver) ResolveAll(ctx context.Context, libs []Library) ([]string, error) {
	paths := make([]string, 0, len(libs))
	for _, lib := range libs {
		p, err := r.Resolve(ctx, lib.Coordinate, lib.Remote)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func exists(p string) (bool, error) {
	_, err := os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, issue.Wrap(err, issue.KindFilesystem, "stat", p)
	}
}
