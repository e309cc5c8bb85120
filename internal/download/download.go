// SPDX-License-Identifier: MPL-2.0

// Package download fetches remote files into the local cache.
//
// Files are streamed into a temporary file beside the destination and renamed
// into place only after the body has been read completely, so an interrupted
// transfer never leaves a partial file under the final name.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
)

type (
	// Fetcher downloads files over HTTP.
	Fetcher struct {
		httpClient *http.Client
		userAgent  string
		logger     *log.Logger
	}

	// Option configures a Fetcher during construction.
	Option func(*Fetcher)
)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger that reports each transfer.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logging.OrDiscard(l)
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		userAgent:  "rlaunch/dev",
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchIfAbsent downloads url to dest unless dest already exists. Missing
// parent directories are created. It reports whether a download happened.
func (f *Fetcher) FetchIfAbsent(ctx context.Context, url, dest string) (bool, error) {
	_, err := os.Stat(dest)
	switch {
	case err == nil:
		f.logger.Debug("already cached", "path", dest)
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, issue.Wrap(err, issue.KindFilesystem, "check cached file", dest)
	}

	if err := f.fetch(ctx, url, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Fetcher) fetch(ctx context.Context, url, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return issue.Wrap(err, issue.KindFilesystem, "create directory", dir)
	}

	f.logger.Info("downloading", "url", url)

	body, err := f.open(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }() // read-only response body

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return issue.Wrap(err, issue.KindFilesystem, "create temporary file", dir)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	n, copyErr := saveBody(tmp, body, url, tmpPath)
	closeErr := tmp.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return issue.Wrap(closeErr, issue.KindFilesystem, "write file", tmpPath)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return issue.Wrap(err, issue.KindFilesystem, "move download into place", dest)
	}
	renamed = true

	f.logger.Debug("downloaded", "path", dest, "bytes", n)
	return nil
}

// saveBody copies body into dst. Read failures are transport errors;
// write failures are reported against path.
func saveBody(dst io.Writer, body io.Reader, url, path string) (int64, error) {
	w := &writeRecorder{w: dst}
	n, err := io.Copy(w, body)
	switch {
	case w.err != nil:
		return n, issue.Wrap(w.err, issue.KindFilesystem, "write file", path)
	case err != nil:
		return n, issue.Wrap(err, issue.KindNetwork, "download", url)
	}
	return n, nil
}

// writeRecorder remembers the first error returned by the wrapped writer.
type writeRecorder struct {
	w   io.Writer
	err error
}

func (r *writeRecorder) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}

// open issues the GET and returns the body of a 2xx response.
func (f *Fetcher) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, issue.Wrap(fmt.Errorf("creating request: %w", err), issue.KindNetwork, "download", url)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, issue.Wrap(fmt.Errorf("executing request: %w", err), issue.KindNetwork, "download", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, issue.NewErrorContext().
			WithKind(issue.KindNetwork).
			WithOperation("download").
			WithResource(url).
			WithSuggestion("Check that the repository or feed URL in your configuration is correct").
			Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode)).
			BuildError()
	}
	return resp.Body, nil
}
