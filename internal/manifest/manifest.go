// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/digest"
	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
	"github.com/gudenau/rlaunch/internal/walk"
)

type (
	// Summary describes a manifest produced by Build.
	Summary struct {
		Files int
		Bytes int64
	}

	// Option configures Build and Verify.
	Option func(*options)

	options struct {
		logger *log.Logger
		strict bool
	}
)

// WithLogger sets the logger used for skipped entries and mismatch details.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrDiscard(l)
	}
}

// WithStrict makes Verify also fail when the runtime contains regular files
// that the manifest does not list.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build walks root and writes a manifest of every regular file to
// manifestPath, replacing any existing file. The manifest is written to a
// temporary file and renamed into place, so a failed Build leaves no
// manifest at manifestPath.
func Build(root, manifestPath string, opts ...Option) (_ Summary, err error) {
	o := newOptions(opts)
	var summary Summary

	dir := filepath.Dir(manifestPath)
	f, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return summary, issue.Wrap(err, issue.KindFilesystem, "create manifest", manifestPath)
	}
	tmpPath := f.Name()
	defer func() {
		if err == nil {
			return
		}
		_ = f.Close()
		_ = os.Remove(tmpPath)
		if rerr := os.Remove(manifestPath); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			o.logger.Warn("could not remove stale manifest", "path", manifestPath, "error", rerr)
		}
	}()

	w := NewWriter(f)
	walker := walk.New(walk.WithLogger(o.logger))
	for entry, walkErr := range walker.Files(root) {
		if walkErr != nil {
			return summary, issue.Wrap(walkErr, issue.KindFilesystem, "walk runtime", root)
		}

		rel := filepath.ToSlash(entry.Rel)
		if len(rel) > MaxPathLen {
			return summary, issue.NewErrorContext().
				WithKind(issue.KindFilesystem).
				WithOperation("build manifest").
				WithResource(entry.Path).
				Wrap(ErrPathTooLong).
				BuildError()
		}

		sum, size, err := hashRegular(entry.Path)
		if err != nil {
			return summary, issue.Wrap(err, issue.KindFilesystem, "hash file", entry.Path)
		}
		if err := w.Write(Record{Path: rel, Digest: sum}); err != nil {
			return summary, issue.Wrap(err, issue.KindFilesystem, "write manifest", manifestPath)
		}
		summary.Files++
		summary.Bytes += size
	}

	if err := w.Flush(); err != nil {
		return summary, issue.Wrap(err, issue.KindFilesystem, "write manifest", manifestPath)
	}
	if err := f.Close(); err != nil {
		return summary, issue.Wrap(err, issue.KindFilesystem, "close manifest", manifestPath)
	}
	if err := os.Rename(tmpPath, manifestPath); err != nil {
		return summary, issue.Wrap(err, issue.KindFilesystem, "move manifest into place", manifestPath)
	}
	o.logger.Debug("manifest written", "path", manifestPath, "files", summary.Files, "bytes", summary.Bytes)
	return summary, nil
}

func hashRegular(path string) (digest.SHA512, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return digest.SHA512{}, 0, err
	}
	sum, err := digest.FileSHA512(path)
	return sum, info.Size(), err
}

// Verify reports whether every file listed in the manifest at manifestPath
// still exists under root with the recorded digest.
//
// A listed file that is missing, no longer a regular file, or whose contents
// changed makes Verify return false. A manifest that ends in the middle of a
// record also returns false, since it was never completely written. Failing
// to open the manifest, or any other I/O error while reading a listed file,
// is returned as an error.
func Verify(manifestPath, root string, opts ...Option) (bool, error) {
	o := newOptions(opts)

	f, err := os.Open(manifestPath)
	if err != nil {
		return false, issue.Wrap(err, issue.KindFilesystem, "open manifest", manifestPath)
	}
	defer f.Close()

	var listed map[string]struct{}
	if o.strict {
		listed = make(map[string]struct{})
	}

	r := NewReader(f)
	for {
		rec, err := r.Next()
		switch {
		case errors.Is(err, io.EOF):
			if o.strict {
				return verifyNoExtras(root, listed, o)
			}
			return true, nil
		case errors.Is(err, ErrTruncated):
			o.logger.Debug("manifest is truncated", "path", manifestPath)
			return false, nil
		case errors.Is(err, ErrInvalidPath):
			return false, issue.Wrap(err, issue.KindDecode, "read manifest", manifestPath)
		case err != nil:
			return false, issue.Wrap(err, issue.KindFilesystem, "read manifest", manifestPath)
		}

		ok, err := verifyRecord(root, rec, o)
		if err != nil || !ok {
			return false, err
		}
		if listed != nil {
			listed[rec.Path] = struct{}{}
		}
	}
}

func verifyRecord(root string, rec Record, o options) (bool, error) {
	path := filepath.Join(root, filepath.FromSlash(rec.Path))

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		o.logger.Debug("listed file is missing", "path", path)
		return false, nil
	}
	if err != nil {
		return false, issue.Wrap(err, issue.KindFilesystem, "stat runtime file", path)
	}
	if !info.Mode().IsRegular() {
		o.logger.Debug("listed file is no longer a regular file", "path", path, "mode", info.Mode().String())
		return false, nil
	}

	sum, err := digest.FileSHA512(path)
	if err != nil {
		return false, issue.Wrap(err, issue.KindFilesystem, "hash runtime file", path)
	}
	if sum != rec.Digest {
		o.logger.Debug("digest mismatch", "path", path, "want", rec.Digest, "got", sum)
		return false, nil
	}
	return true, nil
}

func verifyNoExtras(root string, listed map[string]struct{}, o options) (bool, error) {
	for entry, err := range walk.New(walk.WithLogger(o.logger)).Files(root) {
		if err != nil {
			return false, issue.Wrap(err, issue.KindFilesystem, "walk runtime", root)
		}
		if _, ok := listed[filepath.ToSlash(entry.Rel)]; !ok {
			o.logger.Debug("file not listed in manifest", "path", entry.Path)
			return false, nil
		}
	}
	return true, nil
}
