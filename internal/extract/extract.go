// SPDX-License-Identifier: MPL-2.0

// Package extract unpacks runtime archives into the cache.
//
// Gzip-compressed tarballs are used on Unix-like hosts and zip files on
// Windows. Entries whose names would land outside the destination are
// rejected before anything is written for them.
package extract

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
)

// maxEntryBytes caps a single extracted file (4 GiB).
const maxEntryBytes = 4 << 30

var (
	// ErrUnsupportedFormat is returned for archives that are neither tar.gz nor zip.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrUnsafePath is returned for entries that would escape the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")

	// ErrEntryTooLarge is returned when an entry exceeds maxEntryBytes.
	ErrEntryTooLarge = errors.New("archive entry too large")
)

type (
	// Extractor unpacks archives.
	Extractor struct {
		logger *log.Logger
	}

	// Option configures an Extractor.
	Option func(*Extractor)
)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		e.logger = logging.OrDiscard(l)
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract unpacks archivePath into destDir, choosing the format from the
// file extension.
func (e *Extractor) Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return issue.Wrap(err, issue.KindFilesystem, "create directory", destDir)
	}

	var err error
	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		err = e.extractTarGz(archivePath, destDir)
	case strings.HasSuffix(name, ".zip"):
		err = e.extractZip(archivePath, destDir)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(archivePath))
	}
	if err != nil {
		kind := issue.KindFilesystem
		if errors.Is(err, ErrUnsafePath) || errors.Is(err, ErrUnsupportedFormat) || isCorrupt(err) {
			kind = issue.KindDecode
		}
		return issue.NewErrorContext().
			WithKind(kind).
			WithOperation("extract archive").
			WithResource(archivePath).
			WithSuggestion("Delete the archive so it is downloaded again").
			Wrap(err).
			BuildError()
	}
	return nil
}

func isCorrupt(err error) bool {
	return errors.Is(err, gzip.ErrHeader) ||
		errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, tar.ErrHeader) ||
		errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func (e *Extractor) extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, hdr.Name)
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, regularPerm(hdr.FileInfo().Mode().Perm())); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := e.symlink(destDir, target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(destDir, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return fmt.Errorf("linking %s: %w", hdr.Name, err)
			}
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			// PAX metadata, already applied by the reader.
		default:
			e.logger.Warn("skipping unsupported archive entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

func (e *Extractor) extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		target, err := safeJoin(destDir, zf.Name)
		if err != nil {
			return err
		}

		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			e.logger.Warn("skipping symlink in zip archive", "name", zf.Name)
		default:
			if err := writeZipEntry(zf, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeZipEntry(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", zf.Name, err)
	}
	defer rc.Close()

	return writeFile(target, rc, regularPerm(zf.Mode().Perm()))
}

// regularPerm keeps an entry's permission bits but always leaves the file
// readable and writable by its owner. Entries without any bits get 0644.
func regularPerm(perm os.FileMode) os.FileMode {
	if perm == 0 {
		return 0o644
	}
	return perm | 0o600
}

func writeFile(target string, r io.Reader, perm os.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := io.Copy(out, io.LimitReader(r, maxEntryBytes+1))
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if n > maxEntryBytes {
		return fmt.Errorf("%w: %s", ErrEntryTooLarge, target)
	}
	return nil
}

// symlink creates target pointing at linkname. Links that resolve outside
// destDir are rejected.
func (e *Extractor) symlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(destDir, resolved)
	if err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, target, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.Symlink(linkname, target); err != nil {
		e.logger.Warn("could not create symlink", "path", target, "error", err)
	}
	return nil
}

// safeJoin resolves an archive entry name under destDir.
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	clean = strings.TrimRight(clean, string(filepath.Separator))
	if clean == "" || clean == "." {
		return destDir, nil
	}
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(destDir, clean), nil
}
