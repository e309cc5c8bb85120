// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveEntry is one member of a test archive.
type ArchiveEntry struct {
	Name string
	Body string
	Mode int64
	// Link makes the entry a symlink pointing at Link.
	Link string
}

// Files turns a name-to-content map into archive entries in name order,
// marking anything under bin/ executable.
func Files(files map[string]string) []ArchiveEntry {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make([]ArchiveEntry, 0, len(names))
	for _, name := range names {
		mode := int64(0o644)
		if strings.Contains(name, "/bin/") || strings.HasPrefix(name, "bin/") {
			mode = 0o755
		}
		entries = append(entries, ArchiveEntry{Name: name, Body: files[name], Mode: mode})
	}
	return entries
}

// WriteTarGz writes a gzip-compressed tarball to path.
func WriteTarGz(t testing.TB, path string, entries []ArchiveEntry) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:    e.Name,
			Mode:    e.Mode,
			ModTime: time.Unix(0, 0),
		}
		switch {
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("failed to write tar body %s: %v", e.Name, err)
			}
		}
	}

	MustClose(t, tw)
	MustClose(t, gz)
	MustClose(t, f)
}

// WriteZip writes a zip archive to path. Symlink entries are not supported.
func WriteZip(t testing.TB, path string, entries []ArchiveEntry) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	zw := zip.NewWriter(f)

	for _, e := range entries {
		fh := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		fh.SetMode(os.FileMode(e.Mode))
		if strings.HasSuffix(e.Name, "/") {
			fh.SetMode(os.ModeDir | 0o755)
		}
		w, err := zw.CreateHeader(fh)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}

	MustClose(t, zw)
	MustClose(t, f)
}
