// SPDX-License-Identifier: MPL-2.0

package walk

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/gudenau/rlaunch/internal/logging"
)

func mustWrite(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	var rels []string
	for entry, err := range w.Files(root) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Path != filepath.Join(root, entry.Rel) {
			t.Errorf("Path %q does not match root+Rel %q", entry.Path, entry.Rel)
		}
		rels = append(rels, filepath.ToSlash(entry.Rel))
	}
	return rels
}

func TestFiles_BreadthFirst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{
		"a/deep/x.txt",
		"b.txt",
		"a/y.txt",
		"c/z.txt",
		"release",
	} {
		mustWrite(t, root, rel)
	}
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := collect(t, New(), root)
	want := []string{"b.txt", "release", "a/y.txt", "c/z.txt", "a/deep/x.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Files() = %v, want %v", got, want)
	}
}

func TestFiles_EmptyRoot(t *testing.T) {
	t.Parallel()

	if got := collect(t, New(), t.TempDir()); len(got) != 0 {
		t.Errorf("Files() on empty dir = %v, want none", got)
	}
}

func TestFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	var errs int
	for _, err := range Files(filepath.Join(t.TempDir(), "missing")) {
		if err == nil {
			t.Fatal("expected only an error")
		}
		errs++
	}
	if errs != 1 {
		t.Errorf("got %d errors, want 1", errs)
	}
}

func TestFiles_EarlyStop(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{"1", "2", "3"} {
		mustWrite(t, root, rel)
	}

	var n int
	for range Files(root) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterations = %d, want 1", n)
	}
}

func TestFiles_SkipsSymlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on Windows")
	}

	root := t.TempDir()
	mustWrite(t, root, "real/file.txt")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "dirlink")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real", "file.txt"), filepath.Join(root, "filelink")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := New(WithLogger(logging.New(&buf, logging.Options{})))

	got := collect(t, w, root)
	if !slices.Equal(got, []string{"real/file.txt"}) {
		t.Errorf("Files() = %v, want only the real file", got)
	}
	if strings.Count(buf.String(), "skipping non-regular file") != 2 {
		t.Errorf("expected two skip warnings, got:\n%s", buf.String())
	}
}
