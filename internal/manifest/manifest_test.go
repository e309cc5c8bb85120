// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gudenau/rlaunch/internal/digest"
	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/testutil"
)

func newRuntime(t *testing.T) (root, manifestPath string) {
	t.Helper()
	dir := t.TempDir()
	root = filepath.Join(dir, "jdk-20.0.2+9")
	testutil.WriteTree(t, root, map[string]string{
		"release":             "JAVA_VERSION=\"20.0.2\"",
		"bin/java":            "#!/bin/sh\n",
		"lib/modules":         strings.Repeat("m", 4096),
		"lib/security/cacert": "certs",
	})
	return root, filepath.Join(dir, "java-20.0.2+9.hash")
}

func mustBuild(t *testing.T, root, manifestPath string, opts ...Option) Summary {
	t.Helper()
	summary, err := Build(root, manifestPath, opts...)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return summary
}

func mustVerify(t *testing.T, manifestPath, root string, opts ...Option) bool {
	t.Helper()
	ok, err := Verify(manifestPath, root, opts...)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	return ok
}

func TestBuildVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	summary := mustBuild(t, root, manifestPath)

	if summary.Files != 4 {
		t.Errorf("Files = %d, want 4", summary.Files)
	}
	if want := int64(len("JAVA_VERSION=\"20.0.2\"") + len("#!/bin/sh\n") + 4096 + len("certs")); summary.Bytes != want {
		t.Errorf("Bytes = %d, want %d", summary.Bytes, want)
	}
	if !mustVerify(t, manifestPath, root) {
		t.Error("Verify() = false on an untouched runtime")
	}
}

func TestBuild_RecordsAreBreadthFirstWithSlashes(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	mustBuild(t, root, manifestPath)

	f, err := os.Open(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var paths []string
	r := NewReader(f)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		want, err := digest.FileSHA512(filepath.Join(root, filepath.FromSlash(rec.Path)))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Digest != want {
			t.Errorf("digest for %s does not match file contents", rec.Path)
		}
		paths = append(paths, rec.Path)
	}

	want := []string{"release", "bin/java", "lib/modules", "lib/security/cacert"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("record paths = %v, want %v", paths, want)
	}
}

func TestBuild_OverwritesExisting(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	if err := os.WriteFile(manifestPath, bytes.Repeat([]byte{0xff}, 10000), 0o644); err != nil {
		t.Fatal(err)
	}

	mustBuild(t, root, manifestPath)
	if !mustVerify(t, manifestPath, root) {
		t.Error("Verify() = false after rebuilding over a stale manifest")
	}
}

func TestBuild_EmptyRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "empty.hash")
	summary := mustBuild(t, t.TempDir(), manifestPath)

	if summary.Files != 0 {
		t.Errorf("Files = %d, want 0", summary.Files)
	}
	info, err := os.Stat(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("manifest size = %d, want 0", info.Size())
	}
}

func TestBuild_PathTooLong(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	long := strings.Repeat("d", 100) + "/" + strings.Repeat("e", 100) + "/" + strings.Repeat("f", 60)
	testutil.WriteTree(t, root, map[string]string{long: "x"})

	_, err := Build(root, filepath.Join(t.TempDir(), "m.hash"))
	if !errors.Is(err, ErrPathTooLong) {
		t.Fatalf("error = %v, want ErrPathTooLong", err)
	}
	if issue.KindOf(err) != issue.KindFilesystem {
		t.Errorf("KindOf() = %v, want filesystem", issue.KindOf(err))
	}
}

func TestBuild_FailureLeavesNoManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	long := strings.Repeat("d", 100) + "/" + strings.Repeat("e", 100) + "/" + strings.Repeat("f", 60)
	testutil.WriteTree(t, root, map[string]string{
		"release": "JAVA_VERSION=\"20.0.2\"",
		long:      "x",
	})

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "m.hash")
	testutil.MustWriteFile(t, manifestPath, "stale")

	if _, err := Build(root, manifestPath); !errors.Is(err, ErrPathTooLong) {
		t.Fatalf("error = %v, want ErrPathTooLong", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("manifest directory = %v, want empty", names)
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Build(filepath.Join(dir, "missing"), filepath.Join(dir, "m.hash"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if issue.KindOf(err) != issue.KindFilesystem {
		t.Errorf("KindOf() = %v, want filesystem", issue.KindOf(err))
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tamper func(t *testing.T, root string)
	}{
		{
			name: "modified contents",
			tamper: func(t *testing.T, root string) {
				t.Helper()
				testutil.WriteTree(t, root, map[string]string{"bin/java": "#!/bin/sh\nrm -rf /\n"})
			},
		},
		{
			name: "same length different bytes",
			tamper: func(t *testing.T, root string) {
				t.Helper()
				testutil.WriteTree(t, root, map[string]string{"lib/security/cacert": "CERTS"})
			},
		},
		{
			name: "deleted file",
			tamper: func(t *testing.T, root string) {
				t.Helper()
				if err := os.Remove(filepath.Join(root, "lib", "modules")); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "file replaced by directory",
			tamper: func(t *testing.T, root string) {
				t.Helper()
				path := filepath.Join(root, "release")
				if err := os.Remove(path); err != nil {
					t.Fatal(err)
				}
				if err := os.Mkdir(path, 0o755); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, manifestPath := newRuntime(t)
			mustBuild(t, root, manifestPath)

			tt.tamper(t, root)
			if mustVerify(t, manifestPath, root) {
				t.Error("Verify() = true after tampering")
			}
		})
	}
}

func TestVerify_UntrackedFiles(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	mustBuild(t, root, manifestPath)
	testutil.WriteTree(t, root, map[string]string{"lib/injected.so": "payload"})

	if !mustVerify(t, manifestPath, root) {
		t.Error("default Verify() should ignore files missing from the manifest")
	}
	if mustVerify(t, manifestPath, root, WithStrict()) {
		t.Error("strict Verify() should reject files missing from the manifest")
	}
}

func TestVerify_StrictCleanRuntime(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	mustBuild(t, root, manifestPath)

	if !mustVerify(t, manifestPath, root, WithStrict()) {
		t.Error("strict Verify() = false on an untouched runtime")
	}
}

func TestVerify_TruncatedManifest(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)
	mustBuild(t, root, manifestPath)

	info, err := os.Stat(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(manifestPath, info.Size()-10); err != nil {
		t.Fatal(err)
	}

	if mustVerify(t, manifestPath, root) {
		t.Error("Verify() = true for a truncated manifest")
	}
}

func TestVerify_MissingManifest(t *testing.T) {
	t.Parallel()

	root, manifestPath := newRuntime(t)

	_, err := Verify(manifestPath, root)
	if err == nil {
		t.Fatal("expected error when the manifest cannot be opened")
	}
	if issue.KindOf(err) != issue.KindFilesystem {
		t.Errorf("KindOf() = %v, want filesystem", issue.KindOf(err))
	}
}

func TestVerify_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "runtime")
	testutil.WriteTree(t, dir, map[string]string{"outside": "secret"})
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(len("../outside")))
	buf.WriteString("../outside")
	sum := sha512.Sum512([]byte("secret"))
	buf.Write(sum[:])
	manifestPath := filepath.Join(dir, "m.hash")
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Verify(manifestPath, root)
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("error = %v, want ErrInvalidPath", err)
	}
	if issue.KindOf(err) != issue.KindDecode {
		t.Errorf("KindOf() = %v, want decode", issue.KindOf(err))
	}
}
