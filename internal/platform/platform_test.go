// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromGo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         Target
	}{
		{"linux", "amd64", Target{Linux, "x64"}},
		{"darwin", "arm64", Target{Mac, "aarch64"}},
		{"windows", "386", Target{Windows, "x86"}},
		{"linux", "arm", Target{Linux, "arm"}},
		{"linux", "ppc64le", Target{Linux, "ppc64le"}},
		{"linux", "s390x", Target{Linux, "s390x"}},
		{"illumos", "amd64", Target{Solaris, "x64"}},
		{"aix", "ppc64", Target{AIX, "ppc64"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			t.Parallel()
			if got := FromGo(tt.goos, tt.goarch); got != tt.want {
				t.Errorf("FromGo(%q, %q) = %v, want %v", tt.goos, tt.goarch, got, tt.want)
			}
		})
	}
}

func TestTarget_PerOS(t *testing.T) {
	t.Parallel()

	win := Target{OS: Windows, Arch: "x64"}
	lin := Target{OS: Linux, Arch: "x64"}

	if win.ArchiveExt() != "zip" || lin.ArchiveExt() != "tar.gz" {
		t.Errorf("ArchiveExt() = %q/%q, want zip/tar.gz", win.ArchiveExt(), lin.ArchiveExt())
	}
	if win.JavaExecutable() != "java.exe" || lin.JavaExecutable() != "java" {
		t.Errorf("JavaExecutable() = %q/%q", win.JavaExecutable(), lin.JavaExecutable())
	}
	if lin.String() != "linux/x64" {
		t.Errorf("String() = %q", lin.String())
	}
}

func TestTarget_JavaBinary(t *testing.T) {
	t.Parallel()

	runtimeDir := t.TempDir()
	lin := Target{OS: Linux, Arch: "x64"}
	mac := Target{OS: Mac, Arch: "aarch64"}

	if got, want := lin.JavaBinary(runtimeDir), filepath.Join(runtimeDir, "bin", "java"); got != want {
		t.Errorf("linux JavaBinary() = %q, want %q", got, want)
	}

	// Without a bundle layout macOS falls back to the runtime root.
	if got, want := mac.JavaBinary(runtimeDir), filepath.Join(runtimeDir, "bin", "java"); got != want {
		t.Errorf("mac JavaBinary() without bundle = %q, want %q", got, want)
	}

	home := filepath.Join(runtimeDir, "Contents", "Home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	if got, want := mac.JavaBinary(runtimeDir), filepath.Join(home, "bin", "java"); got != want {
		t.Errorf("mac JavaBinary() = %q, want %q", got, want)
	}
}

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"CON":         true,
		"con":         true,
		"nul.txt":     true,
		"com1.tar.gz": true,
		"console":     false,
		"launcher":    false,
	} {
		if got := IsWindowsReservedName(name); got != want {
			t.Errorf("IsWindowsReservedName(%q) = %v, want %v", name, got, want)
		}
	}
}
