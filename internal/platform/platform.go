// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// Feed operating system names.
const (
	Linux   = "linux"
	Mac     = "mac"
	Windows = "windows"
	AIX     = "aix"
	Solaris = "solaris"
)

// Target is an operating system and architecture pair in feed naming.
type Target struct {
	OS   string
	Arch string
}

// Current returns the Target for the running process.
func Current() Target {
	return FromGo(runtime.GOOS, runtime.GOARCH)
}

// FromGo translates Go's GOOS and GOARCH values into feed names. Values with
// no known translation pass through unchanged and are left for the feed to
// reject.
func FromGo(goos, goarch string) Target {
	return Target{OS: feedOS(goos), Arch: feedArch(goarch)}
}

func feedOS(goos string) string {
	switch goos {
	case "darwin":
		return Mac
	case "illumos":
		return Solaris
	default:
		return goos
	}
}

func feedArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	case "arm64":
		return "aarch64"
	case "arm":
		return "arm"
	default:
		// ppc64le, s390x and riscv64 use the same names on both sides.
		return goarch
	}
}

// String returns "os/arch".
func (t Target) String() string {
	return t.OS + "/" + t.Arch
}

// IsWindows reports whether t is a Windows target.
func (t Target) IsWindows() bool {
	return t.OS == Windows
}

// ArchiveExt returns the extension of the runtime archive the feed serves for t.
func (t Target) ArchiveExt() string {
	if t.IsWindows() {
		return "zip"
	}
	return "tar.gz"
}

// JavaExecutable returns the file name of the java launcher on t.
func (t Target) JavaExecutable() string {
	if t.IsWindows() {
		return "java.exe"
	}
	return "java"
}

// JavaHome returns the directory inside an extracted runtime that holds
// bin/java. macOS runtimes are packaged as bundles with the home under
// Contents/Home; when that directory exists it is used.
func (t Target) JavaHome(runtimeDir string) string {
	if t.OS == Mac {
		bundled := filepath.Join(runtimeDir, "Contents", "Home")
		if info, err := os.Stat(bundled); err == nil && info.IsDir() {
			return bundled
		}
	}
	return runtimeDir
}

// JavaBinary returns the path of the java launcher inside runtimeDir.
func (t Target) JavaBinary(runtimeDir string) string {
	return filepath.Join(t.JavaHome(runtimeDir), "bin", t.JavaExecutable())
}
