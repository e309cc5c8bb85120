// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetConfigHome points os.UserConfigDir at a directory under home and
// returns the directory it will report together with a cleanup function.
//
// Platform handling:
//   - Windows: sets AppData, config dir is home
//   - macOS: sets HOME, config dir is home/Library/Application Support
//   - others: sets XDG_CONFIG_HOME, config dir is home
//
// Usage:
//
//	configDir, cleanup := testutil.SetConfigHome(t, t.TempDir())
//	defer cleanup()
func SetConfigHome(t testing.TB, home string) (string, func()) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return home, MustSetenv(t, "AppData", home)
	case "darwin", "ios":
		return filepath.Join(home, "Library", "Application Support"), MustSetenv(t, "HOME", home)
	default:
		return home, MustSetenv(t, "XDG_CONFIG_HOME", home)
	}
}
