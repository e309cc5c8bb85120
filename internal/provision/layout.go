// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"path/filepath"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/platform"
)

// Layout is where one runtime version lives in the cache.
type Layout struct {
	// Destination holds the archive, the runtime and the manifest:
	// {root}/com/java/java/{label}.
	Destination string
	// Archive is {Destination}/java-{label}.{zip|tar.gz}.
	Archive string
	// Runtime is {Destination}/jdk-{label}, the archive's top-level directory.
	Runtime string
	// Manifest is {Destination}/java-{label}.hash.
	Manifest string
}

// NewLayout derives the cache paths for v on target under root.
func NewLayout(root string, v adoptium.Version, target platform.Target) Layout {
	label := v.String()
	dest := filepath.Join(root, "com", "java", "java", label)
	return Layout{
		Destination: dest,
		Archive:     filepath.Join(dest, "java-"+label+"."+target.ArchiveExt()),
		Runtime:     filepath.Join(dest, "jdk-"+label),
		Manifest:    filepath.Join(dest, "java-"+label+".hash"),
	}
}
