// SPDX-License-Identifier: MPL-2.0

package adoptium

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrNoMatchingVersion is returned when no release matches the requested major version.
var ErrNoMatchingVersion = errors.New("no matching runtime version")

// Version is one release from the feed.
type Version struct {
	Major    uint32 `json:"major"    yaml:"major"`
	Minor    uint32 `json:"minor"    yaml:"minor"`
	Security uint32 `json:"security" yaml:"security"`
	Build    uint32 `json:"build"    yaml:"build"`

	// OpenJDKVersion is the release label, e.g. "20.0.2+9".
	OpenJDKVersion string `json:"openjdk_version" yaml:"openjdk_version"`
}

// Compare orders versions by major, minor, security and build. The label is
// not part of the order.
func Compare(a, b Version) int {
	return cmp.Or(
		cmp.Compare(a.Major, b.Major),
		cmp.Compare(a.Minor, b.Minor),
		cmp.Compare(a.Security, b.Security),
		cmp.Compare(a.Build, b.Build),
	)
}

// Compare returns -1, 0 or +1 as v sorts before, equal to, or after o.
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// String returns the release label.
func (v Version) String() string { return v.OpenJDKVersion }

// Select returns the greatest version whose Major equals major.
func Select(versions []Version, major uint32) (Version, error) {
	var candidates []Version
	for _, v := range versions {
		if v.Major == major {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Version{}, fmt.Errorf("%w: major %d among %d releases", ErrNoMatchingVersion, major, len(versions))
	}
	return slices.MaxFunc(candidates, Compare), nil
}

// SortDescending orders versions newest first.
func SortDescending(versions []Version) {
	slices.SortStableFunc(versions, func(a, b Version) int {
		return Compare(b, a)
	})
}
