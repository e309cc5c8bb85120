// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gudenau/rlaunch/internal/platform"
)

// ErrInvalidCoordinate is returned for coordinates that cannot name a jar.
var ErrInvalidCoordinate = errors.New("invalid maven coordinate")

// Coordinate identifies one jar in a Maven repository.
type Coordinate struct {
	Group      string
	Artifact   string
	Classifier string
	Version    string
}

// ParseCoordinate parses "group:artifact:version" or
// "group:artifact:version:classifier".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var c Coordinate
	switch len(parts) {
	case 3:
		c = Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	case 4:
		c = Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2], Classifier: parts[3]}
	default:
		return Coordinate{}, fmt.Errorf("%w: %q: want group:artifact:version[:classifier]", ErrInvalidCoordinate, s)
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// MustParseCoordinate is like ParseCoordinate but panics on error.
func MustParseCoordinate(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks that every component is present and safe to use as a
// path segment.
func (c Coordinate) Validate() error {
	if c.Classifier != "" {
		if err := checkSegment("classifier", c.Classifier); err != nil {
			return err
		}
	}
	for _, part := range []struct{ name, value string }{
		{"artifact", c.Artifact},
		{"version", c.Version},
	} {
		if err := checkSegment(part.name, part.value); err != nil {
			return err
		}
	}
	if c.Group == "" {
		return fmt.Errorf("%w: empty group", ErrInvalidCoordinate)
	}
	for seg := range strings.SplitSeq(c.Group, ".") {
		if err := checkSegment("group", seg); err != nil {
			return err
		}
	}
	return nil
}

func checkSegment(name, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: empty %s", ErrInvalidCoordinate, name)
	case value == "." || value == "..",
		strings.ContainsAny(value, `/\:`),
		platform.IsWindowsReservedName(value):
		return fmt.Errorf("%w: %s %q is not a valid path segment", ErrInvalidCoordinate, name, value)
	}
	return nil
}

// String returns the coordinate in group:artifact:version[:classifier] form.
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

// FileName returns "artifact-version[-classifier].jar".
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + ".jar"
}

// RelPath returns the repository-relative path of the jar, '/'-separated.
func (c Coordinate) RelPath() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, c.FileName())
}

// LocalPath returns where the jar is cached under root.
func (c Coordinate) LocalPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.RelPath()))
}

// URL returns the jar's URL under repoBase.
func (c Coordinate) URL(repoBase string) string {
	return strings.TrimRight(repoBase, "/") + "/" + c.RelPath()
}
