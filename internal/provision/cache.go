// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/platform"
)

// VersionCacheFile is the cache-relative path of the remembered version.
const VersionCacheFile = ".rlaunch/version.yaml"

type (
	// cachedVersion is the on-disk form of the last feed answer.
	cachedVersion struct {
		Version    adoptium.Version `yaml:"version"`
		Major      uint32           `yaml:"major"`
		OS         string           `yaml:"os"`
		Arch       string           `yaml:"arch"`
		Source     string           `yaml:"source,omitempty"`
		ResolvedAt time.Time        `yaml:"resolved_at"`
	}

	// versionCache remembers the selected version so repeated launches do
	// not query the feed.
	versionCache struct {
		path   string
		ttl    time.Duration
		clock  Clock
		logger *log.Logger
	}

	// cacheKey identifies a feed query.
	cacheKey struct {
		major  uint32
		target platform.Target
		source string
	}
)

// load returns the cached version for key if it is present, matches and has
// not expired. Unreadable or malformed files count as a miss.
func (c *versionCache) load(key cacheKey) (adoptium.Version, bool) {
	if c.ttl <= 0 {
		return adoptium.Version{}, false
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("ignoring unreadable version cache", "path", c.path, "error", err)
		}
		return adoptium.Version{}, false
	}

	var entry cachedVersion
	if err := yaml.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("ignoring malformed version cache", "path", c.path, "error", err)
		return adoptium.Version{}, false
	}

	switch {
	case entry.Version.OpenJDKVersion == "":
		c.logger.Warn("ignoring version cache without a version", "path", c.path)
		return adoptium.Version{}, false
	case entry.Major != key.major || entry.Version.Major != key.major,
		entry.OS != key.target.OS || entry.Arch != key.target.Arch,
		entry.Source != key.source:
		c.logger.Debug("version cache is for a different query", "path", c.path)
		return adoptium.Version{}, false
	}

	age := c.clock.Now().Sub(entry.ResolvedAt)
	if age < 0 || age >= c.ttl {
		c.logger.Debug("version cache expired", "age", age.Round(time.Second), "ttl", c.ttl)
		return adoptium.Version{}, false
	}
	return entry.Version, true
}

// store records v for key. The file is replaced atomically.
func (c *versionCache) store(key cacheKey, v adoptium.Version) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := yaml.Marshal(cachedVersion{
		Version:    v,
		Major:      key.major,
		OS:         key.target.OS,
		Arch:       key.target.Arch,
		Source:     key.source,
		ResolvedAt: c.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding version cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".version-*.yaml")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
