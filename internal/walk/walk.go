// SPDX-License-Identifier: MPL-2.0

// Package walk enumerates the regular files under a directory tree in
// breadth-first order.
//
// The traversal keeps an explicit queue of directories instead of
// recursing, so memory grows with the width of the tree rather than its
// depth. Symbolic links and other non-regular entries are never followed;
// they are reported at warn level and skipped.
package walk

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/logging"
)

type (
	// Entry is a regular file found during a walk.
	Entry struct {
		// Path is the file's path, rooted the same way as the walk root.
		Path string
		// Rel is Path relative to the walk root, using OS separators.
		Rel string
	}

	// Walker enumerates files. The zero value is not usable; call New.
	Walker struct {
		logger *log.Logger
	}

	// Option configures a Walker.
	Option func(*Walker)
)

// WithLogger sets the logger used to report skipped entries.
func WithLogger(l *log.Logger) Option {
	return func(w *Walker) {
		w.logger = logging.OrDiscard(l)
	}
}

// New creates a Walker.
func New(opts ...Option) *Walker {
	w := &Walker{logger: logging.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Files returns an iterator over every regular file under root.
//
// Directories are visited level by level and, within a directory, entries
// are produced in lexical order. A directory that cannot be listed stops the
// walk: the iterator yields one non-nil error and ends. Callers that stop
// ranging early cause no further I/O.
func (w *Walker) Files(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		queue := []string{root}
		for len(queue) > 0 {
			dir := queue[0]
			queue[0] = ""
			queue = queue[1:]

			entries, err := os.ReadDir(dir)
			if err != nil {
				yield(Entry{}, fmt.Errorf("listing %s: %w", dir, err))
				return
			}

			for _, de := range entries {
				path := filepath.Join(dir, de.Name())
				mode := de.Type()
				switch {
				case mode.IsDir():
					queue = append(queue, path)
				case mode.IsRegular():
					rel, err := filepath.Rel(root, path)
					if err != nil {
						yield(Entry{}, fmt.Errorf("relativizing %s: %w", path, err))
						return
					}
					if !yield(Entry{Path: path, Rel: rel}, nil) {
						return
					}
				default:
					w.logger.Warn("skipping non-regular file", "path", path, "mode", mode.String())
				}
			}
		}
	}
}

// Files walks root with a default Walker.
func Files(root string) iter.Seq2[Entry, error] {
	return New().Files(root)
}
