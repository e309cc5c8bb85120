// SPDX-License-Identifier: MPL-2.0

// Package logging builds the leveled loggers shared by every rlaunch component.
//
// Loggers are charmbracelet/log instances. Components accept a *log.Logger
// through a functional option and fall back to Discard when none is given,
// so library code never writes to the terminal unless the caller asks it to.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPrefix tags every line written by the launcher.
const DefaultPrefix = "RLaunch"

// Options configures a logger built by New.
type Options struct {
	// Level is the minimum level that is written. The zero value is log.InfoLevel.
	Level log.Level
	// Prefix is printed before each message. Empty means DefaultPrefix.
	Prefix string
	// Timestamps enables per-line timestamps.
	Timestamps bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Prefix:          prefix,
		ReportTimestamp: opts.Timestamps,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel + 1})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel accepts debug, info, warn, error and fatal, case-insensitively.
func ParseLevel(s string) (log.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
