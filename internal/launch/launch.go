// SPDX-License-Identifier: MPL-2.0

// Package launch hands control to the provisioned Java runtime.
//
// On Unix-like systems the current process image is replaced, so nothing
// after a successful Exec runs. On Windows, where that is not possible, the
// runtime runs as a child with inherited standard streams and its exit code
// is returned as an *ExitStatusError.
package launch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gudenau/rlaunch/internal/issue"
	"github.com/gudenau/rlaunch/internal/logging"
)

// execFunc replaces or spawns a process. argv includes argv[0].
type execFunc func(argv0 string, argv, envv []string) error

// ErrNoModules is returned when a command has nothing on its module path.
var ErrNoModules = errors.New("module path is empty")

type (
	// Command describes a Java invocation.
	Command struct {
		// Java is the path of the java launcher.
		Java string
		// ModulePath lists jars and directories, joined with the OS list separator.
		ModulePath []string
		// MainModule is "module/class".
		MainModule string
		// Args are passed through to the application after the main module.
		Args []string
	}

	// ExitStatusError carries the exit code of a runtime that ran as a child process.
	ExitStatusError struct {
		Code int
	}

	// Launcher starts the runtime.
	Launcher struct {
		exec   execFunc
		env    func() []string
		logger *log.Logger
	}

	// Option configures a Launcher.
	Option func(*Launcher)
)

// Error implements the error interface.
func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("java exited with status %d", e.Code)
}

// WithLogger sets the logger that records the final command line.
func WithLogger(l *log.Logger) Option {
	return func(lc *Launcher) {
		lc.logger = logging.OrDiscard(l)
	}
}

// WithExec substitutes the process-replacement call, primarily for tests.
func WithExec(fn func(argv0 string, argv, envv []string) error) Option {
	return func(lc *Launcher) {
		lc.exec = fn
	}
}

// New creates a Launcher using the platform's exec mechanism and the
// current environment.
func New(opts ...Option) *Launcher {
	lc := &Launcher{
		exec:   platformExec,
		env:    os.Environ,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Argv returns the full argument vector: java -p <module path> -m <main> args...
func (c Command) Argv() []string {
	argv := make([]string, 0, 5+len(c.Args))
	argv = append(argv,
		c.Java,
		"-p", strings.Join(c.ModulePath, string(os.PathListSeparator)),
		"-m", c.MainModule,
	)
	return append(argv, c.Args...)
}

// Exec runs cmd. On Unix it only returns on failure.
func (lc *Launcher) Exec(cmd Command) error {
	if len(cmd.ModulePath) == 0 {
		return issue.Wrap(ErrNoModules, issue.KindConfig, "launch java", cmd.MainModule)
	}

	argv := cmd.Argv()
	lc.logger.Debug("launching", "argv", strings.Join(argv, " "))

	err := lc.exec(cmd.Java, argv, lc.env())
	var status *ExitStatusError
	if err == nil || errors.As(err, &status) {
		return err
	}
	return issue.NewErrorContext().
		WithKind(issue.KindFilesystem).
		WithOperation("launch java").
		WithResource(cmd.Java).
		WithSuggestion("Run 'rlaunch verify' to check the runtime, or 'rlaunch provision --refresh' to reinstall it").
		Wrap(err).
		BuildError()
}
