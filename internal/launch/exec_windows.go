// SPDX-License-Identifier: MPL-2.0

//go:build windows

package launch

import (
	"errors"
	"os"
	"os/exec"
)

// platformExec runs the runtime as a child process. A clean exit is still
// reported as an *ExitStatusError so the caller can exit with the same code.
func platformExec(argv0 string, argv, envv []string) error {
	cmd := exec.Command(argv0, argv[1:]...)
	cmd.Env = envv
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return &ExitStatusError{Code: 0}
	case errors.As(err, &exitErr):
		return &ExitStatusError{Code: exitErr.ExitCode()}
	default:
		return err
	}
}
