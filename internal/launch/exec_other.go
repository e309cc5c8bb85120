// SPDX-License-Identifier: MPL-2.0

//go:build !unix && !windows

package launch

import (
	"errors"
	"runtime"
)

func platformExec(string, []string, []string) error {
	return errors.New("launching is not supported on " + runtime.GOOS)
}
