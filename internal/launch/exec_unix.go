// SPDX-License-Identifier: MPL-2.0

//go:build unix

package launch

import "golang.org/x/sys/unix"

var platformExec execFunc = unix.Exec
