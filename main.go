// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/gudenau/rlaunch/cmd/rlaunch"

func main() {
	cmd.Execute()
}
