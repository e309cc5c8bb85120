// SPDX-License-Identifier: MPL-2.0

package provision

// State is a step of the provisioning sequence.
type State int

const (
	StateResolvingVersion State = iota
	StateCheckingExistingRuntime
	StateRuntimeValid
	StateRuntimeCorrupt
	StateRuntimeAbsent
	StateFetchingArchive
	StateExtracting
	StateBuildingManifest
	StateFetchingLibraries
	StateReady
)

var stateNames = [...]string{
	StateResolvingVersion:        "resolving-version",
	StateCheckingExistingRuntime: "checking-existing-runtime",
	StateRuntimeValid:            "runtime-valid",
	StateRuntimeCorrupt:          "runtime-corrupt",
	StateRuntimeAbsent:           "runtime-absent",
	StateFetchingArchive:         "fetching-archive",
	StateExtracting:              "extracting",
	StateBuildingManifest:        "building-manifest",
	StateFetchingLibraries:       "fetching-libraries",
	StateReady:                   "ready",
}

// String returns the kebab-case name of s.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
