// SPDX-License-Identifier: MPL-2.0

// Package provision drives a launch from nothing to a verified runtime plus
// resolved libraries.
//
// A Driver walks a fixed sequence of states:
//
//	ResolvingVersion -> CheckingExistingRuntime -> (RuntimeValid | RuntimeCorrupt | RuntimeAbsent)
//	  -> FetchingArchive -> Extracting -> BuildingManifest -> FetchingLibraries -> Ready
//
// A valid runtime skips straight to FetchingLibraries. A corrupt one has its
// runtime directory, archive and manifest removed first, so it is rebuilt
// exactly like an absent one. FetchingArchive is skipped when the archive is
// already cached.
//
// Every path under the cache is derived from the resolved version label by
// Layout; nothing else decides where files live.
package provision
