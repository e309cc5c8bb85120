// SPDX-License-Identifier: MPL-2.0

// Package manifest records and checks the SHA-512 digest of every file in an
// extracted runtime.
//
// A manifest is a flat sequence of records with no header:
//
//	u8   path length N (1..255)
//	N    UTF-8 path, relative to the runtime root, '/'-separated
//	64   SHA-512 digest of the file contents
//
// Build writes one record per regular file found by a breadth-first walk.
// Verify re-hashes each listed file and reports whether all of them still
// match. Files added after the manifest was built are ignored unless strict
// verification is requested.
package manifest
