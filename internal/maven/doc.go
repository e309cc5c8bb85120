// SPDX-License-Identifier: MPL-2.0

// Package maven resolves Maven coordinates to jars in a local cache laid out
// like a Maven repository, fetching them and their SHA-1 sidecars on demand.
package maven
