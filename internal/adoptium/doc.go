// SPDX-License-Identifier: MPL-2.0

// Package adoptium queries the Adoptium release feed for Java runtime
// versions and picks the newest release of a requested major version.
//
// Versions are totally ordered by (major, minor, security, build). The
// human-readable openjdk_version label carried alongside is what names the
// runtime on disk and in download URLs.
package adoptium
