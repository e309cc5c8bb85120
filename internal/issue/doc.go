// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Every error that leaves a provisioning component is an ActionableError
// tagged with a Kind, so the command layer can tell a network failure from a
// corrupt cache or a bad configuration file without string matching.
package issue
