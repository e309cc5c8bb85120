// SPDX-License-Identifier: MPL-2.0

// Package platform maps the host onto the operating system and architecture
// names used by the runtime feed, and answers the per-OS questions that
// provisioning and launching depend on.
package platform
