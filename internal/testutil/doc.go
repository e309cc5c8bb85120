// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment management (MustSetenv, SetConfigHome),
// file fixtures (WriteTree, WriteTarGz, WriteZip), a request-counting HTTP
// server (RecordingServer), a controllable clock (FakeClock), and a limiter
// for container-backed tests (ContainerSemaphore).
package testutil
