// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions shared across scribe.
//
// # Contents
//
//   - AtomicWriteFile: crash-safe file persistence (write temp, fsync, rename)
//   - TruncateRunes / TruncateWidth: Unicode-safe string truncation
//   - IntToString / Int64ToString / FloatToString: strconv wrappers
//
// These helpers carry no dependencies on the rest of the application and
// may be imported from any package.
package util
