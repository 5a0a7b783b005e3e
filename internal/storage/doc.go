// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides blob persistence for scribe.
//
// # Architecture
//
// All persistent state lives under two well-known keys:
//
//   - KeySessions: the full session list as a JSON array
//   - KeyUsage: the rate-limit usage ledger as a JSON array of epoch-ms
//     timestamps
//
// The BlobStore interface abstracts the backend. Two implementations are
// provided:
//
//   - FileStore: one file per key, written atomically (temp + fsync + rename)
//   - SQLiteStore: a single-table key/value database (modernc.org/sqlite)
//
// SessionStore layers the session-list codec on top of any BlobStore.
// Reads fail open: a missing or corrupted blob yields the empty value, so
// a damaged store never blocks startup. Write failures are surfaced to the
// caller, which logs and continues.
package storage
