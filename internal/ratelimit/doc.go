// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit enforces the per-user message quota: at most 20
// messages within any rolling 24-hour window.
//
// The quota is tracked in a usage ledger, an ordered list of epoch-ms
// timestamps persisted as a JSON array. The ledger is pruned lazily:
// entries older than the window are dropped whenever the ledger is read
// or written, never by a background sweep. Both Check and Record persist
// the pruned ledger, so on-disk state converges even on a read-only day.
//
// A denied Check reports how long until the oldest in-window entry
// expires, which is exactly when capacity frees up.
package ratelimit
