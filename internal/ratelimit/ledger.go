// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jeranaias/scribe-tui/internal/storage"
)

// =============================================================================
// USAGE LEDGER
// =============================================================================

// ledger is the persisted usage record: epoch-ms timestamps in
// chronological order. The JSON shape (a bare array of numbers) is shared
// with other clients of the same account data.
type ledger []int64

// loadLedger reads the ledger from storage and drops entries older than
// the window. Read failures fail open: a missing or corrupted blob yields
// an empty ledger so the user is never locked out by damaged state.
func loadLedger(blobs storage.BlobStore, now time.Time, window time.Duration) ledger {
	data, err := blobs.Get(storage.KeyUsage)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			log.Printf("[ratelimit] ledger read failed, assuming empty: %v", err)
		}
		return ledger{}
	}

	var entries ledger
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[ratelimit] ledger corrupted, assuming empty: %v", err)
		return ledger{}
	}

	return entries.prune(now, window)
}

// saveLedger persists the ledger. Write failures are logged and dropped;
// the in-memory decision already happened and must not be reverted.
func saveLedger(blobs storage.BlobStore, entries ledger) {
	data, err := json.Marshal(entries)
	if err != nil {
		log.Printf("[ratelimit] ledger encode failed: %v", err)
		return
	}
	if err := blobs.Put(storage.KeyUsage, data); err != nil {
		log.Printf("[ratelimit] ledger write failed: %v", err)
	}
}

// prune returns the entries still inside the trailing window.
func (l ledger) prune(now time.Time, window time.Duration) ledger {
	cutoff := now.Add(-window).UnixMilli()
	kept := make(ledger, 0, len(l))
	for _, ts := range l {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}

// oldest returns the earliest entry. Entries are stored in chronological
// order, but scan anyway in case an external writer appended out of order.
func (l ledger) oldest() int64 {
	if len(l) == 0 {
		return 0
	}
	min := l[0]
	for _, ts := range l[1:] {
		if ts < min {
			min = ts
		}
	}
	return min
}
