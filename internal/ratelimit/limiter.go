// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"time"

	"github.com/jeranaias/scribe-tui/internal/storage"
)

// Quota parameters. MaxMessages sends are allowed within any trailing
// Window; the MaxMessages+1th is denied until the oldest entry ages out.
const (
	MaxMessages = 20
	Window      = 24 * time.Hour
)

// Result is the outcome of a quota check.
type Result struct {
	// Allowed reports whether a send may proceed.
	Allowed bool

	// TimeRemaining is how long until capacity frees up. Zero when
	// Allowed is true.
	TimeRemaining time.Duration
}

// =============================================================================
// LIMITER
// =============================================================================

// Limiter enforces the sliding-window quota over a persisted ledger.
// It is not safe for concurrent use; the orchestrator serializes access.
type Limiter struct {
	blobs storage.BlobStore
	now   func() time.Time
}

// NewLimiter creates a limiter over the given blob backend.
func NewLimiter(blobs storage.BlobStore) *Limiter {
	return &Limiter{blobs: blobs, now: time.Now}
}

// Check reports whether a send is currently allowed. The pruned ledger is
// persisted even when nothing changed, so stale entries are cleaned up as
// a side effect of every check.
func (l *Limiter) Check() Result {
	now := l.now()
	entries := loadLedger(l.blobs, now, Window)
	saveLedger(l.blobs, entries)

	if len(entries) < MaxMessages {
		return Result{Allowed: true}
	}

	// Capacity frees when the oldest in-window entry crosses the window
	// boundary.
	freesAt := time.UnixMilli(entries.oldest()).Add(Window)
	remaining := freesAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: false, TimeRemaining: remaining}
}

// Record appends the current moment to the ledger and persists it.
// Usage is recorded on attempt, not on success; a failed or cancelled
// request still consumes quota.
func (l *Limiter) Record() {
	now := l.now()
	entries := loadLedger(l.blobs, now, Window)
	entries = append(entries, now.UnixMilli())
	saveLedger(l.blobs, entries)
}

// Count returns the number of in-window entries, for display.
func (l *Limiter) Count() int {
	return len(loadLedger(l.blobs, l.now(), Window))
}
