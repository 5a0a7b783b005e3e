// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// =============================================================================
// KEYS
// =============================================================================

// Well-known blob keys. These names are shared with other clients of the
// same account data and must not change.
const (
	// KeySessions holds the full session list as a JSON array.
	KeySessions = "scribe_sessions"

	// KeyUsage holds the rate-limit ledger as a JSON array of epoch-ms
	// timestamps.
	KeyUsage = "scribe_usage"
)

// =============================================================================
// BLOB STORE INTERFACE
// =============================================================================

// BlobStore persists opaque blobs under string keys.
type BlobStore interface {
	// Get returns the blob stored under key. A missing key returns
	// ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Put stores the blob under key, replacing any previous value.
	Put(key string, data []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrKeyNotFound is returned when a blob key doesn't exist.
// Use errors.Is(err, ErrKeyNotFound) to check for this error.
var ErrKeyNotFound = &StoreError{Message: "key not found"}

// StoreError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
