// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists the full session list under KeySessions.
type SessionStore struct {
	blobs BlobStore
}

// NewSessionStore creates a session store over the given blob backend.
func NewSessionStore(blobs BlobStore) *SessionStore {
	return &SessionStore{blobs: blobs}
}

// Load reads the persisted session list.
//
// Reads fail open: a missing key or a corrupted blob returns an empty
// list rather than an error, so a damaged store never blocks startup.
// The corruption is logged for diagnosis.
func (s *SessionStore) Load() []*model.ChatSession {
	data, err := s.blobs.Get(KeySessions)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Printf("[storage] session load failed, starting empty: %v", err)
		}
		return []*model.ChatSession{}
	}

	var sessions []*model.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		log.Printf("[storage] session blob corrupted, starting empty: %v", err)
		return []*model.ChatSession{}
	}
	if sessions == nil {
		sessions = []*model.ChatSession{}
	}
	return sessions
}

// Save persists the full session list, replacing the previous blob.
func (s *SessionStore) Save(sessions []*model.ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return &StoreError{Message: "session encode failed", Err: err}
	}
	return s.blobs.Put(KeySessions, data)
}
