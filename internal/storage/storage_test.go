// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// backends returns one of each BlobStore implementation rooted in a temp dir.
func backends(t *testing.T) map[string]BlobStore {
	t.Helper()

	fs, err := NewFileStoreWithDir(t.TempDir())
	require.NoError(t, err)

	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "scribe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]BlobStore{"file": fs, "sqlite": db}
}

func TestBlobStoreRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Put("k", []byte("v1")))
			got, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			// Put replaces.
			require.NoError(t, store.Put("k", []byte("v2")))
			got, err = store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, store.Delete("k"))
			_, err = store.Get("k")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, store.Delete("k"))
		})
	}
}

func TestFileStoreKeySanitized(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStoreWithDir(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Put("../escape", []byte("x")))
	got, err := fs.Get("../escape")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	// The blob must land inside the base directory.
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	for name, blobs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewSessionStore(blobs)

			s1 := model.NewChatSession()
			s1.Append(model.NewUserMessage("hello", nil))
			s1.Append(model.NewModelMessage("hi"))
			s2 := model.NewChatSession()

			require.NoError(t, store.Save([]*model.ChatSession{s1, s2}))

			loaded := store.Load()
			require.Len(t, loaded, 2)
			assert.Equal(t, s1.ID, loaded[0].ID)
			assert.Equal(t, "hello", loaded[0].Title)
			assert.Equal(t, 2, loaded[0].MessageCount())
			assert.Equal(t, model.DefaultTitle, loaded[1].Title)
		})
	}
}

func TestSessionStoreFailsOpen(t *testing.T) {
	fs, err := NewFileStoreWithDir(t.TempDir())
	require.NoError(t, err)
	store := NewSessionStore(fs)

	// Missing key: empty list, never nil.
	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Empty(t, loaded)

	// Corrupted blob: empty list, no panic.
	require.NoError(t, fs.Put(KeySessions, []byte("{not json")))
	loaded = store.Load()
	require.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestStoreErrorIs(t *testing.T) {
	wrapped := &StoreError{Message: "read failed", Err: errors.New("disk gone")}
	assert.NotErrorIs(t, wrapped, ErrKeyNotFound)
	assert.ErrorIs(t, &StoreError{Message: "key not found"}, ErrKeyNotFound)
	assert.Contains(t, wrapped.Error(), "disk gone")
}
