// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/scribe-tui/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore is a BlobStore backed by one JSON file per key inside a base
// directory. Writes are atomic (temp file + fsync + rename), so a crash
// mid-write never corrupts an existing blob.
type FileStore struct {
	// BaseDir is the directory holding the blob files.
	// Default: ~/.scribe/
	BaseDir string
}

// NewFileStore creates a file store rooted at the user's scribe directory.
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreWithDir(filepath.Join(homeDir, ".scribe"))
}

// NewFileStoreWithDir creates a file store rooted at a custom directory.
func NewFileStoreWithDir(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{BaseDir: baseDir}, nil
}

// Get returns the blob stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, &StoreError{Message: "read failed", Err: err}
	}
	return data, nil
}

// Put stores the blob under key, replacing any previous value.
func (s *FileStore) Put(key string, data []byte) error {
	if err := util.AtomicWriteFile(s.filePath(key), data, 0644); err != nil {
		return &StoreError{Message: "write failed", Err: err}
	}
	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		return &StoreError{Message: "delete failed", Err: err}
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}

// filePath returns the file path for a blob key. Keys are sanitized so a
// hostile key cannot escape the base directory.
func (s *FileStore) filePath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.BaseDir, safe+".json")
}
