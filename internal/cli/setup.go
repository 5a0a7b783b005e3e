// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Shared wiring for the command surfaces.

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jeranaias/scribe-tui/internal/completion"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/storage"
	"github.com/jeranaias/scribe-tui/internal/upload"
)

// OpenBlobStore opens the configured storage backend. The caller owns
// the returned store and must Close it.
func OpenBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "file":
		store, err := storage.NewFileStoreWithDir(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewSQLiteStore(filepath.Join(cfg.Storage.Dir, "scribe.db"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	}
}

// BuildOrchestrator wires the full send pipeline on top of an open
// blob store.
func BuildOrchestrator(cfg *config.Config, blobs storage.BlobStore) *orchestrator.Orchestrator {
	return orchestrator.New(
		storage.NewSessionStore(blobs),
		ratelimit.NewLimiter(blobs),
		completion.NewClient(cfg.API.CompletionURL),
		upload.NewClient(cfg.API.UploadURL),
	)
}
