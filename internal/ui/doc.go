// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea chat surface.
//
// The model owns no chat state of its own: every session, message, and
// quota fact lives in the orchestrator, and the view re-reads it on
// each orchestrator event. The package renders the transcript through
// glamour, shows a cycling loading phrase while a reply is pending,
// keeps a usage counter against the 24-hour quota, and provides a
// session palette for listing, switching, creating, and deleting
// sessions.
package ui
