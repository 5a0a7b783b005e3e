// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway implements the local app-shell gateway behind
// `scribe serve`.
//
// The gateway mirrors the caching contract of the hosted app's offline
// worker:
//
//   - App-shell assets (a fixed path list) are served cache-first with a
//     background refresh, so the shell loads instantly and converges to
//     the latest version on the next request.
//   - Every other path is network-first with a cache fallback, so stale
//     content is still served when the upstream is unreachable.
//   - Only GET is accepted; anything else gets 405.
//
// Requests pass through recovery, logging, and per-client throttle
// middleware.
package gateway
