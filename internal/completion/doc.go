// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion implements the client for the hosted completion
// endpoint.
//
// The endpoint accepts POST {messages: [{role, content}, ...]} and
// answers either with a single JSON completion object or with an SSE
// stream where each "data:" line carries one fragment. StreamReader
// handles the stream shape: it buffers bytes on newline boundaries,
// tolerates fragments split across arbitrary read boundaries, skips
// malformed lines, and aggregates fragment text in arrival order.
//
// Credentials are injected server-side by the endpoint; this client
// never carries API keys.
package completion
