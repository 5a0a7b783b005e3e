// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import "errors"

// Error variables for send validation failures. These are returned to
// the caller; none of them reach the chat transcript except the rate
// limit, which also appends a synthetic message.
var (
	// ErrNoActiveSession indicates there is no session to send into.
	ErrNoActiveSession = errors.New("no active session")

	// ErrRequestInFlight indicates a request is already pending.
	ErrRequestInFlight = errors.New("a request is already in flight")

	// ErrRateLimited indicates the send was denied by the quota.
	ErrRateLimited = errors.New("message quota exceeded")

	// ErrEmptyMessage indicates a send with neither text nor attachment.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSessionNotFound indicates an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")
)
