// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator coordinates sessions, the rate limiter, the
// upload relay, and the completion client.
//
// # Send lifecycle
//
// SendMessage validates (active session present, no request in flight),
// consults the rate limiter, appends and persists the user message,
// records usage, then dispatches a background goroutine that uploads the
// attachment (if any), calls the completion endpoint, and appends the
// reply. A successful reply is held until at least MinReplyDelay has
// passed since dispatch; error and cancel paths return immediately.
//
// At most one request is in flight system-wide. Cancellation comes from
// switching the active session, deleting the pending request's session,
// or Shutdown; a cancelled request appends nothing and is swallowed.
//
// State changes are announced on the Events channel so the UI can
// refresh without polling. Only this package fabricates user-visible
// error messages; transport detail goes to the log.
package orchestrator
