// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

// EventKind identifies what changed.
type EventKind int

const (
	// EventSessionsChanged fires when the session list or any session's
	// messages changed.
	EventSessionsChanged EventKind = iota

	// EventRequestStarted fires when a send dispatched a request.
	EventRequestStarted

	// EventRequestFinished fires when the pending request completed,
	// failed, or was cancelled.
	EventRequestFinished
)

// Event announces a state change. SessionID names the session the event
// concerns, where applicable.
type Event struct {
	Kind      EventKind
	SessionID string
}

// emit delivers an event without blocking. A slow or absent consumer
// drops events rather than stalling the send path; consumers treat any
// event as "re-read state", so drops are harmless.
func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
	}
}

// Events returns the event channel consumed by the UI layer.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}
