// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
// A message is immutable once appended to a session.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Attachment is owned by this message and never shared.
	Attachment *Attachment `json:"attachment,omitempty"`

	// IsError marks synthetic messages the client fabricates for failed
	// sends. Error messages are excluded from request history.
	IsError bool `json:"is_error,omitempty"`
}

// NewUserMessage creates a user message, optionally carrying an attachment.
func NewUserMessage(text string, att *Attachment) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleUser,
		Text:       text,
		Attachment: att,
		Timestamp:  time.Now(),
	}
}

// NewModelMessage creates a model reply message.
func NewModelMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates a synthetic model-role message carrying
// user-visible error text.
func NewErrorMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Text:      text,
		Timestamp: time.Now(),
		IsError:   true,
	}
}

// HasAttachment reports whether the message carries an attachment.
func (m Message) HasAttachment() bool {
	return m.Attachment != nil
}
