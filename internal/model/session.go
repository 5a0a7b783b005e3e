// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/scribe-tui/internal/util"
)

// DefaultTitle is the placeholder title of a session that has no
// messages yet.
const DefaultTitle = "New Chat"

// titleMaxRunes is the rune budget for titles derived from message text.
const titleMaxRunes = 30

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation: an append-only message list plus
// identity and title metadata.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatSession creates an empty session with a generated ID and the
// placeholder title.
func NewChatSession() *ChatSession {
	return &ChatSession{
		ID:        generateSessionID(),
		Title:     DefaultTitle,
		Messages:  make([]Message, 0),
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the session. The first user message also
// fixes the session title; the title never changes afterwards,
// regardless of edits or later messages. Synthetic error messages never
// title a session, so a quota denial landing before the first real
// message leaves the placeholder in place.
func (s *ChatSession) Append(msg Message) {
	if msg.Role == RoleUser && !msg.IsError && !s.hasUserMessage() {
		s.Title = deriveTitle(msg)
	}
	s.Messages = append(s.Messages, msg)
}

// hasUserMessage reports whether the session already holds a real user
// message, i.e. whether the title has been derived.
func (s *ChatSession) hasUserMessage() bool {
	for i := range s.Messages {
		if s.Messages[i].Role == RoleUser && !s.Messages[i].IsError {
			return true
		}
	}
	return false
}

// Last returns the most recent message, or the zero Message and false
// when the session is empty.
func (s *ChatSession) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// IsEmpty reports whether the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// Clone creates a deep copy of the session. Callers receive snapshots so
// concurrent readers never observe a partially appended message list.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		Messages:  make([]Message, len(s.Messages)),
	}
	copy(clone.Messages, s.Messages)
	return clone
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// deriveTitle computes a session title from its first message: the text
// truncated to 30 runes with an ellipsis, or the attachment name when
// the message carries no usable text.
func deriveTitle(msg Message) string {
	if strings.TrimSpace(msg.Text) != "" {
		if util.RuneLen(msg.Text) <= titleMaxRunes {
			return msg.Text
		}
		return util.TruncateRunesNoEllipsis(msg.Text, titleMaxRunes) + "..."
	}
	if msg.Attachment != nil {
		return "file: " + msg.Attachment.Name
	}
	return DefaultTitle
}

// generateSessionID creates a unique session ID. The creation timestamp
// is embedded so IDs sort chronologically; the random suffix keeps two
// sessions created in the same millisecond distinct.
func generateSessionID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "sess_" + util.Int64ToString(time.Now().UnixMilli()) + "_" + hex.EncodeToString(bytes)
}
