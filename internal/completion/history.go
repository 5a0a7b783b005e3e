// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import "github.com/jeranaias/scribe-tui/internal/model"

// HistoryLimit caps how many prior turns accompany a send. The current
// user message rides on top of this.
const HistoryLimit = 10

// ChatMessage is one wire-format message. Content is a string for plain
// text or a []ContentPart when the message carries an image.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal content array.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference inside a content part.
type ImageURL struct {
	URL string `json:"url"`
}

// BuildMessages converts session messages into the wire format for a
// send. The last message is expected to be the user message being sent;
// at most HistoryLimit prior turns precede it. Error-flagged messages
// are excluded entirely, and no system message is added (the endpoint
// owns the persona).
func BuildMessages(messages []model.Message) []ChatMessage {
	clean := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.IsError {
			continue
		}
		clean = append(clean, m)
	}
	if len(clean) > HistoryLimit+1 {
		clean = clean[len(clean)-(HistoryLimit+1):]
	}

	out := make([]ChatMessage, 0, len(clean))
	for _, m := range clean {
		out = append(out, toWire(m))
	}
	return out
}

// toWire converts one message. An attached image becomes a content array
// pairing the text with an image_url part; text-only messages stay plain
// strings.
func toWire(m model.Message) ChatMessage {
	role := "user"
	if m.Role == model.RoleModel {
		role = "assistant"
	}

	if m.Attachment == nil {
		return ChatMessage{Role: role, Content: m.Text}
	}

	parts := []ContentPart{}
	if m.Text != "" {
		parts = append(parts, ContentPart{Type: "text", Text: m.Text})
	}
	parts = append(parts, ContentPart{
		Type:     "image_url",
		ImageURL: &ImageURL{URL: m.Attachment.Data},
	})
	return ChatMessage{Role: role, Content: parts}
}
