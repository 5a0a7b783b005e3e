// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import "encoding/json"

// =============================================================================
// FRAGMENT PARSING
// =============================================================================

// fragment mirrors the union of response shapes the endpoint emits.
// Content fields stay raw because delta.content is a string in the common
// case but an array of typed parts for some providers.
type fragment struct {
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// contentPart is one element of an array-shaped content field.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// extractText pulls reply text out of one JSON fragment. Shapes are
// tried in priority order: string delta.content, string message.content,
// array delta.content (concatenating the .text of each element). A
// malformed or unrecognized fragment yields ok=false and contributes
// nothing; it must never kill the stream.
func extractText(data []byte) (string, bool) {
	var frag fragment
	if err := json.Unmarshal(data, &frag); err != nil {
		return "", false
	}
	if len(frag.Choices) == 0 {
		return "", false
	}
	choice := frag.Choices[0]

	if s, ok := asString(choice.Delta.Content); ok {
		return s, true
	}
	if s, ok := asString(choice.Message.Content); ok {
		return s, true
	}
	if s, ok := asPartArray(choice.Delta.Content); ok {
		return s, true
	}
	return "", false
}

// asString decodes raw as a JSON string.
func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// asPartArray decodes raw as an array of content parts and concatenates
// their text fields.
func asPartArray(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", false
	}
	out := ""
	for _, p := range parts {
		out += p.Text
	}
	return out, true
}
