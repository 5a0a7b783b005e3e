// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citations

import "strings"

// Block delimiters emitted by the assistant.
const (
	StartMarker = "[[SOURCES_START]]"
	EndMarker   = "[[SOURCES_END]]"
)

// Reply is a model reply split into display text and its cited sources.
type Reply struct {
	// Display is the reply text with the source block removed.
	Display string

	// Sources holds one entry per non-empty line of the block, in order,
	// with any leading "N. " numbering stripped. Empty when the reply
	// carried no block.
	Sources []string
}

// Extract splits raw reply text into display text and sources. Text
// without both markers is returned unchanged with no sources.
func Extract(raw string) Reply {
	start := strings.Index(raw, StartMarker)
	if start < 0 {
		return Reply{Display: raw}
	}
	end := strings.Index(raw[start+len(StartMarker):], EndMarker)
	if end < 0 {
		return Reply{Display: raw}
	}
	end += start + len(StartMarker)

	block := raw[start+len(StartMarker) : end]
	display := raw[:start] + raw[end+len(EndMarker):]

	return Reply{
		Display: strings.TrimSpace(display),
		Sources: parseBlock(block),
	}
}

// parseBlock turns the inner block text into one source per non-empty
// line.
func parseBlock(block string) []string {
	var sources []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sources = append(sources, stripNumbering(line))
	}
	return sources
}

// stripNumbering removes a leading "N. " ordinal, as in "3. Title".
// Lines without the pattern are returned unchanged.
func stripNumbering(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return line
	}
	rest := strings.TrimLeft(line[i+1:], " ")
	if rest == "" {
		return line
	}
	return rest
}
