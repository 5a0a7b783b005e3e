// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// phrases.go - Loading phrases shown while a reply is pending.

package ui

import "time"

// phraseInterval is how long each loading phrase stays on screen.
const phraseInterval = 2500 * time.Millisecond

// usageRefreshInterval is how often the usage counter re-reads the
// ledger so entries older than the window fall off.
const usageRefreshInterval = 30 * time.Second

// loadingPhrases rotate under the spinner while a request is in
// flight.
var loadingPhrases = []string{
	"Thinking it through...",
	"Gathering sources...",
	"Consulting the references...",
	"Putting words together...",
	"Checking the details...",
	"Almost there...",
}

// phraseAt returns the phrase for a rotation index, wrapping around.
func phraseAt(i int) string {
	return loadingPhrases[i%len(loadingPhrases)]
}

// starterPrompts are suggestions shown when the active session is
// empty.
var starterPrompts = []string{
	"Summarize a topic for me",
	"Help me draft a message",
	"Explain something step by step",
	"Answer a question with sources",
}
