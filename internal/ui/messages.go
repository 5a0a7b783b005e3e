// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Bubble Tea message types for the chat surface.

package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
)

// ConfigChangedMsg delivers a freshly reloaded configuration. The
// watcher goroutine sends it into the program so the swap happens on
// the update loop; no other goroutine ever touches the model's config.
type ConfigChangedMsg struct {
	Config *config.Config
}

// orchEventMsg wraps one orchestrator event. The update loop re-reads
// orchestrator state on every event rather than carrying payloads.
type orchEventMsg struct {
	event orchestrator.Event
}

// phraseTickMsg advances the loading phrase while a reply is pending.
type phraseTickMsg struct{}

// usageTickMsg refreshes the usage counter so expired ledger entries
// fall off without user action.
type usageTickMsg struct{}

// listenEvents waits for the next orchestrator event.
func listenEvents(events <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return orchEventMsg{event: ev}
	}
}

// phraseTick schedules the next loading-phrase rotation.
func phraseTick() tea.Cmd {
	return tea.Tick(phraseInterval, func(time.Time) tea.Msg {
		return phraseTickMsg{}
	})
}

// usageTick schedules the next usage-counter refresh.
func usageTick() tea.Cmd {
	return tea.Tick(usageRefreshInterval, func(time.Time) tea.Msg {
		return usageTickMsg{}
	})
}
