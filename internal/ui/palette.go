// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// palette.go - Session palette: list, switch, create, delete.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// paletteState tracks the open session palette.
type paletteState struct {
	open     bool
	index    int
	sessions []*model.ChatSession

	// confirmDelete holds the ID awaiting delete confirmation, empty
	// when none.
	confirmDelete string
}

// openPalette snapshots the session list and opens the palette on the
// active session.
func (m *Model) openPalette() {
	m.palette.open = true
	m.palette.confirmDelete = ""
	m.palette.sessions = m.orch.Sessions()
	m.palette.index = 0
	activeID := m.orch.ActiveID()
	for i, s := range m.palette.sessions {
		if s.ID == activeID {
			m.palette.index = i
			break
		}
	}
}

// closePalette closes the palette and refreshes the transcript for
// whatever session is now active.
func (m *Model) closePalette() {
	m.palette.open = false
	m.palette.confirmDelete = ""
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

// updatePalette handles key presses while the palette is open.
func (m Model) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending delete confirmation only accepts y / anything-else.
	if m.palette.confirmDelete != "" {
		if msg.String() == "y" || msg.String() == "Y" {
			if err := m.orch.DeleteSession(m.palette.confirmDelete); err != nil {
				m.notice = err.Error()
			}
			m.palette.sessions = m.orch.Sessions()
			if m.palette.index >= len(m.palette.sessions) {
				m.palette.index = len(m.palette.sessions) - 1
			}
		}
		m.palette.confirmDelete = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.PaletteClose):
		m.closePalette()
		return m, nil

	case key.Matches(msg, m.keyMap.PaletteUp):
		if m.palette.index > 0 {
			m.palette.index--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PaletteDown):
		if m.palette.index < len(m.palette.sessions)-1 {
			m.palette.index++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PaletteSelect):
		if m.palette.index < len(m.palette.sessions) {
			if err := m.orch.SetActive(m.palette.sessions[m.palette.index].ID); err != nil {
				m.notice = err.Error()
			}
		}
		m.closePalette()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.orch.NewSession()
		m.closePalette()
		return m, nil

	case key.Matches(msg, m.keyMap.PaletteDelete):
		if m.palette.index < len(m.palette.sessions) {
			m.palette.confirmDelete = m.palette.sessions[m.palette.index].ID
		}
		return m, nil
	}

	return m, nil
}

// viewPalette renders the palette overlay.
func (m Model) viewPalette() string {
	var b strings.Builder
	b.WriteString(m.theme.PaletteTitle.Render("Sessions") + "\n\n")

	activeID := m.orch.ActiveID()
	for i, s := range m.palette.sessions {
		marker := "  "
		if s.ID == activeID {
			marker = "* "
		}
		line := fmt.Sprintf("%s%s  %s",
			marker,
			util.TruncateRunes(s.Title, 36),
			m.theme.PaletteHint.Render(fmt.Sprintf("%d msgs", s.MessageCount())))

		if i == m.palette.index {
			line = m.theme.PaletteSelected.Render(line)
		} else {
			line = m.theme.PaletteItem.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.palette.confirmDelete != "" {
		b.WriteString(m.theme.ConfirmText.Render("delete this session? y/n") + "\n")
	} else {
		b.WriteString(m.theme.PaletteHint.Render("Enter switch | C-n new | d delete | Esc close") + "\n")
	}

	return m.centered(m.theme.PaletteBox.Render(b.String()))
}
