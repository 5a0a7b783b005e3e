// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// maxAttachmentBytes caps a staged attachment before compression.
const maxAttachmentBytes = 10 * 1024 * 1024

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - chromeHeight
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.rebuildRenderer(msg.Width)
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		if m.palette.open {
			return m.updatePalette(msg)
		}
		return m.updateChatKeys(msg)

	case orchEventMsg:
		return m.handleOrchEvent(msg.event)

	case phraseTickMsg:
		if !m.waiting {
			return m, nil
		}
		m.phraseIdx++
		return m, phraseTick()

	case usageTickMsg:
		m.usageUsed = m.orch.UsageCount()
		return m, usageTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ConfigChangedMsg:
		return m.applyConfig(msg.Config)
	}

	return m.updateComponents(msg)
}

// updateChatKeys handles key presses in the normal chat view.
func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		m.orch.CancelPending()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.orch.NewSession()
		m.notice = ""
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keyMap.Palette):
		m.openPalette()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()
	}

	return m.updateComponents(msg)
}

// updateComponents forwards a message to the focused components. Key
// presses go to the input only; scrolling is driven by the explicit
// PageUp/PageDown bindings so typed letters never move the viewport.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyConfig swaps in a reloaded configuration and rebuilds the
// theme-dependent pieces. Endpoints are captured by the clients at
// startup, so only presentation settings change live.
func (m Model) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	m.cfg = cfg
	m.theme = styles.NewTheme(cfg.UI.Theme)
	m.spin.Style = m.theme.Spinner
	m.input.PromptStyle = m.theme.InputPrompt

	width := m.width
	if width == 0 {
		width = 80
	}
	m.rebuildRenderer(width)
	m.refreshTranscript()
	return m, nil
}

// handleOrchEvent re-reads orchestrator state after a change.
func (m Model) handleOrchEvent(ev orchestrator.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenEvents(m.orch.Events())}

	switch ev.Kind {
	case orchestrator.EventRequestStarted:
		m.waiting = true
		m.phraseIdx = 0
		cmds = append(cmds, phraseTick())
	case orchestrator.EventRequestFinished:
		m.waiting = false
		m.usageUsed = m.orch.UsageCount()
	}

	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

// handleSubmit processes the input line: a slash command or a send.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.handleSlashCommand(text)
	}

	att := m.pendingAttachment
	err := m.orch.SendMessage(text, att)
	switch {
	case err == nil:
		m.input.Reset()
		m.pendingAttachment = nil
		m.notice = ""
		m.waiting = true
		m.phraseIdx = 0
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, phraseTick()

	case errors.Is(err, orchestrator.ErrRateLimited):
		// The denial message is already in the transcript.
		m.input.Reset()
		m.usageUsed = m.orch.UsageCount()
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case errors.Is(err, orchestrator.ErrRequestInFlight):
		m.notice = "still waiting on the previous reply"
		return m, nil

	default:
		m.notice = err.Error()
		return m, nil
	}
}

// handleSlashCommand executes an input-line command.
func (m Model) handleSlashCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)

	switch fields[0] {
	case "/new":
		m.orch.NewSession()
		m.input.Reset()
		m.notice = ""
		m.refreshTranscript()
		return m, nil

	case "/attach":
		if len(fields) < 2 {
			m.notice = "usage: /attach <image path>"
			return m, nil
		}
		path := strings.Join(fields[1:], " ")
		att, err := loadAttachment(path)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.pendingAttachment = att
		m.input.Reset()
		m.notice = fmt.Sprintf("attached %s, sent with your next message", att.Name)
		return m, nil

	case "/sessions":
		m.input.Reset()
		m.openPalette()
		return m, nil

	default:
		m.notice = "unknown command: " + fields[0]
		return m, nil
	}
}

// loadAttachment reads an image file into an attachment.
func loadAttachment(path string) (*model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s", path)
	}
	if info.Size() > maxAttachmentBytes {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("not an image: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return model.NewAttachment(filepath.Base(path), mimeType, data), nil
}
