// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	keyMap KeyMap

	width  int
	height int

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	// Markdown renderer, rebuilt on resize for the new wrap width.
	renderer *glamour.TermRenderer

	waiting   bool
	phraseIdx int
	usageUsed int

	// Attachment staged by /attach, consumed by the next send.
	pendingAttachment *model.Attachment

	// Transient one-line notice above the input.
	notice string

	palette paletteState
}

// New creates the chat surface model. The orchestrator must already be
// bootstrapped.
func New(cfg *config.Config, orch *orchestrator.Orchestrator) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := Model{
		theme:     theme,
		cfg:       cfg,
		orch:      orch,
		keyMap:    DefaultKeyMap(),
		viewport:  vp,
		input:     ti,
		spin:      sp,
		usageUsed: orch.UsageCount(),
	}
	m.rebuildRenderer(80)
	m.refreshTranscript()
	return m
}

// rebuildRenderer recreates the glamour renderer for a wrap width.
func (m *Model) rebuildRenderer(width int) {
	if !m.cfg.UI.Markdown {
		m.renderer = nil
		return
	}
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the event listener and the periodic tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		listenEvents(m.orch.Events()),
		usageTick(),
	)
}
