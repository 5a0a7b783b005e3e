// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scribe-tui/internal/citations"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// chromeHeight is the vertical space taken by header, input line, and
// status bar around the viewport.
const chromeHeight = 4

// View renders the chat surface.
func (m Model) View() string {
	if m.palette.open {
		return m.viewPalette()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.viewInputLine())
	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

// viewHeader renders the title bar with the active session name.
func (m Model) viewHeader() string {
	title := "scribe"
	if active := m.orch.Active(); active != nil {
		title = "scribe  |  " + util.TruncateRunes(active.Title, 40)
	}
	return m.theme.Header.Width(m.width).Render(title)
}

// viewInputLine renders the input, or the loading indicator while a
// reply is pending.
func (m Model) viewInputLine() string {
	if m.waiting {
		return fmt.Sprintf("%s %s",
			m.spin.View(),
			m.theme.LoadingPhrase.Render(phraseAt(m.phraseIdx)))
	}
	return m.input.View()
}

// viewStatusBar renders usage, pending attachment, notice, and key
// hints.
func (m Model) viewStatusBar() string {
	parts := []string{m.usageView()}

	if m.pendingAttachment != nil {
		parts = append(parts, m.theme.Attachment.Render("[img: "+m.pendingAttachment.Name+"]"))
	}
	if m.notice != "" {
		parts = append(parts, m.theme.ErrorText.Render(m.notice))
	}
	parts = append(parts, m.theme.StatusBar.Render("C-n new | C-p sessions | Esc cancel | C-c quit"))

	return strings.Join(parts, "  ")
}

// usageView renders the n/20 counter, colored by how close to the cap
// the window is.
func (m Model) usageView() string {
	text := fmt.Sprintf("%d/%d", m.usageUsed, ratelimit.MaxMessages)
	switch {
	case m.usageUsed >= ratelimit.MaxMessages:
		return m.theme.UsageOut.Render(text)
	case m.usageUsed >= ratelimit.MaxMessages-5:
		return m.theme.UsageNear.Render(text)
	default:
		return m.theme.UsageOK.Render(text)
	}
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the active session into the viewport.
func (m *Model) refreshTranscript() {
	active := m.orch.Active()
	if active == nil {
		m.viewport.SetContent("")
		return
	}

	if active.IsEmpty() {
		m.viewport.SetContent(m.renderStarters())
		return
	}

	var b strings.Builder
	for i := range active.Messages {
		b.WriteString(m.renderMessage(&active.Messages[i]))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

// renderStarters shows suggested prompts for an empty session.
func (m Model) renderStarters() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.theme.StarterPrompt.Render("Start a conversation, or try:"))
	b.WriteString("\n\n")
	for _, p := range starterPrompts {
		b.WriteString("  " + m.theme.StarterPrompt.Render("- "+p) + "\n")
	}
	return b.String()
}

// renderMessage renders one transcript entry.
func (m Model) renderMessage(msg *model.Message) string {
	var b strings.Builder

	label := m.theme.UserLabel
	if msg.Role == model.RoleModel {
		label = m.theme.ModelLabel
	}
	b.WriteString(fmt.Sprintf("%s %s\n",
		label.Render(msg.Role.DisplayName()),
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))))

	if msg.HasAttachment() {
		b.WriteString(m.theme.Attachment.Render("[image: "+msg.Attachment.Name+"]") + "\n")
	}

	if msg.IsError {
		b.WriteString(m.theme.ErrorText.Render(msg.Text) + "\n")
		return b.String()
	}

	if msg.Role == model.RoleUser {
		b.WriteString(msg.Text + "\n")
		return b.String()
	}

	extracted := citations.Extract(msg.Text)
	b.WriteString(m.renderBody(extracted.Display))
	b.WriteString(m.renderSources(extracted.Sources))
	return b.String()
}

// renderBody renders reply text, through glamour when available.
func (m Model) renderBody(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return rendered
}

// renderSources renders the numbered source list under a reply.
func (m Model) renderSources(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.SourceText.Render("Sources") + "\n")
	for i, src := range sources {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.SourceIndex.Render(fmt.Sprintf("%d.", i+1)),
			m.theme.SourceText.Render(src)))
	}
	return b.String()
}

// centered centers a block inside the current window.
func (m Model) centered(block string) string {
	if m.width == 0 || m.height == 0 {
		return block
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}
