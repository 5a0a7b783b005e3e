// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/storage"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	blobs, err := storage.NewFileStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	t.Cleanup(func() { blobs.Close() })

	orch := orchestrator.New(
		storage.NewSessionStore(blobs),
		ratelimit.NewLimiter(blobs),
		nil, nil,
	)
	t.Cleanup(orch.Shutdown)

	cfg := config.DefaultConfig()
	cfg.UI.Theme = "dark"
	cfg.UI.Markdown = false
	return New(cfg, orch)
}

func TestPhraseCycling(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(loadingPhrases)*2; i++ {
		seen[phraseAt(i)] = true
	}
	if len(seen) != len(loadingPhrases) {
		t.Errorf("cycled %d distinct phrases, want %d", len(seen), len(loadingPhrases))
	}
	if phraseAt(0) != phraseAt(len(loadingPhrases)) {
		t.Error("phrase index does not wrap")
	}
}

func TestUsageViewThresholds(t *testing.T) {
	m := newTestModel(t)

	m.usageUsed = 3
	if !strings.Contains(m.usageView(), "3/20") {
		t.Errorf("usage view = %q", m.usageView())
	}
	m.usageUsed = 20
	if !strings.Contains(m.usageView(), "20/20") {
		t.Errorf("usage view = %q", m.usageView())
	}
}

func TestRenderMessageUserAndError(t *testing.T) {
	m := newTestModel(t)

	user := model.NewUserMessage("hello there", nil)
	out := m.renderMessage(&user)
	if !strings.Contains(out, "hello there") {
		t.Errorf("user message body missing: %q", out)
	}

	errMsg := model.NewErrorMessage("Something went wrong")
	out = m.renderMessage(&errMsg)
	if !strings.Contains(out, "Something went wrong") {
		t.Errorf("error message body missing: %q", out)
	}
}

func TestRenderModelMessageExtractsSources(t *testing.T) {
	m := newTestModel(t)

	reply := model.NewModelMessage(
		"The answer.\n[[SOURCES_START]]\n1. Book One\n2. Book Two\n[[SOURCES_END]]")
	out := m.renderMessage(&reply)

	if strings.Contains(out, "[[SOURCES_START]]") {
		t.Error("marker leaked into rendered output")
	}
	if !strings.Contains(out, "Book One") || !strings.Contains(out, "Book Two") {
		t.Errorf("sources missing: %q", out)
	}
}

func TestStarterPromptsOnEmptySession(t *testing.T) {
	m := newTestModel(t)
	m.refreshTranscript()
	view := m.viewport.View()
	if !strings.Contains(view, starterPrompts[0]) {
		t.Errorf("starter prompts not shown: %q", view)
	}
}

func TestPaletteNavigation(t *testing.T) {
	m := newTestModel(t)

	// Two sessions to move between. NewSession on an empty active
	// session is a no-op, so seed a message first.
	if err := m.orch.SetActive(m.orch.ActiveID()); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	m.openPalette()
	if !m.palette.open {
		t.Fatal("palette did not open")
	}
	if got := len(m.palette.sessions); got != 1 {
		t.Fatalf("palette sessions = %d, want 1", got)
	}

	next, _ := m.updatePalette(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.palette.open {
		t.Error("palette did not close on esc")
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m := newTestModel(t)
	m.openPalette()

	next, _ := m.updatePalette(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = next.(Model)
	if m.palette.confirmDelete == "" {
		t.Fatal("delete did not ask for confirmation")
	}

	// Any key other than y aborts.
	next, _ = m.updatePalette(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if m.palette.confirmDelete != "" {
		t.Error("confirmation not cleared")
	}
	if len(m.orch.Sessions()) != 1 {
		t.Error("session deleted despite abort")
	}
}

func TestConfigReloadAppliedOnUpdateLoop(t *testing.T) {
	m := newTestModel(t) // starts with markdown off, renderer nil
	if m.renderer != nil {
		t.Fatal("renderer present with markdown disabled")
	}

	next := config.DefaultConfig()
	next.UI.Theme = "dark"
	next.UI.Markdown = true
	updated, _ := m.Update(ConfigChangedMsg{Config: next})
	m = updated.(Model)

	if m.cfg != next {
		t.Error("reloaded config not swapped in")
	}
	if m.renderer == nil {
		t.Error("markdown renderer not rebuilt after reload")
	}

	// Turning markdown back off drops the renderer again.
	plain := config.DefaultConfig()
	plain.UI.Markdown = false
	updated, _ = m.Update(ConfigChangedMsg{Config: plain})
	m = updated.(Model)
	if m.renderer != nil {
		t.Error("renderer kept after markdown disabled")
	}
}

func TestLoadAttachmentRejectsNonImage(t *testing.T) {
	if _, err := loadAttachment("testdata-missing.txt"); err == nil {
		t.Error("missing file accepted")
	}
}
