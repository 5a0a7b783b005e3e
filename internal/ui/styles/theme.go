// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the chat view. It detects the
// terminal's color capability and adjusts accordingly; a configured
// preference of "dark" or "light" overrides detection.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	Header    lipgloss.Style
	StatusBar lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel   lipgloss.Style
	ModelLabel  lipgloss.Style
	ErrorText   lipgloss.Style
	Timestamp   lipgloss.Style
	SourceIndex lipgloss.Style
	SourceText  lipgloss.Style
	Attachment  lipgloss.Style

	// ==========================================================================
	// INPUT AND LOADING
	// ==========================================================================

	InputPrompt   lipgloss.Style
	Spinner       lipgloss.Style
	LoadingPhrase lipgloss.Style
	StarterPrompt lipgloss.Style

	// ==========================================================================
	// USAGE COUNTER
	// ==========================================================================

	UsageOK   lipgloss.Style
	UsageNear lipgloss.Style
	UsageOut  lipgloss.Style

	// ==========================================================================
	// SESSION PALETTE
	// ==========================================================================

	PaletteBox      lipgloss.Style
	PaletteTitle    lipgloss.Style
	PaletteItem     lipgloss.Style
	PaletteSelected lipgloss.Style
	PaletteHint     lipgloss.Style
	ConfirmText     lipgloss.Style
}

// NewTheme creates a theme for the given preference ("auto", "dark",
// "light").
func NewTheme(pref string) *Theme {
	colorProfile := termenv.ColorProfile()

	isDark := termenv.HasDarkBackground()
	switch pref {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.ModelLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SourceIndex = lipgloss.NewStyle().
		Foreground(Cyan)

	t.SourceText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Attachment = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.LoadingPhrase = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StarterPrompt = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.UsageOK = lipgloss.NewStyle().Foreground(Emerald)
	t.UsageNear = lipgloss.NewStyle().Foreground(Amber)
	t.UsageOut = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.PaletteBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.PaletteTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.PaletteItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.PaletteSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	t.PaletteHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ConfirmText = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
}
