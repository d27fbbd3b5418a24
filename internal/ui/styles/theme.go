// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the ollamakit TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLORS
// =============================================================================

// All colors use AdaptiveColor for automatic light/dark detection.
var (
	// Cyan - user messages and prompts
	Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

	// Purple - model messages
	Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

	// Amber - tool requests and responses
	Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// Rose - errors
	Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

	// TextMuted - secondary text, thinking, status line
	TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	// Border - input container borders
	Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the chat view.
type Theme struct {
	ColorProfile termenv.Profile

	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	ToolLabel  lipgloss.Style

	Thinking lipgloss.Style
	ToolBody lipgloss.Style

	StatusLine lipgloss.Style
	ErrorText  lipgloss.Style
	HelpText   lipgloss.Style

	InputContainer lipgloss.Style
}

// New builds the theme for the current terminal.
func New() *Theme {
	return &Theme{
		ColorProfile: termenv.ColorProfile(),

		UserLabel:  lipgloss.NewStyle().Foreground(Cyan).Bold(true),
		ModelLabel: lipgloss.NewStyle().Foreground(Purple).Bold(true),
		ToolLabel:  lipgloss.NewStyle().Foreground(Amber).Bold(true),

		Thinking: lipgloss.NewStyle().Foreground(TextMuted).Italic(true),
		ToolBody: lipgloss.NewStyle().Foreground(TextMuted),

		StatusLine: lipgloss.NewStyle().Foreground(TextMuted),
		ErrorText:  lipgloss.NewStyle().Foreground(Rose),
		HelpText:   lipgloss.NewStyle().Foreground(TextMuted),

		InputContainer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
	}
}
