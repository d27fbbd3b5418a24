// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jacksonzamorano/ollamakit/internal/config"
	"github.com/jacksonzamorano/ollamakit/internal/session"
	"github.com/jacksonzamorano/ollamakit/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. All conversation
// state lives in the session; the view holds only presentation state and
// re-reads session snapshots when notified of changes.
type Model struct {
	session *session.Session
	keys    KeyMap
	theme   *styles.Theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	querying     bool
	showThinking bool
	err          error
}

// New creates the chat view for a session.
func New(sess *session.Session, cfg *config.Config) Model {
	theme := styles.New()

	ti := textinput.New()
	ti.Placeholder = "Ask anything..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Purple)),
	)

	return Model{
		session:      sess,
		keys:         DefaultKeyMap(),
		theme:        theme,
		input:        ti,
		spin:         sp,
		showThinking: cfg.UI.ShowThinking,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}
