// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jacksonzamorano/ollamakit/internal/session"
	"github.com/jacksonzamorano/ollamakit/internal/util"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.session.Cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Cancel):
			if m.querying {
				m.session.Cancel()
			}
			return m, nil

		case key.Matches(msg, m.keys.Thinking):
			m.showThinking = !m.showThinking
			m.refreshViewport()
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			text := m.input.Value()
			if util.IsBlank(text) || m.querying {
				return m, nil
			}
			text = strings.TrimSpace(text)
			m.input.Reset()
			m.querying = true
			m.err = nil
			return m, tea.Batch(m.startQuery(text), m.spin.Tick)
		}

	case SessionChangedMsg:
		m.refreshViewport()
		return m, nil

	case QueryDoneMsg:
		m.querying = false
		if msg.Err != nil && !session.IsCancelled(msg.Err) {
			m.err = msg.Err
		}
		m.refreshViewport()
		return m, nil

	case ConfigReloadedMsg:
		if !m.querying && msg.Model != "" {
			m.session.SetModel(msg.Model)
		}
		return m, nil

	case spinner.TickMsg:
		if m.querying {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// startQuery runs the session query off the UI goroutine. Incremental
// updates arrive as SessionChangedMsg via the change callback; the
// returned message carries only the final outcome.
func (m Model) startQuery(text string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		return QueryDoneMsg{Err: sess.Query(context.Background(), text)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 3  // bordered input container
	statusHeight := 2 // status line + help line
	vpHeight := height - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 8
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}
