// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
	"github.com/jacksonzamorano/ollamakit/internal/session"
	"github.com/jacksonzamorano/ollamakit/internal/transcript"
	"github.com/jacksonzamorano/ollamakit/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

// renderTranscript formats the session's events for the viewport.
func (m Model) renderTranscript() string {
	events := m.session.Events()
	if len(events) == 0 {
		return m.theme.HelpText.Render("Type a message to start the conversation.")
	}

	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n\n")
		}
		m.renderEvent(&b, e)
	}
	return b.String()
}

func (m Model) renderEvent(b *strings.Builder, e *transcript.Event) {
	switch {
	case e.ToolRequest != nil:
		b.WriteString(m.theme.ToolLabel.Render("Tool call: " + e.ToolRequest.Name))
		b.WriteString("\n")
		b.WriteString(m.theme.ToolBody.Render(m.toolPayload(e.ToolRequest.Arguments)))

	case e.ToolResponse != nil:
		b.WriteString(m.theme.ToolLabel.Render("Tool result: " + e.ToolResponse.Name))
		b.WriteString("\n")
		b.WriteString(m.theme.ToolBody.Render(m.toolPayload(e.ToolResponse.Response)))

	default:
		label := m.theme.ModelLabel
		if e.Role == transcript.RoleUser {
			label = m.theme.UserLabel
		}
		b.WriteString(label.Render(e.Role.DisplayName()))
		if m.showThinking && e.Thinking != "" {
			b.WriteString("\n")
			b.WriteString(m.theme.Thinking.Render(e.Thinking))
		}
		if e.ContentStyled != "" {
			b.WriteString("\n")
			b.WriteString(e.ContentStyled)
		}
	}
}

// toolPayload reduces a JSON payload to a one-line preview bounded by
// display columns rather than runes, so CJK-heavy payloads do not
// overflow the line.
func (m Model) toolPayload(payload string) string {
	width := m.width - 4
	if width <= 0 || width > 200 {
		width = 200
	}
	return util.TruncateWidth(util.FirstLine(payload), width)
}

func (m Model) statusLine() string {
	if m.err != nil {
		msg := m.err.Error()
		if ollama.IsModelNotFound(m.err) {
			msg = "model " + m.session.Model() + " not found (run 'ollamakit models' to list installed models)"
		}
		return m.theme.ErrorText.Render(util.TruncateWidth("Error: "+msg, m.width))
	}
	status := m.session.Status()
	if status == session.StatusIdle {
		line := "Model: " + m.session.Model()
		if tps := m.session.TokensPerSecond(); tps > 0 {
			line += fmt.Sprintf(" · %.1f tok/s", tps)
		}
		return m.theme.StatusLine.Render(line)
	}
	return m.spin.View() + m.theme.StatusLine.Render(status.String()+"...")
}

func (m Model) helpLine() string {
	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.HelpText.Render(strings.Join(parts, "  ·  "))
}
