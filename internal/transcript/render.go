// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Renderer converts accumulated markdown content into terminal-styled text.
// Rendering is best-effort: any failure falls back to the raw content so a
// partial or malformed markdown fragment never breaks the transcript.
type Renderer struct {
	tr *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer wrapping at the given width.
// A wrap of 0 or less disables word wrapping. If glamour cannot be
// initialized the renderer still works in raw passthrough mode.
func NewRenderer(wrap int) *Renderer {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
		glamour.WithPreservedNewLines(),
	}
	if wrap > 0 {
		opts = append(opts, glamour.WithWordWrap(wrap))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return &Renderer{}
	}
	return &Renderer{tr: tr}
}

// Render returns the styled form of content, or content itself when
// styling is unavailable or fails.
func (r *Renderer) Render(content string) string {
	if r == nil || r.tr == nil {
		return content
	}
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	// glamour pads output with blank lines; trim them so incremental
	// re-renders do not grow the viewport.
	return strings.Trim(out, "\n")
}
