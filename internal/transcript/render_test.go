// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"
	"testing"
)

func TestRendererNilSafe(t *testing.T) {
	var r *Renderer
	if got := r.Render("plain"); got != "plain" {
		t.Errorf("Render = %q, want passthrough on nil renderer", got)
	}
}

func TestRendererRawFallback(t *testing.T) {
	r := &Renderer{}
	if got := r.Render("# heading"); got != "# heading" {
		t.Errorf("Render = %q, want raw content without a term renderer", got)
	}
}

func TestRendererOutputContainsText(t *testing.T) {
	r := NewRenderer(80)
	out := r.Render("hello **world**")
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Errorf("rendered output %q missing source text", out)
	}
}

func TestRendererTrimsPadding(t *testing.T) {
	r := NewRenderer(80)
	out := r.Render("one line")
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("rendered output not trimmed: %q", out)
	}
}
