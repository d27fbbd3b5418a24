// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the UI-facing record of a conversation.
package transcript

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered, append-mostly sequence of events for one
// session. It is mutated only by the session engine; presentation code
// reads snapshots via Events.
type Transcript struct {
	events   []*Event
	renderer *Renderer
}

// New creates an empty transcript. A nil renderer disables styling:
// ContentStyled then always equals Content.
func New(renderer *Renderer) *Transcript {
	return &Transcript{renderer: renderer}
}

// Append adds an event to the end of the transcript.
func (t *Transcript) Append(e *Event) {
	t.events = append(t.events, e)
}

// Last returns the most recent event, or nil if the transcript is empty.
func (t *Transcript) Last() *Event {
	if len(t.events) == 0 {
		return nil
	}
	return t.events[len(t.events)-1]
}

// Len returns the number of events.
func (t *Transcript) Len() int {
	return len(t.events)
}

// Events returns a snapshot of the transcript. Each event is copied so
// the caller's view is immune to later accumulation; the ToolRequest and
// ToolResponse records are shared because they never change after
// creation.
func (t *Transcript) Events() []*Event {
	out := make([]*Event, len(t.events))
	for i, e := range t.events {
		cp := *e
		out[i] = &cp
	}
	return out
}

// MarkLastFinal closes the most recent event. No-op on an empty transcript.
func (t *Transcript) MarkLastFinal() {
	if e := t.Last(); e != nil {
		e.Final = true
	}
}

// AppendContent folds a content delta into the last event and recomputes
// its styled rendering. The caller is responsible for ensuring the tail is
// open for model accumulation.
func (t *Transcript) AppendContent(delta string) {
	e := t.Last()
	if e == nil {
		return
	}
	e.Content += delta
	e.ContentStyled = t.render(e.Content)
}

// AppendThinking folds a thinking delta into the last event.
func (t *Transcript) AppendThinking(delta string) {
	if e := t.Last(); e != nil {
		e.Thinking += delta
	}
}

// PruneTrailingEmpty removes a trailing model placeholder that never
// received content, thinking, or a tool interaction. Returns true if an
// event was removed. Called at stream completion; never touches events
// earlier in the transcript.
func (t *Transcript) PruneTrailingEmpty() bool {
	e := t.Last()
	if e == nil || e.Role != RoleModel || !e.IsEmpty() {
		return false
	}
	t.events = t.events[:len(t.events)-1]
	return true
}

func (t *Transcript) render(content string) string {
	if t.renderer == nil {
		return content
	}
	return t.renderer.Render(content)
}
