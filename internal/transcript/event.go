// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript holds the UI-facing record of a conversation.
package transcript

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the speaker of a transcript event.
type Role string

const (
	RoleModel Role = "model"
	RoleUser  Role = "user"
	RoleTool  Role = "tool"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleModel:
		return "Assistant"
	case RoleUser:
		return "You"
	case RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}

// =============================================================================
// EVENT TYPE
// =============================================================================

// ToolRequest records a tool invocation requested by the model.
// Arguments holds the argument object as JSON text.
type ToolRequest struct {
	Name      string
	Arguments string
}

// ToolResponse records the outcome of a dispatched tool call.
// Response holds the result (or failure payload) as JSON text.
type ToolResponse struct {
	Name     string
	Response string
}

// Event is one visible conversational turn.
//
// Thinking and Content are accumulators: streamed deltas append to them
// while the event is open. Once Final is set no further accumulation may
// target the event; a new one must be created instead.
type Event struct {
	ID        string
	Role      Role
	Model     string
	Timestamp time.Time

	Thinking string
	Content  string

	// ContentStyled is the terminal rendering of Content, recomputed on
	// every content change. When rendering fails it equals Content.
	ContentStyled string

	ToolRequest  *ToolRequest
	ToolResponse *ToolResponse

	Final bool
}

// NewEvent creates an open event for the given speaker.
func NewEvent(role Role, model string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Role:      role,
		Model:     model,
		Timestamp: time.Now(),
	}
}

// NewUserEvent creates a finalized event holding user input.
// User text is displayed verbatim, so ContentStyled is the raw content.
func NewUserEvent(content string) *Event {
	e := NewEvent(RoleUser, "")
	e.Content = content
	e.ContentStyled = content
	e.Final = true
	return e
}

// NewToolRequestEvent creates a finalized event recording that the model
// asked for a tool invocation.
func NewToolRequestEvent(model, name, argumentsJSON string) *Event {
	e := NewEvent(RoleModel, model)
	e.ToolRequest = &ToolRequest{Name: name, Arguments: argumentsJSON}
	e.Final = true
	return e
}

// NewToolResponseEvent creates a finalized event recording a tool result.
func NewToolResponseEvent(name, responseJSON string) *Event {
	e := NewEvent(RoleTool, "")
	e.ToolResponse = &ToolResponse{Name: name, Response: responseJSON}
	e.Final = true
	return e
}

// IsEmpty returns true if nothing was ever folded into the event.
func (e *Event) IsEmpty() bool {
	return e.Content == "" && e.Thinking == "" && e.ToolRequest == nil && e.ToolResponse == nil
}

// Open reports whether the event can still accept accumulation for the
// given role.
func (e *Event) Open(role Role) bool {
	return !e.Final && e.Role == role
}
