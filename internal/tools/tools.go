// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the registry and dispatcher for model-invoked
// tool calls.
package tools

import (
	"encoding/json"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
)

// =============================================================================
// DEFINITIONS
// =============================================================================

// Callback is the host-side implementation of a tool. It receives the raw
// argument object the model produced and returns a JSON-serializable
// result. Any error, or a nil result, is reported to the model as a
// generic failure.
type Callback func(args json.RawMessage) (any, error)

// Definition binds a tool's advertised schema to its implementation.
type Definition struct {
	Name        string
	Description string
	Parameters  ollama.ToolParameters
	Callback    Callback
}

// Schema returns the wire form of the definition, as advertised in chat
// requests.
func (d *Definition) Schema() ollama.Tool {
	return ollama.Tool{
		Type: "function",
		Function: ollama.ToolSchema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		},
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the tools available to a session, in registration order.
// Lookup is first-match by name, so registering a duplicate name shadows
// nothing: the earlier registration wins.
type Registry struct {
	defs []*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a definition to the registry.
func (r *Registry) Register(def *Definition) {
	r.defs = append(r.defs, def)
}

// Lookup returns the first definition registered under name, or nil.
func (r *Registry) Lookup(name string) *Definition {
	for _, d := range r.defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Schemas returns the wire schemas for every registered tool, in
// registration order. Returns nil when the registry is empty so chat
// requests omit the tools field entirely.
func (r *Registry) Schemas() []ollama.Tool {
	if len(r.defs) == 0 {
		return nil
	}
	out := make([]ollama.Tool, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d.Schema())
	}
	return out
}
