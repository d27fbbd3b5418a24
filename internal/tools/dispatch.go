// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
)

// =============================================================================
// DISPATCH
// =============================================================================

// FailureJSON is the fixed payload returned to the model when a tool call
// cannot be completed, for any reason. The model sees the same opaque
// failure whether the tool was unknown, errored, or produced an
// unserializable result.
const FailureJSON = `{"error":"tool call failed"}`

// Response is the outcome of dispatching one tool call. JSON always holds
// a valid JSON document: the serialized result on success, FailureJSON
// otherwise.
type Response struct {
	Name string
	JSON string
	OK   bool
}

// Dispatch resolves and executes a single tool call against the registry.
// It never returns an error: every failure mode collapses into the fixed
// failure payload so a misbehaving tool can degrade the answer but never
// abort the query.
func Dispatch(r *Registry, call ollama.ToolCall) Response {
	name := call.Function.Name
	resp := Response{Name: name, JSON: FailureJSON}

	def := r.Lookup(name)
	if def == nil || def.Callback == nil {
		return resp
	}

	result, err := def.Callback(call.Function.Arguments)
	if err != nil || result == nil {
		return resp
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return resp
	}

	resp.JSON = string(payload)
	resp.OK = true
	return resp
}
