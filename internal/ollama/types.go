// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"encoding/json"
	"time"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Roles used on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in the conversation history.
//
// For a streamed assistant message segment, either ToolCalls is non-empty
// or Content/Thinking carry text, never both. ToolName is set only on
// messages with role "tool".
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Thinking  string     `json:"thinking,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the invocation target and its arguments.
// Arguments stay as raw JSON: the argument shape is owned by whoever
// registered the tool, not by this package.
type ToolFunction struct {
	Index     int             `json:"index"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolResultMessage creates a tool result message for the named tool.
func NewToolResultMessage(name, content string) Message {
	return Message{Role: RoleTool, ToolName: name, Content: content}
}

// HasToolCalls returns true if the message contains tool calls.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// IsEmpty returns true if the message carries no content, no thinking,
// and no tool calls. Empty assistant messages are invalid request input
// and must never be resent as history.
func (m *Message) IsEmpty() bool {
	return m.Content == "" && m.Thinking == "" && len(m.ToolCalls) == 0
}

// =============================================================================
// TOOL SCHEMA TYPES
// =============================================================================

// Tool is a tool definition as sent in a chat request.
type Tool struct {
	Type     string     `json:"type"` // always "function"
	Function ToolSchema `json:"function"`
}

// ToolSchema defines a tool's callable interface.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

// ToolParameters is the JSON-schema parameter object for a tool.
type ToolParameters struct {
	Type       string                  `json:"type"` // "object"
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty describes a single parameter.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Tools    []Tool    `json:"tools,omitempty"`
	Options  *Options  `json:"options,omitempty"`
}

// Options contains model parameters for inference.
type Options struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	NumCtx      int      `json:"num_ctx,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Seed        int      `json:"seed,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// ChatChunk is one decoded element of the newline-delimited JSON stream
// returned by /api/chat. The final chunk has Done set and carries timing
// and token statistics.
type ChatChunk struct {
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	Message    Message   `json:"message"`
	Done       bool      `json:"done"`
	DoneReason string    `json:"done_reason,omitempty"`

	TotalDuration      int64 `json:"total_duration,omitempty"`      // nanoseconds
	LoadDuration       int64 `json:"load_duration,omitempty"`       // nanoseconds
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`   // tokens in prompt
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`          // tokens generated
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// TokensPerSecond calculates the generation speed from a final chunk.
func (c *ChatChunk) TokensPerSecond() float64 {
	if c.EvalDuration == 0 {
		return 0
	}
	return float64(c.EvalCount) / (float64(c.EvalDuration) / 1e9)
}

// =============================================================================
// MODEL DISCOVERY TYPES
// =============================================================================

// ModelInfo describes a locally available model.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details,omitempty"`
}

// ModelDetails contains detailed information about a model.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ShowModelRequest is the request for the /api/show endpoint.
type ShowModelRequest struct {
	Model string `json:"model"`
}

// ShowModelResponse is the response from the /api/show endpoint.
// Capabilities lists feature strings such as "completion" and "tools".
type ShowModelResponse struct {
	License      string       `json:"license"`
	Modelfile    string       `json:"modelfile"`
	Parameters   string       `json:"parameters"`
	Template     string       `json:"template"`
	Details      ModelDetails `json:"details"`
	Capabilities []string     `json:"capabilities,omitempty"`
}

// SupportsTools reports whether the model advertises tool calling.
func (r *ShowModelResponse) SupportsTools() bool {
	for _, c := range r.Capabilities {
		if c == "tools" {
			return true
		}
	}
	return false
}

// FormatSize formats the model size in human-readable form.
func (m *ModelInfo) FormatSize() string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case m.Size >= gb:
		return formatFloat1(float64(m.Size)/gb) + " GB"
	case m.Size >= mb:
		return formatFloat1(float64(m.Size)/mb) + " MB"
	case m.Size >= kb:
		return formatFloat1(float64(m.Size)/kb) + " KB"
	default:
		return formatFloat1(float64(m.Size)) + " B"
	}
}

// formatFloat1 renders a float with a single decimal place, dropping ".0".
func formatFloat1(f float64) string {
	whole := int64(f)
	frac := int64((f - float64(whole)) * 10)
	if frac == 0 {
		return formatInt(whole)
	}
	return formatInt(whole) + "." + formatInt(frac)
}

func formatInt(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// =============================================================================
// API ERROR BODY
// =============================================================================

// APIError is the error body returned by the Ollama server on failure.
type APIError struct {
	Error string `json:"error"`
}
