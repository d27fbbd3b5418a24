// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// This package implements the wire model and transport for a local Ollama
// server: streaming chat completions with tool calling, plus model
// discovery (listing models and probing their capabilities).
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API
//   - Message: chat message with role, content, thinking, and tool calls
//   - ChatChunk: one decoded element of the newline-delimited JSON stream
//   - StreamReader: line-by-line stream decoder with cooperative cancellation
//   - Tool / ToolSchema: JSON-schema tool catalogue sent with requests
//
// # Usage
//
// Create a client and stream a chat response:
//
//	client := ollama.NewClient(nil)
//	err := client.ChatStream(ctx, "qwen3:8b", messages, tools,
//	    func(chunk ollama.ChatChunk) error {
//	        fmt.Print(chunk.Message.Content)
//	        return nil
//	    })
//
// # Errors
//
// Failures are reported as *ClientError with an ErrorKind: connection
// failures (including non-success status codes) and protocol failures
// (stream lines that cannot be decoded) both abort the request; there is
// no automatic retry. Context cancellation surfaces as the context's own
// error, never wrapped into a ClientError.
package ollama
