// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools implements the tool system: named host functions the
// model can invoke mid-conversation, together with the registry that
// advertises their schemas and the dispatcher that executes calls.
//
// Dispatch is deliberately total. Every failure mode of a call, an
// unknown tool name, a callback error, a nil result, or an
// unserializable one, produces the same fixed failure payload
// (FailureJSON) rather than an error. Tool failures degrade the model's
// answer; they never abort the surrounding query.
//
// Tool arguments arrive as raw JSON exactly as the model produced them.
// Callbacks own their argument decoding, so malformed arguments surface
// as callback errors and therefore as failure payloads.
package tools
