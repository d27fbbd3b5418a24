// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sort"
	"strings"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
	"github.com/jacksonzamorano/ollamakit/internal/tools"
	"github.com/jacksonzamorano/ollamakit/internal/transcript"
)

// =============================================================================
// RECONCILER
// =============================================================================

// The reconciler folds each decoded stream chunk into the wire message
// log and the transcript. The two tails evolve independently: the wire
// tail coalesces deltas into assistant messages (a message carrying tool
// calls is never extended), while the transcript tail coalesces into the
// last open model event (an event is closed by a user message, a tool
// call, or the start of a new model event).

// appendUserLocked records the user's prompt in both logs. The previous
// transcript tail is finalized first. Caller holds the mutex.
func (s *Session) appendUserLocked(text string) {
	s.transcript.MarkLastFinal()
	s.messages = append(s.messages, ollama.NewUserMessage(text))
	s.transcript.Append(transcript.NewUserEvent(text))
}

// reconcileChunk applies one decoded chunk. Deltas apply in a fixed
// order: thinking, then content, then tool calls.
func (s *Session) reconcileChunk(ctx context.Context, chunk ollama.ChatChunk, dispatched *int) error {
	msg := chunk.Message
	if msg.Thinking != "" {
		s.foldDelta(msg.Thinking, true)
	}
	if msg.Content != "" {
		s.foldDelta(msg.Content, false)
	}
	if len(msg.ToolCalls) > 0 {
		if err := s.foldToolCalls(ctx, msg.ToolCalls, dispatched); err != nil {
			return err
		}
	}
	if chunk.Done {
		s.mu.Lock()
		s.tokensPerSec = chunk.TokensPerSecond()
		s.mu.Unlock()
	}
	return nil
}

// foldDelta folds a thinking or content delta into both tails.
func (s *Session) foldDelta(delta string, thinking bool) {
	s.mu.Lock()

	tail := s.wireTailLocked()
	if thinking {
		tail.Thinking += delta
		s.status = StatusThinking
	} else {
		tail.Content += delta
		s.status = StatusWriting
	}

	last := s.transcript.Last()
	open := last != nil && last.Open(transcript.RoleModel)
	if !open {
		// Whitespace-only deltas never open a new event on their own;
		// they are preserved on the wire above.
		if strings.TrimSpace(delta) == "" {
			s.mu.Unlock()
			s.notify()
			return
		}
		s.transcript.MarkLastFinal()
		s.transcript.Append(transcript.NewEvent(transcript.RoleModel, s.model))
	}
	if thinking {
		s.transcript.AppendThinking(delta)
	} else {
		s.transcript.AppendContent(delta)
	}

	s.mu.Unlock()
	s.notify()
}

// wireTailLocked returns the wire message deltas fold into, appending a
// fresh assistant message when the current tail cannot be extended.
func (s *Session) wireTailLocked() *ollama.Message {
	if n := len(s.messages); n > 0 {
		last := &s.messages[n-1]
		if last.Role == ollama.RoleAssistant && !last.HasToolCalls() {
			return last
		}
	}
	s.messages = append(s.messages, ollama.NewAssistantMessage(""))
	return &s.messages[len(s.messages)-1]
}

// foldToolCalls records and dispatches each tool call in index order.
// Each call appends one assistant wire message carrying exactly that
// call, one tool-request transcript event, and, after dispatch, one
// tool-role wire message and one tool-response event. Dispatch runs
// outside the session lock; later calls see the conversation state left
// by earlier ones. Cancellation is re-checked after every dispatch.
func (s *Session) foldToolCalls(ctx context.Context, calls []ollama.ToolCall, dispatched *int) error {
	ordered := make([]ollama.ToolCall, len(calls))
	copy(ordered, calls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Function.Index < ordered[j].Function.Index
	})

	for _, call := range ordered {
		s.mu.Lock()
		s.transcript.MarkLastFinal()
		s.messages = append(s.messages, ollama.Message{
			Role:      ollama.RoleAssistant,
			ToolCalls: []ollama.ToolCall{call},
		})
		s.transcript.Append(transcript.NewToolRequestEvent(
			s.model, call.Function.Name, string(call.Function.Arguments)))
		s.status = StatusCalling
		reg := s.registry
		s.mu.Unlock()
		s.notify()

		resp := tools.Dispatch(reg, call)

		s.mu.Lock()
		s.messages = append(s.messages, ollama.NewToolResultMessage(resp.Name, resp.JSON))
		s.transcript.Append(transcript.NewToolResponseEvent(resp.Name, resp.JSON))
		s.mu.Unlock()
		s.notify()

		*dispatched++
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
