// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
)

// =============================================================================
// QUERY LOOP
// =============================================================================

// Query submits a user prompt and runs the request/stream loop until the
// model produces a final answer. While the stream reveals tool calls they
// are dispatched synchronously and the loop re-requests with the updated
// message log, so one Query can span several network round trips.
//
// Starting a Query while another is active cancels the previous one. The
// user message is recorded before cancellation is checked, so a prompt
// submitted with an already-cancelled context still lands in the log.
//
// Returns nil on success, context.Canceled (see IsCancelled) on
// cancellation, or an *ollama.ClientError on connection and protocol
// failures. There is no automatic retry.
func (s *Session) Query(ctx context.Context, prompt string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	qctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.appendUserLocked(prompt)
	s.status = StatusWaiting
	model := s.model
	s.mu.Unlock()
	s.notify()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
			s.status = StatusIdle
		}
		s.mu.Unlock()
		s.notify()
	}()

	for {
		s.mu.Lock()
		// Each round trip starts over in the waiting state, including the
		// re-request that follows a tool burst.
		s.status = StatusWaiting
		messages := make([]ollama.Message, len(s.messages))
		copy(messages, s.messages)
		schemas := s.registry.Schemas()
		s.mu.Unlock()
		s.notify()

		dispatched := 0
		err := s.client.ChatStream(qctx, model, messages, schemas, func(chunk ollama.ChatChunk) error {
			return s.reconcileChunk(qctx, chunk, &dispatched)
		})
		s.finishTurn()
		if err != nil {
			return err
		}
		if dispatched == 0 {
			s.mu.Lock()
			s.transcript.MarkLastFinal()
			s.mu.Unlock()
			s.notify()
			return nil
		}
	}
}

// finishTurn cleans up after one stream: an assistant tail that never
// received content, thinking, or tool calls is invalid wire input and is
// dropped before the log is reused, and its transcript placeholder goes
// with it.
func (s *Session) finishTurn() {
	s.mu.Lock()
	if n := len(s.messages); n > 0 {
		last := &s.messages[n-1]
		if last.Role == ollama.RoleAssistant && last.IsEmpty() {
			s.messages = s.messages[:n-1]
		}
	}
	s.transcript.PruneTrailingEmpty()
	s.mu.Unlock()
	s.notify()
}
