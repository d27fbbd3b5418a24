// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives multi-turn streaming conversations.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
	"github.com/jacksonzamorano/ollamakit/internal/tools"
	"github.com/jacksonzamorano/ollamakit/internal/transcript"
)

// =============================================================================
// STATUS
// =============================================================================

// Status describes what the active query is currently doing. It is a UI
// hint only and carries no control-flow weight.
type Status int

const (
	// StatusIdle - no query in flight.
	StatusIdle Status = iota

	// StatusWaiting - request sent, no delta received yet.
	StatusWaiting

	// StatusThinking - the model is streaming reasoning text.
	StatusThinking

	// StatusWriting - the model is streaming answer content.
	StatusWriting

	// StatusCalling - a tool call is being dispatched.
	StatusCalling
)

// String returns the display form of a status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusThinking:
		return "Thinking"
	case StatusWriting:
		return "Writing"
	case StatusCalling:
		return "Calling"
	default:
		return "Idle"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns one conversation: the wire message log sent to the model,
// the transcript shown to the user, and the registered tools. At most one
// query is active at a time; starting a new one replaces (cancels) the
// previous. All mutation happens inside the query loop; external readers
// use the snapshot accessors.
type Session struct {
	mu           sync.Mutex
	client       *ollama.Client
	model        string
	systemPrompt string
	messages     []ollama.Message
	transcript   *transcript.Transcript
	registry     *tools.Registry
	status       Status
	tokensPerSec float64
	onChange     func()
	cancel       context.CancelFunc
	gen          int
}

// New creates a session backed by client. A nil renderer disables
// markdown styling of transcript content.
func New(client *ollama.Client, renderer *transcript.Renderer) *Session {
	return &Session{
		client:     client,
		transcript: transcript.New(renderer),
		registry:   tools.NewRegistry(),
	}
}

// SetModel sets the model name used for subsequent queries.
func (s *Session) SetModel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = name
}

// Model returns the current model name.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetSystemPrompt installs a system message at the head of the wire log.
// Effective only before the first query.
func (s *Session) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = prompt
	if prompt != "" && len(s.messages) == 0 {
		s.messages = append(s.messages, ollama.NewSystemMessage(prompt))
	}
}

// RegisterTool makes a tool available to the model on subsequent queries.
func (s *Session) RegisterTool(def *tools.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Register(def)
}

// SetOnChange installs a callback invoked after every observable mutation
// of the transcript, message log, or status. The callback must not call
// back into mutating session methods.
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Status returns the current query status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// TokensPerSecond returns the generation rate reported by the most
// recently completed stream, or 0 before the first one finishes.
func (s *Session) TokensPerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokensPerSec
}

// Messages returns a snapshot copy of the wire message log.
func (s *Session) Messages() []ollama.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ollama.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Events returns a snapshot of the transcript. The events are copies, so
// the snapshot stays stable while a query keeps streaming.
func (s *Session) Events() []*transcript.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Events()
}

// Cancel stops the active query, if any. Safe to call at any time.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// IsCancelled reports whether err is the distinguished cancellation
// outcome of a query rather than an operational failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
