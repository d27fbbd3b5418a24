// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
	"github.com/jacksonzamorano/ollamakit/internal/tools"
	"github.com/jacksonzamorano/ollamakit/internal/transcript"
)

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []ollama.Message `json:"messages"`
	Tools    []ollama.Tool    `json:"tools"`
	Stream   bool             `json:"stream"`
}

// chatServer streams the NDJSON lines produced by respond for each
// consecutive /api/chat request and records the decoded request bodies.
func chatServer(t *testing.T, respond func(n int, req chatRequest) []string) (*httptest.Server, *[]chatRequest) {
	t.Helper()
	var seen []chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range respond(len(seen), req) {
			fmt.Fprintln(w, line)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func sessionFor(srv *httptest.Server) *Session {
	client := ollama.NewClient(&ollama.Config{Host: srv.URL})
	s := New(client, nil)
	s.SetModel("llama3.2")
	return s
}

const doneLine = `{"message":{"role":"assistant"},"done":true,"done_reason":"stop"}`

func contentLine(delta string) string {
	b, _ := json.Marshal(delta)
	return fmt.Sprintf(`{"message":{"role":"assistant","content":%s},"done":false}`, b)
}

func TestQueryContentOnly(t *testing.T) {
	srv, seen := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{contentLine("Hel"), contentLine("lo"), doneLine}
	})
	s := sessionFor(srv)

	if err := s.Query(context.Background(), "hi"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(*seen) != 1 {
		t.Errorf("requests = %d, want 1 (no tool call, no re-request)", len(*seen))
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != ollama.RoleUser || msgs[0].Content != "hi" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Role != ollama.RoleAssistant || msgs[1].Content != "Hello" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}

	events := s.Events()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[1].Content != "Hello" || !events[1].Final {
		t.Errorf("model event = %+v, want final Hello", events[1])
	}
	if s.Status() != StatusIdle {
		t.Errorf("Status = %v, want Idle after completion", s.Status())
	}
}

func TestQueryToolFlowReRequests(t *testing.T) {
	srv, seen := chatServer(t, func(n int, _ chatRequest) []string {
		if n == 1 {
			return []string{
				`{"message":{"role":"assistant","tool_calls":[{"function":{"index":0,"name":"get_weather","arguments":{"location":"Paris"}}}]},"done":false}`,
				doneLine,
			}
		}
		return []string{contentLine("Cloudy, 18 degrees."), doneLine}
	})
	s := sessionFor(srv)
	s.RegisterTool(&tools.Definition{
		Name:        "get_weather",
		Description: "Get the current weather for a location.",
		Parameters: ollama.ToolParameters{
			Type: "object",
			Properties: map[string]ollama.ToolProperty{
				"location": {Type: "string"},
			},
			Required: []string{"location"},
		},
		Callback: func(args json.RawMessage) (any, error) {
			var in struct {
				Location string `json:"location"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			if in.Location != "Paris" {
				t.Errorf("location = %q, want Paris", in.Location)
			}
			return map[string]any{"temperature": 18, "conditions": "Cloudy"}, nil
		},
	})

	if err := s.Query(context.Background(), "weather in Paris?"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(*seen) != 2 {
		t.Fatalf("requests = %d, want 2 (tool dispatch forces a re-request)", len(*seen))
	}

	first := (*seen)[0]
	if len(first.Tools) != 1 || first.Tools[0].Function.Name != "get_weather" {
		t.Errorf("first request tools = %+v", first.Tools)
	}

	// The re-request must carry the full updated log:
	// user, assistant(tool call), tool response.
	second := (*seen)[1]
	if len(second.Messages) != 3 {
		t.Fatalf("re-request carried %d messages, want 3", len(second.Messages))
	}
	if !second.Messages[1].HasToolCalls() {
		t.Errorf("re-request msgs[1] = %+v, want tool call", second.Messages[1])
	}
	if second.Messages[2].Role != ollama.RoleTool || second.Messages[2].ToolName != "get_weather" {
		t.Errorf("re-request msgs[2] = %+v, want tool response", second.Messages[2])
	}

	// user, tool request, tool response, final answer.
	events := s.Events()
	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}
	if events[1].ToolRequest == nil {
		t.Errorf("events[1] = %+v, want tool request", events[1])
	}
	if events[2].ToolResponse == nil || events[2].Role != transcript.RoleTool {
		t.Errorf("events[2] = %+v, want tool response", events[2])
	}
	if events[3].Content != "Cloudy, 18 degrees." || !events[3].Final {
		t.Errorf("events[3] = %+v", events[3])
	}

	msgs := s.Messages()
	// user, assistant(call), tool, assistant(answer)
	if len(msgs) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(msgs))
	}
	if msgs[3].Content != "Cloudy, 18 degrees." {
		t.Errorf("final assistant = %+v", msgs[3])
	}
}

func TestQueryPrunesEmptyAssistantTurn(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{doneLine}
	})
	s := sessionFor(srv)

	if err := s.Query(context.Background(), "hi"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want 1 (empty assistant turn pruned)", len(msgs))
	}
	if msgs[0].Role != ollama.RoleUser {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
}

func TestQueryCancelledBeforeNetwork(t *testing.T) {
	srv, seen := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{doneLine}
	})
	s := sessionFor(srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Query(ctx, "hi")
	if !IsCancelled(err) {
		t.Fatalf("Query() error = %v, want cancellation", err)
	}

	// The user message is recorded before cancellation is observed.
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != ollama.RoleUser {
		t.Errorf("messages = %+v, want just the user message", msgs)
	}
	if len(*seen) != 0 {
		t.Errorf("requests = %d, want 0", len(*seen))
	}
}

func TestQueryCancelDuringStream(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		lines := []string{contentLine("one ")}
		for i := 0; i < 50; i++ {
			lines = append(lines, contentLine("more "))
		}
		return append(lines, doneLine)
	})
	s := sessionFor(srv)

	cancelled := false
	s.SetOnChange(func() {
		if !cancelled && len(s.Events()) > 1 {
			cancelled = true
			s.Cancel()
		}
	})

	err := s.Query(context.Background(), "hi")
	if !IsCancelled(err) {
		t.Fatalf("Query() error = %v, want cancellation", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("Status = %v, want Idle after cancellation", s.Status())
	}
}

func TestSecondQueryReplacesFirst(t *testing.T) {
	release := make(chan struct{})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n == 1 {
			fmt.Fprintln(w, contentLine("partial"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			// Keep the first stream open until the test is done with it.
			<-release
			return
		}
		fmt.Fprintln(w, contentLine("done"))
		fmt.Fprintln(w, doneLine)
	}))
	t.Cleanup(srv.Close)
	defer close(release)
	s := sessionFor(srv)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- s.Query(context.Background(), "one")
	}()

	// Wait until the first query has folded its chunk.
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Events()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for first stream")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Query(context.Background(), "two"); err != nil {
		t.Fatalf("second Query() error = %v", err)
	}

	select {
	case err := <-firstErr:
		if !IsCancelled(err) {
			t.Errorf("first Query() error = %v, want cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first query did not return")
	}

	msgs := s.Messages()
	var users []string
	for _, m := range msgs {
		if m.Role == ollama.RoleUser {
			users = append(users, m.Content)
		}
	}
	if len(users) != 2 || users[0] != "one" || users[1] != "two" {
		t.Errorf("user messages = %v, want [one two]", users)
	}
}

func TestQueryUnknownToolRecovered(t *testing.T) {
	srv, seen := chatServer(t, func(n int, _ chatRequest) []string {
		if n == 1 {
			return []string{
				`{"message":{"role":"assistant","tool_calls":[{"function":{"index":0,"name":"missing_tool","arguments":{}}}]},"done":false}`,
				doneLine,
			}
		}
		return []string{contentLine("I could not use that tool."), doneLine}
	})
	s := sessionFor(srv)

	if err := s.Query(context.Background(), "go"); err != nil {
		t.Fatalf("Query() error = %v (tool failures must not fail the query)", err)
	}
	if len(*seen) != 2 {
		t.Fatalf("requests = %d, want 2", len(*seen))
	}

	second := (*seen)[1]
	if second.Messages[2].Content != tools.FailureJSON {
		t.Errorf("tool response = %q, want %q", second.Messages[2].Content, tools.FailureJSON)
	}
}

func TestQueryProtocolErrorFails(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{contentLine("ok"), "not json at all"}
	})
	s := sessionFor(srv)

	err := s.Query(context.Background(), "hi")
	if !ollama.IsProtocolError(err) {
		t.Fatalf("Query() error = %v, want protocol error", err)
	}
}

func TestQueryServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"model failed to load"}`)
	}))
	t.Cleanup(srv.Close)
	s := sessionFor(srv)

	err := s.Query(context.Background(), "hi")
	if !ollama.IsConnectionError(err) {
		t.Fatalf("Query() error = %v, want connection error", err)
	}
}

func TestQuerySendsSystemPrompt(t *testing.T) {
	srv, seen := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{contentLine("ok"), doneLine}
	})
	s := sessionFor(srv)
	s.SetSystemPrompt("You are terse.")

	if err := s.Query(context.Background(), "hi"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	first := (*seen)[0]
	if len(first.Messages) != 2 || first.Messages[0].Role != ollama.RoleSystem {
		t.Fatalf("request messages = %+v, want system prompt first", first.Messages)
	}
	if first.Messages[0].Content != "You are terse." {
		t.Errorf("system prompt = %q", first.Messages[0].Content)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusIdle, "Idle"},
		{StatusWaiting, "Waiting"},
		{StatusThinking, "Thinking"},
		{StatusWriting, "Writing"},
		{StatusCalling, "Calling"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestQueryRecordsTokensPerSecond(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{
			contentLine("Hi."),
			`{"message":{"role":"assistant"},"done":true,"done_reason":"stop","eval_count":50,"eval_duration":2000000000}`,
		}
	})
	s := sessionFor(srv)

	if tps := s.TokensPerSecond(); tps != 0 {
		t.Errorf("TokensPerSecond before first query = %v, want 0", tps)
	}
	if err := s.Query(context.Background(), "hi"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if tps := s.TokensPerSecond(); tps != 25.0 {
		t.Errorf("TokensPerSecond = %v, want 25 (50 tokens over 2s)", tps)
	}
}

func TestStatusResetsBetweenToolRounds(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		if n == 1 {
			return []string{
				`{"message":{"role":"assistant","tool_calls":[{"function":{"index":0,"name":"get_weather","arguments":{"location":"Paris"}}}]},"done":false}`,
				doneLine,
			}
		}
		return []string{contentLine("Cloudy."), doneLine}
	})
	s := sessionFor(srv)
	s.RegisterTool(&tools.Definition{
		Name:        "get_weather",
		Description: "Get the current weather for a location.",
		Parameters: ollama.ToolParameters{
			Type: "object",
			Properties: map[string]ollama.ToolProperty{
				"location": {Type: "string"},
			},
			Required: []string{"location"},
		},
		Callback: func(args json.RawMessage) (any, error) {
			return map[string]any{"conditions": "Cloudy"}, nil
		},
	})

	// Query runs on this goroutine, so the callback never races.
	var statuses []Status
	s.SetOnChange(func() { statuses = append(statuses, s.Status()) })

	if err := s.Query(context.Background(), "weather in Paris?"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	lastCalling := -1
	for i, st := range statuses {
		if st == StatusCalling {
			lastCalling = i
		}
	}
	if lastCalling < 0 {
		t.Fatalf("statuses = %v, no Calling observed during tool dispatch", statuses)
	}
	waited := false
	for _, st := range statuses[lastCalling+1:] {
		if st == StatusWaiting {
			waited = true
		}
		if st == StatusWriting && !waited {
			t.Fatalf("statuses = %v, went Calling to Writing without Waiting on the re-request", statuses)
		}
	}
	if !waited {
		t.Errorf("statuses = %v, no Waiting between tool dispatch and the next round trip", statuses)
	}
}
