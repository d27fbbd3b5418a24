// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	// ErrKindConnection covers failures to open or complete a request,
	// including non-success status codes.
	ErrKindConnection ErrorKind = iota

	// ErrKindProtocol covers stream lines that cannot be decoded: invalid
	// UTF-8 or JSON that does not match the chunk schema.
	ErrKindProtocol

	// ErrKindModelNotFound is returned when the requested model is not
	// available on the server.
	ErrKindModelNotFound
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Kind: ErrKindConnection, Message: "ollama is not reachable"}
	ErrModelNotFound = &ClientError{Kind: ErrKindModelNotFound, Message: "model not found"}
)

// IsConnectionError reports whether err is a connection-level failure.
func IsConnectionError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == ErrKindConnection
}

// IsProtocolError reports whether err is a stream decode failure.
func IsProtocolError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == ErrKindProtocol
}

// IsModelNotFound reports whether err indicates a missing model.
func IsModelNotFound(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == ErrKindModelNotFound
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultHost is the address used when none is configured.
const DefaultHost = "localhost:11434"

// Config holds configuration options for the Ollama client.
type Config struct {
	// Host is the server address, host:port or a full URL
	// (default: localhost:11434).
	Host string

	// RequestTimeout bounds non-streaming requests (default: 30s).
	RequestTimeout time.Duration

	// ConnectTimeout bounds connection establishment and time to first
	// response byte on streaming requests (default: 10s). The stream body
	// itself has no deadline; cancellation comes from the caller's context.
	ConnectTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		RequestTimeout: 30 * time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
// It is safe for concurrent use; SetHost takes effect on the next request.
type Client struct {
	mu           sync.Mutex
	host         string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client with the given configuration. A nil config
// uses defaults; zero fields are filled in.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 10 * time.Second
	}

	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: requestTimeout},
		// No overall timeout on the stream client: responses can stream for
		// minutes. ResponseHeaderTimeout bounds connect plus first byte.
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: connectTimeout,
			},
		},
	}
}

// SetHost updates the server address for subsequent requests.
func (c *Client) SetHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if host != "" {
		c.host = host
	}
}

// Host returns the configured server address.
func (c *Client) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

// baseURL builds the URL prefix for API endpoints. A bare host:port gets
// an http scheme; TLS is not a concern for a localhost server.
func (c *Client) baseURL() string {
	host := c.Host()
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "http://" + host
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL(), nil)
	if err != nil {
		return &ClientError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Kind:    ErrKindConnection,
			Message: "unexpected status from ollama: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// MODEL DISCOVERY
// =============================================================================

// ListModels retrieves all locally available models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Kind:    ErrKindConnection,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Kind: ErrKindProtocol, Message: "failed to decode model list", Cause: err}
	}
	return result.Models, nil
}

// ShowModel retrieves details for a specific model, including its
// capability strings.
func (c *Client) ShowModel(ctx context.Context, name string) (*ShowModelResponse, error) {
	body, err := json.Marshal(ShowModelRequest{Model: name})
	if err != nil {
		return nil, &ClientError{Kind: ErrKindProtocol, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/show", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Kind:    ErrKindConnection,
			Message: "failed to show model: " + resp.Status,
		}
	}

	var result ShowModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Kind: ErrKindProtocol, Message: "failed to decode model details", Cause: err}
	}
	return &result, nil
}

// SupportsTools reports whether the named model advertises tool calling.
func (c *Client) SupportsTools(ctx context.Context, name string) (bool, error) {
	show, err := c.ShowModel(ctx, name)
	if err != nil {
		return false, err
	}
	return show.SupportsTools(), nil
}

// ToolModels lists available models filtered to those that support tool
// calling. Models whose capability probe fails are skipped rather than
// failing the whole listing.
func (c *Client) ToolModels(ctx context.Context) ([]ModelInfo, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var capable []ModelInfo
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := c.SupportsTools(ctx, m.Name)
		if err != nil {
			continue
		}
		if ok {
			capable = append(capable, m)
		}
	}
	return capable, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChunkHandler is called for each decoded chunk, in stream order. Returning
// a non-nil error stops the stream and propagates the error to the caller
// of ChatStream.
type ChunkHandler func(chunk ChatChunk) error

// ChatStream sends a streaming chat request and invokes fn for every
// decoded chunk until the stream reports done, the handler returns an
// error, or the context is cancelled.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, tools []Tool, fn ChunkHandler) error {
	body, err := json.Marshal(ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
		Tools:    tools,
	})
	if err != nil {
		return &ClientError{Kind: ErrKindProtocol, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ClientError{Kind: ErrKindConnection, Message: "failed to open stream", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		// Prefer the server's own error message when the body carries one.
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return &ClientError{Kind: ErrKindConnection, Message: apiErr.Error}
		}
		return &ClientError{
			Kind:    ErrKindConnection,
			Message: "stream request failed: " + resp.Status,
		}
	}

	return NewStreamReader(resp.Body).Process(ctx, fn)
}
