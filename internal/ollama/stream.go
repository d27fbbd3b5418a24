// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"unicode/utf8"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes the newline-delimited JSON chat stream.
//
// Each line must be one valid ChatChunk. A line that is not valid UTF-8 or
// does not decode aborts the stream with an ErrKindProtocol error: there is
// no partial recovery, since message reconstruction depends on every delta.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a stream reader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls fn for each decoded chunk, stopping at
// the done chunk, at EOF, on a decode failure, or when fn returns an error.
//
// Cancellation is checked before every read and again before every decoded
// chunk is handed to fn, so a cancel request is observed within one line of
// network input and never after new mutations have been requested.
func (s *StreamReader) Process(ctx context.Context, fn ChunkHandler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(bytes.TrimSpace(line)) == 0 {
					return nil
				}
				// Fall through and decode the final unterminated line.
			} else {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &ClientError{Kind: ErrKindConnection, Message: "stream read failed", Cause: err}
			}
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}

		chunk, derr := decodeChunk(trimmed)
		if derr != nil {
			return derr
		}

		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if herr := fn(*chunk); herr != nil {
			return herr
		}
		if chunk.Done || err == io.EOF {
			return nil
		}
	}
}

// decodeChunk parses one stream line into a ChatChunk.
func decodeChunk(line []byte) (*ChatChunk, error) {
	if !utf8.Valid(line) {
		return nil, &ClientError{Kind: ErrKindProtocol, Message: "stream line is not valid UTF-8"}
	}

	var chunk ChatChunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, &ClientError{Kind: ErrKindProtocol, Message: "undecodable stream line", Cause: err}
	}
	return &chunk, nil
}
