// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jacksonzamorano/ollamakit/internal/ollama"
)

// =============================================================================
// BUILT-IN TOOLS
// =============================================================================

// maxReadBytes caps how much of a file read_file returns to the model.
const maxReadBytes = 64 * 1024

// CurrentTime returns a tool reporting the host's local time. It takes no
// arguments.
func CurrentTime() *Definition {
	return &Definition{
		Name:        "current_time",
		Description: "Get the current local date and time.",
		Parameters: ollama.ToolParameters{
			Type:       "object",
			Properties: map[string]ollama.ToolProperty{},
		},
		Callback: func(_ json.RawMessage) (any, error) {
			now := time.Now()
			return map[string]string{
				"time":     now.Format(time.RFC3339),
				"weekday":  now.Weekday().String(),
				"timezone": now.Format("MST"),
			}, nil
		},
	}
}

// ReadFile returns a tool that reads a text file from the local
// filesystem. Paths are cleaned and ~ is expanded; reads are truncated at
// maxReadBytes.
func ReadFile() *Definition {
	return &Definition{
		Name:        "read_file",
		Description: "Read the contents of a text file at the given path.",
		Parameters: ollama.ToolParameters{
			Type: "object",
			Properties: map[string]ollama.ToolProperty{
				"path": {
					Type:        "string",
					Description: "Absolute or home-relative path to the file.",
				},
			},
			Required: []string{"path"},
		},
		Callback: readFileCallback,
	}
}

func readFileCallback(args json.RawMessage) (any, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Path) == "" {
		return nil, errors.New("path is required")
	}

	path := in.Path
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[2:])
	}
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	truncated := false
	if len(data) > maxReadBytes {
		data = data[:maxReadBytes]
		truncated = true
	}

	return map[string]any{
		"path":      path,
		"content":   string(data),
		"truncated": truncated,
	}, nil
}
