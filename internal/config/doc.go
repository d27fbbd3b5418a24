// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and watches the TOML configuration file at
// ~/.ollamakit/config.toml. All settings are optional; missing files
// and unset fields fall back to built-in defaults. The Watcher reloads
// the file on change so host and model edits apply between queries
// without restarting.
package config
