// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the color palette and lipgloss styles shared by
// the TUI. Colors are adaptive so the interface stays readable on both
// light and dark terminals.
package styles
