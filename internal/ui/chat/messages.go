// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the ollamakit TUI.
//
// This file defines the Bubble Tea message types the view reacts to.
package chat

// SessionChangedMsg signals that the session's transcript, message log,
// or status changed. The view re-reads its snapshots on receipt. Sent
// from the session's change callback via program.Send.
type SessionChangedMsg struct{}

// QueryDoneMsg signals that the active query finished. Err is nil on
// success, the cancellation sentinel on user stop, or an operational
// failure.
type QueryDoneMsg struct {
	Err error
}

// ConfigReloadedMsg delivers a reloaded configuration from the file
// watcher. The model change applies to the next query; the host is
// applied to the client by the watcher callback itself.
type ConfigReloadedMsg struct {
	Model string
}
