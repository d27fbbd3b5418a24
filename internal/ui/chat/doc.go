// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea chat view. It owns no conversation
// state: the session is the source of truth, and the view re-reads its
// Events and Status snapshots whenever a SessionChangedMsg arrives.
// Queries run on a background goroutine started by the submit binding;
// esc cancels the in-flight query and ctrl+c quits.
package chat
