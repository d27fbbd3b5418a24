// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation engine: it owns the wire message
// log, the transcript, and the registered tools, and runs the streaming
// query loop that ties them together.
//
// # Query Lifecycle
//
// A query appends the user message, opens a streaming chat request, and
// folds each decoded chunk into both logs through the reconciler. A chunk
// carrying tool calls dispatches them synchronously, in index order,
// before further chunks are read. When a stream ends after at least one
// dispatch, the loop issues a new request with the updated log; it
// completes only when a stream ends with no tool call dispatched.
//
// # Concurrency
//
// At most one query runs per session; starting another cancels the first.
// Both logs are mutated only from within the query loop. Presentation
// code reads through the Messages and Events snapshot accessors and is
// notified of changes via the SetOnChange callback. Cancellation is
// cooperative: it is observed before each network read, on each decoded
// line, and after each tool dispatch, and no further mutation occurs once
// it is seen.
package session
