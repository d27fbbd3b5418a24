// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript maintains the presentation-facing record of a chat
// session: an ordered list of events with accumulated content, optional
// reasoning text, and tool interaction records.
//
// The transcript is a projection of the conversation for display. It is
// distinct from the wire message log sent back to the model: a single
// model turn may produce several transcript events (a reply, a tool
// request, a tool response), and whitespace-only stream deltas never open
// new events here even though they are preserved on the wire.
//
// # Key Types
//
//   - Event: one display unit (user prompt, model reply, tool request,
//     tool response) with an open/final lifecycle
//   - Transcript: the append-mostly event sequence for one session
//   - Renderer: glamour-backed markdown styling with raw fallback
//
// Content is re-rendered on every delta so the styled form tracks the
// accumulated markdown rather than styling fragments independently.
package transcript
