// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Concurrent-safety tests: external readers take snapshots while the
// query loop is mutating, and Cancel may be called from any goroutine.
package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotsSafeDuringQuery(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		lines := make([]string, 0, 201)
		for i := 0; i < 200; i++ {
			lines = append(lines, contentLine("word "))
		}
		return append(lines, doneLine)
	})
	s := sessionFor(srv)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_ = s.Messages()
				_ = s.Events()
				_ = s.Status()
			}
		}()
	}

	err := s.Query(context.Background(), "go")
	close(stop)
	wg.Wait()

	require.NoError(t, err)
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Len(t, msgs[1].Content, len("word ")*200)
}

func TestSnapshotFieldsStableDuringQuery(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		lines := make([]string, 0, 2001)
		for i := 0; i < 2000; i++ {
			lines = append(lines, contentLine("x"))
		}
		return append(lines, doneLine)
	})
	s := sessionFor(srv)

	// Hold snapshots and keep re-reading their fields while the stream
	// folds; the query goroutine must never write into a handed-out event.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Events()
				for j := 0; j < 100; j++ {
					for _, e := range snap {
						_ = e.Content
						_ = e.ContentStyled
						_ = e.Thinking
						_ = e.Final
					}
				}
			}
		}()
	}

	err := s.Query(context.Background(), "go")
	close(stop)
	wg.Wait()

	require.NoError(t, err)
	events := s.Events()
	require.Len(t, events, 2)
	require.Len(t, events[1].Content, 2000)
}

func TestConcurrentCancelSafe(t *testing.T) {
	srv, _ := chatServer(t, func(n int, _ chatRequest) []string {
		return []string{contentLine("hi"), doneLine}
	})
	s := sessionFor(srv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Cancel()
		}()
	}
	wg.Wait()

	// Cancel with no active query must be a no-op; the session still works.
	err := s.Query(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, StatusIdle, s.Status())
}
