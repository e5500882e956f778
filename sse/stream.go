// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielhkuo/society-live/models"
)

var ErrClosed = errors.New("stream closed")

// Stream writes tally updates to an http.ResponseWriter as Server-Sent
// Events. Headers go out with the first write so the handler can still
// answer with a JSON error if subscribing fails.
type Stream struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

func NewStream(w http.ResponseWriter) (*Stream, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, errors.New("streaming unsupported by response writer")
	}
	return &Stream{
		w:    w,
		rc:   http.NewResponseController(w),
		done: make(chan struct{}),
	}, nil
}

func (s *Stream) start() {
	s.startOnce.Do(func() {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
	})
}

// Send writes one update as an SSE event named after the update type
func (s *Stream) Send(ctx context.Context, update models.TallyUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}
	return s.write(ctx, fmt.Sprintf("event: %s\ndata: %s\n\n", update.Type, data))
}

// Ping writes an SSE comment so dead connections fail on write
func (s *Stream) Ping(ctx context.Context) error {
	return s.write(ctx, ": keep-alive\n\n")
}

func (s *Stream) write(ctx context.Context, frame string) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	s.start()

	if deadline, ok := ctx.Deadline(); ok {
		s.setWriteDeadline(deadline)
		defer s.setWriteDeadline(time.Time{})
	}

	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}

// Writers that cannot take deadlines (httptest recorders) return
// http.ErrNotSupported, which is ignored.
func (s *Stream) setWriteDeadline(t time.Time) {
	_ = s.rc.SetWriteDeadline(t)
}

// Close marks the stream finished. The handler returns once Done is closed.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Done is closed after the last write
func (s *Stream) Done() <-chan struct{} {
	return s.done
}
