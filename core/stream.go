package core

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ServerSentEvent is one event of a text/event-stream response.
type ServerSentEvent struct {
	Event string
	Data  []string
	ID    string
	Retry int
}

// JSON decodes the event data (joined across data lines) into v.
func (e *ServerSentEvent) JSON(v any) error {
	if err := json.Unmarshal([]byte(strings.Join(e.Data, "\n")), v); err != nil {
		return wrapDecode(err)
	}
	return nil
}

// Stream is a lazy, finite, forward-only view of a streamed response
// body. It may be consumed exactly once, through either Lines or
// Events; a second consumption attempt fails with ErrStreamConsumed.
// Close releases the underlying connection and is safe to call at any
// point, including after partial consumption.
type Stream struct {
	body io.ReadCloser

	mu       sync.Mutex
	consumed bool
	closed   bool
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{body: body}
}

// consume marks the stream consumed, failing on the second attempt.
func (s *Stream) consume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return ErrStreamConsumed
	}
	if s.closed {
		return ErrStreamConsumed
	}
	s.consumed = true
	return nil
}

// Close releases the underlying transport body. Closing twice is a
// no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// Lines consumes the stream as a sequence of lines. The data channel
// is closed at end of stream; the error channel emits at most one
// error. The body is closed when the stream ends or ctx is cancelled.
func (s *Stream) Lines(ctx context.Context) (<-chan []byte, <-chan error, error) {
	if err := s.consume(); err != nil {
		return nil, nil, err
	}

	lineCh := make(chan []byte)
	errCh := make(chan error, 1)

	go func() {
		defer s.Close()
		defer close(lineCh)
		defer close(errCh)

		scanner := bufio.NewScanner(s.body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())

			select {
			case lineCh <- line:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- wrapNetwork(err)
		}
	}()

	return lineCh, errCh, nil
}

// Events consumes the stream as Server-Sent Events. Comment lines are
// skipped, multi-line data fields accumulate, and an event is emitted
// on each blank line that closes a non-empty data set.
func (s *Stream) Events(ctx context.Context) (<-chan *ServerSentEvent, <-chan error, error) {
	if err := s.consume(); err != nil {
		return nil, nil, err
	}

	eventCh := make(chan *ServerSentEvent)
	errCh := make(chan error, 1)

	go func() {
		defer s.Close()
		defer close(eventCh)
		defer close(errCh)

		scanner := bufio.NewScanner(s.body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		current := &ServerSentEvent{}
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")

			if line != "" {
				parseSSELine(current, line)
				continue
			}
			if len(current.Data) == 0 {
				continue
			}

			select {
			case eventCh <- current:
				current = &ServerSentEvent{}
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- wrapNetwork(err)
			return
		}
		// Dispatch a trailing event not terminated by a blank line.
		if len(current.Data) > 0 {
			select {
			case eventCh <- current:
			case <-ctx.Done():
				errCh <- ctx.Err()
			}
		}
	}()

	return eventCh, errCh, nil
}

// parseSSELine folds one field line into the event being assembled.
func parseSSELine(e *ServerSentEvent, line string) {
	if strings.HasPrefix(line, ":") {
		return
	}

	key, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)

	switch key {
	case "event":
		e.Event = value
	case "data":
		e.Data = append(e.Data, value)
	case "id":
		e.ID = value
	case "retry":
		if n, err := strconv.Atoi(value); err == nil {
			e.Retry = n
		}
	}
}
