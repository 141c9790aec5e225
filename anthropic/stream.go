package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/critic"
)

// stream implements [critic.Stream] by parsing SSE events from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   critic.StreamState
	reply   critic.Reply
	text    strings.Builder
	blocks  map[int]string // index -> block type
	err     error          // terminal error, if any
}

// Interface compliance check.
var _ critic.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	scanner := bufio.NewScanner(body)
	// Long replies arrive as a single data line per delta, but error bodies
	// can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{
		body:    body,
		scanner: scanner,
		ctx:     ctx,
		state:   critic.StreamStateNew,
		blocks:  make(map[int]string),
	}
}

// Next reads the next semantic event from the SSE stream.
// Returns io.EOF when the stream completes normally.
func (s *stream) Next() (critic.Event, error) {
	switch s.state {
	case critic.StreamStateComplete:
		return nil, io.EOF
	case critic.StreamStateError:
		return nil, s.err
	case critic.StreamStateClosed:
		return nil, critic.ErrStreamClosed
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		s.state = critic.StreamStateStreaming

		evt, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}

		if s.state == critic.StreamStateComplete {
			return nil, io.EOF
		}
		if evt != nil {
			return evt, nil
		}
	}
}

func (s *stream) State() critic.StreamState {
	return s.state
}

func (s *stream) Reply() (critic.Reply, error) {
	if s.state == critic.StreamStateNew {
		return critic.Reply{}, critic.ErrStreamNotReady
	}
	r := s.reply
	r.Text = s.text.String()
	return r, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != critic.StreamStateComplete && s.state != critic.StreamStateError {
		s.state = critic.StreamStateClosed
		s.reply.StopReason = critic.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	return s.body.Close()
}

// terminate records a terminal error and sets the stop reason.
func (s *stream) terminate(err error) {
	s.state = critic.StreamStateError
	if err == io.EOF {
		// message_stop completes the stream before this point; a bare EOF
		// means the connection ended early.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		s.reply.StopReason = critic.StopError
		s.reply.RawStopReason = "error"
		return
	}
	s.err = err
	if s.ctx.Err() != nil {
		s.reply.StopReason = critic.StopAborted
		s.reply.RawStopReason = "aborted"
	} else {
		s.reply.StopReason = critic.StopError
		s.reply.RawStopReason = "error"
	}
}

// readSSEEvent reads lines until a complete SSE event is assembled.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a semantic event. Returns a nil event
// for bookkeeping events.
func (s *stream) processEvent(eventType, data string) (critic.Event, error) {
	switch eventType {
	case "message_start":
		var evt sseMessageStart
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse message_start: %w", err)
		}
		s.reply.Usage.InputTokens = evt.Message.Usage.InputTokens
		return nil, nil
	case "content_block_start":
		var evt sseContentBlockStart
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse content_block_start: %w", err)
		}
		s.blocks[evt.Index] = evt.ContentBlock.Type
		return nil, nil
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return nil, s.handleMessageDelta(data)
	case "message_stop":
		s.state = critic.StreamStateComplete
		return nil, nil
	case "error":
		var evt sseError
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse error event: %w", err)
		}
		return nil, fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
	default:
		// ping, content_block_stop and unknown types carry nothing we need.
		return nil, nil
	}
}

func (s *stream) handleContentBlockDelta(data string) (critic.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if _, ok := s.blocks[evt.Index]; !ok {
		return nil, fmt.Errorf("anthropic: delta for unknown block index %d", evt.Index)
	}

	switch evt.Delta.Type {
	case "text_delta":
		s.text.WriteString(evt.Delta.Text)
		return critic.EventTextDelta{Delta: evt.Delta.Text}, nil
	case "thinking_delta":
		return critic.EventThinkingDelta{Delta: evt.Delta.Thinking}, nil
	default:
		return nil, nil
	}
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}

	s.reply.Usage.OutputTokens = evt.Usage.OutputTokens
	if evt.Usage.InputTokens != nil {
		s.reply.Usage.InputTokens = *evt.Usage.InputTokens
	}
	if evt.Delta.StopReason != nil {
		s.reply.RawStopReason = *evt.Delta.StopReason
		s.reply.StopReason = mapStopReason(*evt.Delta.StopReason)
	}
	return nil
}

func mapStopReason(raw string) critic.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return critic.StopEndTurn
	case "max_tokens":
		return critic.StopLength
	case "refusal":
		return critic.StopSafety
	default:
		return critic.StopUnknown
	}
}
