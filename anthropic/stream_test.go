package anthropic_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/critic"
	"github.com/fwojciec/critic/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseResponse is a helper to build SSE responses for tests.
type sseResponse struct {
	events []sseEvent
}

type sseEvent struct {
	event string
	data  string
}

func (s sseResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, evt := range s.events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.event, evt.data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

const messageStart = `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}`

// textStreamResponse returns a simple text streaming SSE response.
func textStreamResponse() sseResponse {
	return sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}
}

func stopResponse(stopReason string) sseResponse {
	return sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Ok"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"` + stopReason + `","stop_sequence":null},"usage":{"output_tokens":3}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}
}

func streamFromSSE(t *testing.T, resp sseResponse) critic.Stream {
	t.Helper()
	srv := httptest.NewServer(resp.handler())
	t.Cleanup(srv.Close)
	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	stream, err := client.Stream(context.Background(), critic.Request{Prompt: "Hi"})
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func collectEvents(t *testing.T, s critic.Stream) []critic.Event {
	t.Helper()
	var events []critic.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestStream_TextResponse(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())
	events := collectEvents(t, s)

	require.Len(t, events, 2)
	assert.Equal(t, critic.EventTextDelta{Delta: "Hello"}, events[0])
	assert.Equal(t, critic.EventTextDelta{Delta: " world"}, events[1])

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "Hello world", reply.Text)
	assert.Equal(t, critic.StopEndTurn, reply.StopReason)
	assert.Equal(t, "end_turn", reply.RawStopReason)
	assert.Equal(t, critic.Usage{InputTokens: 10, OutputTokens: 5}, reply.Usage)
}

func TestStream_Thinking(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"thinking","thinking":""}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"The dialogue drags."}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"signature_delta","signature":"sig"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"content_block_start", `{"type":"content_block_start","index":1,"content_block":{"type":"text","text":""}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":1,"delta":{"type":"text_delta","text":"Trim it."}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":1}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":9}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}

	s := streamFromSSE(t, resp)
	events := collectEvents(t, s)

	require.Len(t, events, 2)
	assert.Equal(t, critic.EventThinkingDelta{Delta: "The dialogue drags."}, events[0])
	assert.Equal(t, critic.EventTextDelta{Delta: "Trim it."}, events[1])

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "Trim it.", reply.Text)
}

func TestStream_State(t *testing.T) {
	t.Parallel()

	t.Run("new before first next", func(t *testing.T) {
		t.Parallel()
		s := streamFromSSE(t, textStreamResponse())
		assert.Equal(t, critic.StreamStateNew, s.State())
	})

	t.Run("streaming after first next", func(t *testing.T) {
		t.Parallel()
		s := streamFromSSE(t, textStreamResponse())
		_, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, critic.StreamStateStreaming, s.State())
	})

	t.Run("complete after EOF", func(t *testing.T) {
		t.Parallel()
		s := streamFromSSE(t, textStreamResponse())
		collectEvents(t, s)
		assert.Equal(t, critic.StreamStateComplete, s.State())
	})

	t.Run("closed after close mid-stream", func(t *testing.T) {
		t.Parallel()
		s := streamFromSSE(t, textStreamResponse())
		_, err := s.Next()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.Equal(t, critic.StreamStateClosed, s.State())
	})
}

func TestStream_ReplyBeforeNext(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())
	_, err := s.Reply()
	assert.ErrorIs(t, err, critic.ErrStreamNotReady)
}

func TestStream_ReplyMidStream(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())

	_, err := s.Next()
	require.NoError(t, err)

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, "Hello", reply.Text)
}

func TestStream_CloseAbortsReply(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())

	_, err := s.Next()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.StopAborted, reply.StopReason)
}

func TestStream_ClosePreservesTerminalState(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())
	collectEvents(t, s)
	require.NoError(t, s.Close())

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.StopEndTurn, reply.StopReason)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())
	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, critic.ErrStreamClosed)
}

func TestStream_SSEError(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"error", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`},
	}}

	s := streamFromSSE(t, resp)
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded_error")
	assert.Equal(t, critic.StreamStateError, s.State())

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.StopError, reply.StopReason)
}

func TestStream_DeltaForUnknownBlock(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"content_block_delta", `{"type":"content_block_delta","index":3,"delta":{"type":"text_delta","text":"x"}}`},
	}}

	s := streamFromSSE(t, resp)
	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown block index 3")
}

func TestStream_StopReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want critic.StopReason
	}{
		{"end_turn", critic.StopEndTurn},
		{"stop_sequence", critic.StopEndTurn},
		{"max_tokens", critic.StopLength},
		{"refusal", critic.StopSafety},
		{"new_reason", critic.StopUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			s := streamFromSSE(t, stopResponse(tt.raw))
			collectEvents(t, s)

			reply, err := s.Reply()
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.StopReason)
			assert.Equal(t, tt.raw, reply.RawStopReason)
		})
	}
}

func TestStream_DeltaInputTokens(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", messageStart},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":4,"input_tokens":42}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}

	s := streamFromSSE(t, resp)
	collectEvents(t, s)

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.Usage{InputTokens: 42, OutputTokens: 4}, reply.Usage)
}

func TestStream_ContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		fmt.Fprintf(w, "event: message_start\ndata: %s\n\n", messageStart)
		fmt.Fprint(w, "event: content_block_start\ndata: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\",\"text\":\"\"}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hi\"}}\n\n")
		if flusher != nil {
			flusher.Flush()
		}
		close(started)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	s, err := client.Stream(ctx, critic.Request{Prompt: "Hi"})
	require.NoError(t, err)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, critic.EventTextDelta{Delta: "Hi"}, evt)

	<-started
	cancel()

	_, err = s.Next()
	assert.Error(t, err)

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.StopAborted, reply.StopReason)
	assert.Equal(t, critic.StreamStateError, s.State())
}

func TestStream_ReadErrorMidStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		fmt.Fprintf(w, "event: message_start\ndata: %s\n\n", messageStart)
		fmt.Fprint(w, "event: content_block_start\ndata: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\",\"text\":\"\"}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n")
		if flusher != nil {
			flusher.Flush()
		}
		// Close without message_stop.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer srv.Close()

	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	s, err := client.Stream(context.Background(), critic.Request{Prompt: "Hi"})
	require.NoError(t, err)
	defer s.Close()

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, critic.EventTextDelta{Delta: "partial"}, evt)

	_, err = s.Next()
	assert.Error(t, err)
	assert.Equal(t, critic.StreamStateError, s.State())

	reply, err := s.Reply()
	require.NoError(t, err)
	assert.Equal(t, critic.StopError, reply.StopReason)
	assert.Equal(t, "partial", reply.Text)
}
