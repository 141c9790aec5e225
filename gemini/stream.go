package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/critic"
	"google.golang.org/genai"
)

// stream implements [critic.Stream] by wrapping the genai SDK's streaming
// iterator. One chunk may carry several parts, so decoded events are queued
// and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   critic.StreamState
	pending []critic.Event
	reply   critic.Reply
	err     error
}

// Interface compliance check.
var _ critic.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai response iterator. Client.Stream uses it
// with the SDK iterator; tests use it with canned chunks.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) critic.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: critic.StreamStateNew,
		reply: critic.Reply{StopReason: critic.StopEndTurn, RawStopReason: "end_turn"},
	}
}

func (s *stream) Next() (critic.Event, error) {
	switch s.state {
	case critic.StreamStateComplete:
		return nil, io.EOF
	case critic.StreamStateError:
		return nil, s.err
	case critic.StreamStateClosed:
		return nil, critic.ErrStreamClosed
	}

	for len(s.pending) == 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, s.fail(critic.StopAborted, "aborted", err)
		}
		chunk, err, ok := s.pull()
		if !ok {
			return nil, s.finish()
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, s.fail(critic.StopAborted, "aborted", err)
			}
			return nil, s.fail(critic.StopError, "error", fmt.Errorf("gemini: %w", err))
		}
		s.state = critic.StreamStateStreaming
		if err := s.processChunk(chunk); err != nil {
			return nil, err
		}
	}

	evt := s.pending[0]
	s.pending = s.pending[1:]
	return evt, nil
}

func (s *stream) processChunk(chunk *genai.GenerateContentResponse) error {
	if chunk == nil {
		return nil
	}
	if chunk.UsageMetadata != nil {
		s.reply.Usage = convertUsage(chunk.UsageMetadata)
	}
	if len(chunk.Candidates) == 0 {
		if fb := chunk.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return s.fail(critic.StopError, string(fb.BlockReason),
				fmt.Errorf("gemini: prompt blocked: %s", fb.BlockReason))
		}
		return nil
	}

	cand := chunk.Candidates[0]
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Text == "" {
				continue
			}
			if p.Thought {
				s.pending = append(s.pending, critic.EventThinkingDelta{Delta: p.Text})
				continue
			}
			s.reply.Text += p.Text
			s.pending = append(s.pending, critic.EventTextDelta{Delta: p.Text})
		}
	}
	if cand.FinishReason != "" {
		s.reply.StopReason = mapFinishReason(cand.FinishReason)
		s.reply.RawStopReason = string(cand.FinishReason)
	}
	return nil
}

// finish marks the stream complete. A safety stop with no text is an error:
// there is nothing to show the writer.
func (s *stream) finish() error {
	if s.reply.StopReason == critic.StopSafety && s.reply.Text == "" {
		s.state = critic.StreamStateError
		s.err = fmt.Errorf("gemini: response blocked: %s", s.reply.RawStopReason)
		return s.err
	}
	s.state = critic.StreamStateComplete
	return io.EOF
}

func (s *stream) fail(reason critic.StopReason, raw string, err error) error {
	s.state = critic.StreamStateError
	s.reply.StopReason = reason
	s.reply.RawStopReason = raw
	s.err = err
	return err
}

func (s *stream) State() critic.StreamState {
	return s.state
}

func (s *stream) Reply() (critic.Reply, error) {
	if s.state == critic.StreamStateNew {
		return critic.Reply{}, critic.ErrStreamNotReady
	}
	return s.reply, nil
}

func (s *stream) Close() error {
	if s.state != critic.StreamStateComplete && s.state != critic.StreamStateError {
		s.state = critic.StreamStateClosed
		s.reply.StopReason = critic.StopAborted
		s.reply.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}
