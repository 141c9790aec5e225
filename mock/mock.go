// Package mock provides test doubles for critic interfaces using function
// fields.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/critic"
)

// Interface compliance checks.
var (
	_ critic.Provider = (*Provider)(nil)
	_ critic.Stream   = (*Stream)(nil)
	_ critic.Sampler  = (*Sampler)(nil)
	_ critic.Store    = (*Store)(nil)
)

// Provider is a test double for critic.Provider.
// Set StreamFn or GenerateFn before calling the matching method.
type Provider struct {
	StreamFn   func(ctx context.Context, req critic.Request) (critic.Stream, error)
	GenerateFn func(ctx context.Context, req critic.Request) (critic.Reply, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req critic.Request) (critic.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Generate delegates to GenerateFn.
func (p *Provider) Generate(ctx context.Context, req critic.Request) (critic.Reply, error) {
	return p.GenerateFn(ctx, req)
}

// Connector returns a critic.Connector that always yields p.
func (p *Provider) Connector() critic.Connector {
	return func(context.Context, string, string) (critic.Provider, error) {
		return p, nil
	}
}

// Stream is a test double for critic.Stream.
// Set the function fields for the methods you need. State and Close are
// safe to call without a function set.
type Stream struct {
	NextFn  func() (critic.Event, error)
	StateFn func() critic.StreamState
	ReplyFn func() (critic.Reply, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (critic.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn.
func (s *Stream) State() critic.StreamState {
	if s.StateFn == nil {
		return critic.StreamStateNew
	}
	return s.StateFn()
}

// Reply delegates to ReplyFn.
func (s *Stream) Reply() (critic.Reply, error) {
	return s.ReplyFn()
}

// Close delegates to CloseFn.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TextStream returns a Stream that emits one text delta per chunk, then
// ends with final. A nil final completes the stream with io.EOF and a
// reply holding the joined chunks.
func TextStream(final error, chunks ...string) *Stream {
	var i int
	var text string
	return &Stream{
		NextFn: func() (critic.Event, error) {
			if i < len(chunks) {
				c := chunks[i]
				i++
				text += c
				return critic.EventTextDelta{Delta: c}, nil
			}
			if final != nil {
				return nil, final
			}
			return nil, io.EOF
		},
		ReplyFn: func() (critic.Reply, error) {
			return critic.Reply{Text: text, StopReason: critic.StopEndTurn}, nil
		},
	}
}

// Sampler is a test double for critic.Sampler.
type Sampler struct {
	SampleFn func(dir string, opts critic.SampleOptions) string
}

// Sample delegates to SampleFn.
func (s *Sampler) Sample(dir string, opts critic.SampleOptions) string {
	return s.SampleFn(dir, opts)
}

// Store is a test double for critic.Store.
type Store struct {
	SaveFn func(s critic.Session) error
}

// Save delegates to SaveFn.
func (s *Store) Save(session critic.Session) error {
	return s.SaveFn(session)
}
