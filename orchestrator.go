package critic

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// Header labels for the two sampled folders.
const (
	LabelDraft     = "My draft"
	LabelReference = "Style reference"
)

// Orchestrator runs one writer turn at a time: it samples both folders,
// assembles the prompt, streams the reply and commits it to the session.
type Orchestrator struct {
	connect      Connector
	sampler      Sampler
	store        Store
	systemPrompt string
	logger       zerolog.Logger
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithStore persists the session after every successful turn.
func WithStore(s Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithSystemPrompt replaces [DefaultSystemPrompt].
func WithSystemPrompt(p string) Option {
	return func(o *Orchestrator) { o.systemPrompt = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an Orchestrator. connect is called on every turn,
// so wrap it with [CachedConnector] to reuse clients.
func NewOrchestrator(connect Connector, sampler Sampler, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		connect:      connect,
		sampler:      sampler,
		systemPrompt: DefaultSystemPrompt,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TurnOption configures a single Turn invocation.
type TurnOption func(*turnConfig)

type turnConfig struct {
	onEvent func(Event)
}

// WithEventHandler sets a callback that receives each streaming event during
// the turn. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) TurnOption {
	return func(c *turnConfig) {
		c.onEvent = h
	}
}

// Turn records prompt as a user message and asks the model for feedback.
//
// The user message is kept even when the turn fails. The assistant message
// and the history entries are appended only when the stream completes; on
// any error partial output is discarded. When a store is configured the
// session is saved after the commit, and a save failure is reported as
// [ErrPersist] alongside the committed reply.
func (o *Orchestrator) Turn(ctx context.Context, session *Session, settings Settings, prompt string, opts ...TurnOption) (string, error) {
	var cfg turnConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if err := settings.Validate(); err != nil {
		return "", err
	}

	session.Messages = append(session.Messages, UserMessage(prompt))

	if settings.APIKey == "" {
		return "", ErrMissingCredential
	}

	log := o.logger.With().Str("turn_id", uuid.NewString()).Str("model", settings.Model).Logger()
	start := time.Now()

	reference, draft := o.sampleFolders(settings)
	log.Info().
		Int("reference_chars", len([]rune(reference))).
		Int("draft_chars", len([]rune(draft))).
		Msg("turn started")

	full := BuildPrompt(PromptParts{
		StyleGuide: session.StyleGuide,
		Reference:  reference,
		Draft:      draft,
		Task:       prompt,
	})

	reply, err := o.stream(ctx, settings, session.History, full, cfg.onEvent)
	if err != nil {
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("turn failed")
		return "", err
	}

	session.commit(full, reply.Text)
	log.Info().
		Dur("duration", time.Since(start)).
		Str("stop_reason", string(reply.StopReason)).
		Int("input_tokens", reply.Usage.InputTokens).
		Int("output_tokens", reply.Usage.OutputTokens).
		Msg("turn committed")

	if o.store != nil {
		if err := o.store.Save(*session); err != nil {
			log.Error().Err(err).Msg("snapshot not written")
			return reply.Text, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	return reply.Text, nil
}

func (o *Orchestrator) sampleFolders(settings Settings) (reference, draft string) {
	var wg conc.WaitGroup
	wg.Go(func() {
		reference = o.sampler.Sample(settings.ReferenceDir, settings.sampleOptions(LabelReference))
	})
	wg.Go(func() {
		draft = o.sampler.Sample(settings.DraftDir, settings.sampleOptions(LabelDraft))
	})
	wg.Wait()
	return reference, draft
}

func (o *Orchestrator) stream(ctx context.Context, settings Settings, history []Turn, prompt string, onEvent func(Event)) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	provider, err := o.connect(ctx, settings.APIKey, settings.Model)
	if err != nil {
		return Reply{}, err
	}

	req := Request{
		Model:        settings.Model,
		SystemPrompt: o.systemPrompt,
		History:      history,
		Prompt:       prompt,
	}
	if err := req.Validate(); err != nil {
		return Reply{}, err
	}

	stream, err := provider.Stream(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	defer stream.Close()

	// Drain the stream, forwarding events to handler if set.
	for {
		evt, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Reply{}, err
		}
		if onEvent != nil {
			onEvent(evt)
		}
	}

	return stream.Reply()
}
