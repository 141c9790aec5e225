package critic

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Style-guide sampling limits.
const (
	StyleSampleFiles = 5
	StyleSampleCap   = 3000
)

// Extractor distills a style guide from the reference folder with one
// non-streaming generation.
type Extractor struct {
	connect Connector
	sampler Sampler
	logger  zerolog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(connect Connector, sampler Sampler, logger zerolog.Logger) *Extractor {
	return &Extractor{connect: connect, sampler: sampler, logger: logger}
}

// Extract samples up to [StyleSampleFiles] reference files, [StyleSampleCap]
// characters each, and returns the model's analysis. The caller decides
// whether to overwrite the session's style guide with it.
func (e *Extractor) Extract(ctx context.Context, settings Settings) (string, error) {
	if settings.APIKey == "" {
		return "", ErrMissingCredential
	}

	excerpts := e.sampler.Sample(settings.ReferenceDir, SampleOptions{
		Label:      LabelReference,
		MaxChars:   -1,
		PerFileCap: StyleSampleCap,
		MaxFiles:   StyleSampleFiles,
		Mode:       ModeSample,
		Recursive:  settings.Recursive,
	})
	if strings.TrimSpace(excerpts) == "" {
		return "", ErrNoReferences
	}

	provider, err := e.connect(ctx, settings.APIKey, settings.Model)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := provider.Generate(ctx, Request{
		Model:  settings.Model,
		Prompt: BuildStyleGuidePrompt(excerpts),
	})
	if err != nil {
		e.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("style guide extraction failed")
		return "", err
	}
	e.logger.Info().
		Dur("duration", time.Since(start)).
		Int("guide_chars", len([]rune(reply.Text))).
		Msg("style guide extracted")
	return reply.Text, nil
}
