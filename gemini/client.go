package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/critic"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ critic.Provider = (*Client)(nil)

// Client implements [critic.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-pro.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [critic.Stream] that emits text and thinking deltas.
func (c *Client) Stream(ctx context.Context, req critic.Request) (critic.Stream, error) {
	iter := c.client.Models.GenerateContentStream(ctx, c.modelFor(req), Contents(req), buildConfig(req))
	return NewStreamFromIter(ctx, iter), nil
}

// Generate sends a single non-streaming request.
func (c *Client) Generate(ctx context.Context, req critic.Request) (critic.Reply, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelFor(req), Contents(req), buildConfig(req))
	if err != nil {
		return critic.Reply{}, fmt.Errorf("gemini: %w", err)
	}
	return ReplyFromResponse(resp)
}

func (c *Client) modelFor(req critic.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func buildConfig(req critic.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// Contents converts the request history and the new prompt to genai
// contents. Turn roles already use Gemini's vocabulary.
func Contents(req critic.Request) []*genai.Content {
	result := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		parts := make([]*genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, &genai.Part{Text: p})
		}
		result = append(result, &genai.Content{Role: t.Role, Parts: parts})
	}
	return append(result, genai.NewContentFromText(req.Prompt, genai.RoleUser))
}

// ReplyFromResponse assembles a reply from a complete response.
func ReplyFromResponse(resp *genai.GenerateContentResponse) (critic.Reply, error) {
	if resp == nil {
		return critic.Reply{}, fmt.Errorf("gemini: empty response")
	}
	if len(resp.Candidates) == 0 && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return critic.Reply{}, fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	reply := critic.Reply{StopReason: critic.StopEndTurn, RawStopReason: "end_turn"}
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p != nil && !p.Thought {
					reply.Text += p.Text
				}
			}
		}
		if cand.FinishReason != "" {
			reply.StopReason = mapFinishReason(cand.FinishReason)
			reply.RawStopReason = string(cand.FinishReason)
		}
	}
	reply.Usage = convertUsage(resp.UsageMetadata)
	if reply.StopReason == critic.StopSafety && reply.Text == "" {
		return reply, fmt.Errorf("gemini: response blocked: %s", reply.RawStopReason)
	}
	return reply, nil
}

func mapFinishReason(r genai.FinishReason) critic.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return critic.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return critic.StopLength
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return critic.StopSafety
	default:
		return critic.StopUnknown
	}
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) critic.Usage {
	if u == nil {
		return critic.Usage{}
	}
	return critic.Usage{
		InputTokens:  int(u.PromptTokenCount),
		OutputTokens: int(u.CandidatesTokenCount),
	}
}
