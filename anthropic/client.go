package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/critic"
)

// Interface compliance check.
var _ critic.Provider = (*Client)(nil)

// Client implements [critic.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the model used when a request names none.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request to the Messages API.
func (c *Client) Stream(ctx context.Context, req critic.Request) (critic.Stream, error) {
	body, err := c.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

// Generate streams the request to completion and returns the reply.
func (c *Client) Generate(ctx context.Context, req critic.Request) (critic.Reply, error) {
	s, err := c.Stream(ctx, req)
	if err != nil {
		return critic.Reply{}, err
	}
	defer s.Close()
	for {
		_, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return critic.Reply{}, err
		}
	}
	return s.Reply()
}

func (c *Client) buildRequestBody(req critic.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	apiReq := apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Stream:      true,
		System:      convertSystem(req.SystemPrompt),
		Messages:    convertMessages(req.History, req.Prompt),
		Temperature: req.Temperature,
	}
	injectCacheMarkers(&apiReq)

	return json.Marshal(apiReq)
}

// convertSystem returns nil when the prompt is empty.
func convertSystem(prompt string) []apiTextBlock {
	if prompt == "" {
		return nil
	}
	return []apiTextBlock{{Type: "text", Text: prompt}}
}

// injectCacheMarkers caches the message window and the system prompt. Every
// turn resends the sampled folders, so the prefix is usually stable.
func injectCacheMarkers(req *apiRequest) {
	cc := &apiCacheControl{Type: "ephemeral"}
	req.CacheControl = cc
	if len(req.System) > 0 {
		req.System[len(req.System)-1].CacheControl = cc
	}
}

// convertMessages maps turns to API messages. The "model" role becomes
// "assistant"; the new prompt is appended as the final user message.
func convertMessages(history []critic.Turn, prompt string) []apiMessage {
	result := make([]apiMessage, 0, len(history)+1)
	for _, t := range history {
		role := "user"
		if t.Role == critic.TurnRoleModel {
			role = "assistant"
		}
		result = append(result, apiMessage{
			Role:    role,
			Content: []apiTextBlock{{Type: "text", Text: t.Text()}},
		})
	}
	return append(result, apiMessage{
		Role:    "user",
		Content: []apiTextBlock{{Type: "text", Text: prompt}},
	})
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
