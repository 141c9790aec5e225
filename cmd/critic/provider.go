package main

import (
	"context"
	"strings"

	"github.com/fwojciec/critic"
	"github.com/fwojciec/critic/anthropic"
	"github.com/fwojciec/critic/gemini"
)

const (
	providerGemini    = "gemini"
	providerAnthropic = "anthropic"
)

// providerFor infers the provider from the model id.
func providerFor(model string) string {
	if strings.HasPrefix(model, "claude-") {
		return providerAnthropic
	}
	return providerGemini
}

// connect builds a provider client for model. It satisfies
// [critic.Connector]; main wraps it with [critic.CachedConnector].
func connect(ctx context.Context, apiKey, model string) (critic.Provider, error) {
	switch providerFor(model) {
	case providerAnthropic:
		return anthropic.New(apiKey, anthropic.WithModel(model)), nil
	default:
		client, err := gemini.New(ctx, apiKey, gemini.WithModel(model))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// apiKeyFromEnv picks the key variable matching the model's provider and
// falls back to the other one.
func apiKeyFromEnv(model string, getenv func(string) string) string {
	primary, secondary := "GEMINI_API_KEY", "ANTHROPIC_API_KEY"
	if providerFor(model) == providerAnthropic {
		primary, secondary = secondary, primary
	}
	if k := getenv(primary); k != "" {
		return k
	}
	return getenv(secondary)
}
