// Package gemini implements [critic.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating the writer's turn
// history into Gemini contents. Streaming uses the SDK's iter.Seq2 iterator,
// wrapped into the pull-based [critic.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-2.5-pro"
	defaultMaxTokens = 65536
)
