package critic

// Usage tracks token consumption as reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
