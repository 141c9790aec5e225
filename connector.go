package critic

import (
	"context"
	"sync"
)

// CachedConnector memoizes the last Provider built by connect. A new one is
// built only when the API key or model changes, so entering a fresh key with
// /key takes effect on the next turn.
func CachedConnector(connect Connector) Connector {
	var (
		mu       sync.Mutex
		provider Provider
		key      string
		model    string
	)
	return func(ctx context.Context, apiKey, m string) (Provider, error) {
		mu.Lock()
		defer mu.Unlock()
		if provider != nil && apiKey == key && m == model {
			return provider, nil
		}
		p, err := connect(ctx, apiKey, m)
		if err != nil {
			return nil, err
		}
		provider, key, model = p, apiKey, m
		return provider, nil
	}
}
