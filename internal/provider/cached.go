package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// ResponseCache stores provider responses keyed by request.
type ResponseCache interface {
	Get(key string) (string, bool, error)
	Set(key, value string, ttl time.Duration) error
}

// Cached wraps p so that successful responses are served from cache on
// repeat requests. Failures are never cached. Cache errors are logged and
// otherwise ignored.
func Cached(p Provider, cache ResponseCache, ttl time.Duration) Provider {
	return &cachedProvider{
		Provider: p,
		cache:    cache,
		ttl:      ttl,
		logger:   slog.Default().With("component", "provider-cache"),
	}
}

type cachedProvider struct {
	Provider
	cache  ResponseCache
	ttl    time.Duration
	logger *slog.Logger
}

func (c *cachedProvider) Query(ctx context.Context, prompt, systemPrompt string) (string, error) {
	key := requestKey(c.Kind(), c.Model(), systemPrompt, prompt)

	if cached, ok, err := c.cache.Get(key); err != nil {
		c.logger.Warn("cache lookup failed", "err", err)
	} else if ok {
		c.logger.Debug("cache hit", "model", c.Model())
		return cached, nil
	}

	response, err := c.Provider.Query(ctx, prompt, systemPrompt)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(key, response, c.ttl); err != nil {
		c.logger.Warn("cache store failed", "err", err)
	}
	return response, nil
}

func requestKey(kind Kind, model, systemPrompt, prompt string) string {
	h := sha256.New()
	for _, part := range []string{kind.String(), model, systemPrompt, prompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
