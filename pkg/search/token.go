package search

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/cache"
)

// TokenSource supplies the bearer credential for API calls. Invalidate is
// called after a 401-equivalent response so the next Token call fetches a
// fresh credential.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// StaticToken is a TokenSource backed by a fixed API key. Invalidate is a
// no-op; a rejected static key stays rejected.
type StaticToken string

// Token returns the fixed key.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", eris.New("search: no API key configured")
	}
	return string(s), nil
}

// Invalidate does nothing for a static key.
func (StaticToken) Invalidate() {}

// CachedTokenSource caches a fetched credential with a TTL so repeated
// calls within one enrichment do not re-authenticate. It is injectable so
// tests can substitute a clean instance.
type CachedTokenSource struct {
	fetch func(ctx context.Context) (string, error)
	cache *cache.TTL[string]
}

// NewCachedTokenSource creates a token source that calls fetch when the
// cache is empty or expired.
func NewCachedTokenSource(ttl time.Duration, fetch func(ctx context.Context) (string, error)) *CachedTokenSource {
	return &CachedTokenSource{
		fetch: fetch,
		cache: cache.NewTTL[string](ttl),
	}
}

// Token returns the cached credential, fetching a fresh one if needed.
func (s *CachedTokenSource) Token(ctx context.Context) (string, error) {
	return s.cache.GetOrFill(func() (string, error) {
		tok, err := s.fetch(ctx)
		if err != nil {
			return "", eris.Wrap(err, "search: fetch credential")
		}
		if tok == "" {
			return "", eris.New("search: credential fetch returned empty token")
		}
		return tok, nil
	})
}

// Invalidate drops the cached credential.
func (s *CachedTokenSource) Invalidate() {
	s.cache.Invalidate()
}
