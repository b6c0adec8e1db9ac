package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// retrieveConcurrency bounds in-flight fetches to respect the
	// reader service's rate limits.
	retrieveConcurrency = 4
	retrieveTimeout     = 45 * time.Second
)

// stageRetrieve fetches the selected pages concurrently. Individual fetch
// failures are skipped; the stage only reports what it gathered. When URL
// selection failed, it falls back to the identity pass's raw URL list.
func (e *Engine) stageRetrieve(ctx context.Context, ec *Context) error {
	urls := ec.SelectedURLs
	if len(urls) == 0 && ec.Identity != nil {
		urls = ec.Identity.URLs
		if len(urls) > maxSelectedURLs {
			urls = urls[:maxSelectedURLs]
		}
		zap.L().Debug("pipeline: retrieval falling back to raw url list",
			zap.Int("urls", len(urls)),
		)
	}
	if len(urls) == 0 {
		return nil
	}

	fetched := e.fetchPages(ctx, ec, urls)
	for u, content := range fetched {
		ec.Content[u] = content
	}

	zap.L().Info("pipeline: content retrieval complete",
		zap.String("domain", ec.ResolvedDomain),
		zap.Int("requested", len(urls)),
		zap.Int("fetched", len(fetched)),
	)
	return nil
}

// fetchPages retrieves pages with bounded concurrency and a per-call
// timeout, returning whatever succeeded keyed by URL.
func (e *Engine) fetchPages(ctx context.Context, ec *Context, urls []string) map[string]string {
	var mu sync.Mutex
	out := make(map[string]string)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(retrieveConcurrency)
	for _, u := range urls {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, retrieveTimeout)
			defer cancel()

			resp, err := e.reader.Read(callCtx, u)
			if err != nil {
				zap.L().Warn("pipeline: page fetch failed",
					zap.String("url", u),
					zap.Error(err),
				)
				return nil
			}
			ec.Costs.AddReaderTokens(resp.Data.Usage.Tokens)
			if strings.TrimSpace(resp.Data.Content) == "" {
				return nil
			}
			mu.Lock()
			out[u] = resp.Data.Content
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
