package pipeline

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxSelectedURLs caps how many pages the retrieval stage fetches per run.
const maxSelectedURLs = 6

// urlTiers rank page kinds by how much identity signal they usually carry.
var urlTiers = []struct {
	tier     int
	segments []string
}{
	{1, []string{"about", "about-us", "aboutus", "who-we-are", "our-story", "company"}},
	{2, []string{"products", "services", "solutions", "what-we-do", "capabilities"}},
	{3, []string{"contact", "contact-us", "locations", "team", "leadership"}},
	{4, []string{"news", "press", "investors", "careers"}},
}

// urlTier assigns a tier to a URL: 0 for the homepage, then by first path
// segment, 5 for anything unrecognized.
func urlTier(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 5
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return 0
	}
	if idx := strings.Index(path, "/"); idx > 0 {
		path = path[:idx]
	}
	path = strings.ToLower(path)
	for _, t := range urlTiers {
		for _, seg := range t.segments {
			if path == seg {
				return t.tier
			}
		}
	}
	return 5
}

// selectURLs keeps candidate URLs on the resolved domain, ordered by tier,
// capped at max. Order within a tier follows the input list.
func selectURLs(candidates []string, domain string, max int) []string {
	type ranked struct {
		url  string
		tier int
		pos  int
	}
	var keep []ranked
	seen := make(map[string]bool)
	for i, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if rootDomain(u.Host) != domain {
			continue
		}
		seen[raw] = true
		keep = append(keep, ranked{url: raw, tier: urlTier(raw), pos: i})
	}

	sort.SliceStable(keep, func(i, j int) bool {
		if keep[i].tier != keep[j].tier {
			return keep[i].tier < keep[j].tier
		}
		return keep[i].pos < keep[j].pos
	})

	if len(keep) > max {
		keep = keep[:max]
	}
	out := make([]string, len(keep))
	for i, r := range keep {
		out[i] = r.url
	}
	return out
}

// stageURLSelect orders the identity pass's candidate URLs into fetch
// priority. Optional: on failure the retrieval stage falls back to the
// raw candidate list.
func (e *Engine) stageURLSelect(_ context.Context, ec *Context) error {
	if ec.Identity == nil || len(ec.Identity.URLs) == 0 {
		return eris.New("urlselect: no candidate urls")
	}

	selected := selectURLs(ec.Identity.URLs, ec.ResolvedDomain, maxSelectedURLs)
	if len(selected) == 0 {
		return eris.Errorf("urlselect: no candidates on domain %s", ec.ResolvedDomain)
	}

	ec.SelectedURLs = selected
	zap.L().Debug("pipeline: selected urls",
		zap.String("domain", ec.ResolvedDomain),
		zap.Strings("urls", selected),
	)
	return nil
}
