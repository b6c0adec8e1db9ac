package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/search"
)

// resolveBlacklist lists social, media, aggregator, directory, and job-board
// hosts that can never be the resolved answer for a company domain.
var resolveBlacklist = map[string]bool{
	"linkedin.com":     true,
	"facebook.com":     true,
	"twitter.com":      true,
	"x.com":            true,
	"instagram.com":    true,
	"youtube.com":      true,
	"tiktok.com":       true,
	"crunchbase.com":   true,
	"bloomberg.com":    true,
	"reuters.com":      true,
	"forbes.com":       true,
	"zoominfo.com":     true,
	"apollo.io":        true,
	"owler.com":        true,
	"pitchbook.com":    true,
	"dnb.com":          true,
	"manta.com":        true,
	"yelp.com":         true,
	"bbb.org":          true,
	"glassdoor.com":    true,
	"indeed.com":       true,
	"ziprecruiter.com": true,
	"wikipedia.org":    true,
	"yellowpages.com":  true,
	"mapquest.com":     true,
}

// resolvePromotionThreshold is the minimum recurrence for a hostname to
// override the user-submitted domain on frequency alone.
const resolvePromotionThreshold = 2

var hostnamePattern = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?([a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)+)`)

// rootDomain reduces a hostname to its registrable base, e.g.
// mail.acme-foods.co → acme-foods.co. Two-part country suffixes like
// .co.uk keep a third label.
func rootDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	second := parts[len(parts)-2]
	if len(parts) >= 3 && (second == "co" || second == "com" || second == "org" || second == "net" || second == "ac" || second == "gov") && len(parts[len(parts)-1]) == 2 {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// baseName is the first label of a root domain ("acme-foods" for
// acme-foods.com), used for fuzzy containment matching.
func baseName(root string) string {
	if idx := strings.Index(root, "."); idx > 0 {
		return root[:idx]
	}
	return root
}

// fuzzyContains reports whether one base name is a substring of the other
// covering at least half of the longer name's length.
func fuzzyContains(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if shorter == "" || !strings.Contains(longer, shorter) {
		return false
	}
	return len(shorter)*2 >= len(longer)
}

// extractHostnames pulls candidate hostnames out of free search text,
// dropping blacklisted hosts. Counts are per occurrence.
func extractHostnames(text string) map[string]int {
	counts := make(map[string]int)
	for _, m := range hostnamePattern.FindAllStringSubmatch(text, -1) {
		root := rootDomain(m[1])
		if root == "" || resolveBlacklist[root] {
			continue
		}
		// Skip bare TLD-ish fragments the regex can pick up from prose.
		if !strings.Contains(root, ".") {
			continue
		}
		counts[root]++
	}
	return counts
}

// stageResolve resolves the submitted domain, which is frequently derived
// from an email address and may be dead, parked, or wrong. It fails open:
// any request failure keeps the submitted domain with method failed.
func (e *Engine) stageResolve(ctx context.Context, ec *Context) error {
	submitted := rootDomain(strings.TrimSpace(strings.ToLower(ec.SubmittedDomain)))
	resolution := model.DomainResolution{
		Submitted: ec.SubmittedDomain,
		Resolved:  submitted,
		Method:    model.ResolveMethodFailed,
	}
	defer func() {
		ec.ResolvedDomain = resolution.Resolved
		ec.Result.Diagnostics.DomainResolution = resolution
		ec.Result.Domain = resolution.Resolved
	}()

	resp, err := e.search.ChatCompletion(ctx, search.ChatCompletionRequest{
		Messages: []search.Message{
			{Role: "user", Content: fmt.Sprintf("%q company website", submitted)},
		},
	})
	ec.Costs.AddSearchQuery()
	if err != nil {
		zap.L().Warn("pipeline: domain resolution search failed, keeping submitted domain",
			zap.String("domain", submitted),
			zap.Error(err),
		)
		return nil
	}

	counts := extractHostnames(resp.Text())
	if len(counts) == 0 {
		resolution.Method = model.ResolveMethodDirect
		return nil
	}

	// The submitted domain surviving the filter is confirmation enough.
	if counts[submitted] > 0 {
		resolution.Method = model.ResolveMethodDirect
		return nil
	}

	// Fuzzy containment: prefer the longer, more complete name.
	subBase := baseName(submitted)
	var fuzzyBest string
	for host := range counts {
		if fuzzyContains(subBase, baseName(host)) {
			if len(host) > len(fuzzyBest) {
				fuzzyBest = host
			}
		}
	}
	if fuzzyBest != "" {
		resolution.Resolved = fuzzyBest
		resolution.Changed = fuzzyBest != submitted
		resolution.Method = model.ResolveMethodSearch
		zap.L().Info("pipeline: resolved domain by fuzzy match",
			zap.String("submitted", submitted),
			zap.String("resolved", fuzzyBest),
		)
		return nil
	}

	// Frequency vote: a single occurrence is not strong enough evidence
	// to override the user-submitted domain.
	var top string
	var topCount int
	for host, n := range counts {
		if n > topCount || (n == topCount && host < top) {
			top, topCount = host, n
		}
	}
	if topCount >= resolvePromotionThreshold {
		resolution.Resolved = top
		resolution.Changed = true
		resolution.Method = model.ResolveMethodSearch
		zap.L().Info("pipeline: resolved domain by frequency",
			zap.String("submitted", submitted),
			zap.String("resolved", top),
			zap.Int("occurrences", topCount),
		)
		return nil
	}

	resolution.Method = model.ResolveMethodDirect
	return nil
}
