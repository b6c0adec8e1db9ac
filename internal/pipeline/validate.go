package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/llmjson"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/search"
)

const strictIdentityPrompt = `Earlier research for the website %s appears to describe the wrong company. Research ONLY the company that operates %s itself. Do not report figures for parent companies, franchises, or similarly named businesses. Respond with the same JSON object shape:
{
  "company_name": "", "legal_name": "", "description": "",
  "headquarters": {"city": "", "state": "", "country": ""},
  "year_founded": "", "linkedin_url": "", "parent_company": "",
  "us_headquarters": false, "us_subsidiary": false,
  "urls": [],
  "revenue_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}],
  "employee_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}]
}`

// stageValidateEntity checks that the retrieved site content matches the
// company the identity pass described. On a mismatch it runs a second,
// stricter identity pass and re-retrieves content, merging new evidence
// with the prior set rather than discarding either.
func (e *Engine) stageValidateEntity(ctx context.Context, ec *Context) error {
	if ec.Identity == nil || len(ec.Content) == 0 {
		return nil
	}
	if entityNameAppears(ec.Identity.CompanyName, ec.Content) {
		return nil
	}

	ec.Result.Diagnostics.EntityMismatch = true
	ec.Result.Diagnostics.MismatchDetail = fmt.Sprintf(
		"retrieved pages never mention %q", ec.Identity.CompanyName)
	zap.L().Warn("pipeline: entity mismatch detected",
		zap.String("domain", ec.ResolvedDomain),
		zap.String("company", ec.Identity.CompanyName),
	)

	resp, err := e.search.ChatCompletion(ctx, search.ChatCompletionRequest{
		Messages: []search.Message{
			{Role: "user", Content: fmt.Sprintf(strictIdentityPrompt, ec.ResolvedDomain, ec.ResolvedDomain)},
		},
	})
	ec.Costs.AddSearchQuery()
	if err != nil {
		return eris.Wrap(err, "validate: strict identity pass")
	}

	var payload identityPayload
	if err := llmjson.Unmarshal(resp.Text(), &payload); err != nil {
		return eris.Wrap(err, "validate: parse strict identity")
	}

	prior := ec.Identity
	next := payload.IdentityResult
	// Merge: the stricter pass wins identity fields it filled in, while
	// evidence accumulates across both passes.
	if next.CompanyName == "" {
		next.CompanyName = prior.CompanyName
	}
	if next.LinkedInURL == "" {
		next.LinkedInURL = prior.LinkedInURL
	}
	if next.ParentCompany == "" {
		next.ParentCompany = prior.ParentCompany
	}
	if next.Headquarters == (model.Headquarters{}) {
		next.Headquarters = prior.Headquarters
	}
	next.RevenueEvidence = append(prior.RevenueEvidence,
		model.NormalizeEvidence(payload.RevenueEvidenceRaw, "strict_search")...)
	next.EmployeeEvidence = append(prior.EmployeeEvidence,
		model.NormalizeEvidence(payload.EmployeeEvidenceRaw, "strict_search")...)
	if len(next.URLs) == 0 {
		next.URLs = prior.URLs
	}
	ec.Identity = &next

	// Re-retrieve content for any new on-domain pages.
	fresh := selectURLs(next.URLs, ec.ResolvedDomain, maxSelectedURLs)
	var missing []string
	for _, u := range fresh {
		if _, ok := ec.Content[u]; !ok {
			missing = append(missing, u)
		}
	}
	if len(missing) > 0 {
		for u, content := range e.fetchPages(ctx, ec, missing) {
			ec.Content[u] = content
		}
	}
	return nil
}

// entityNameAppears reports whether a cleaned form of the company name
// shows up in any retrieved page.
func entityNameAppears(name string, content map[string]string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{", inc.", " inc.", " inc", " llc", " ltd", " corp.", " corp", " co.", " gmbh"} {
		needle = strings.TrimSuffix(needle, suffix)
	}
	if needle == "" {
		return true
	}
	for _, page := range content {
		if strings.Contains(strings.ToLower(page), needle) {
			return true
		}
	}
	return false
}

// employeeBandFromPage parses a headcount range from the text immediately
// before an "employees" mention, so date ranges elsewhere on the page
// cannot masquerade as a company size.
func employeeBandFromPage(content string) model.EmployeeBand {
	lower := strings.ToLower(content)
	idx := 0
	for {
		pos := strings.Index(lower[idx:], "employees")
		if pos < 0 {
			return model.EmployeeBandUnknown
		}
		pos += idx
		start := pos - 40
		if start < 0 {
			start = 0
		}
		if band := model.ParseEmployeeBand(lower[start:pos]); band != model.EmployeeBandUnknown {
			return band
		}
		idx = pos + len("employees")
	}
}

// stageValidateLinkedIn fetches the discovered LinkedIn company page,
// corroborates the employee-count hint, and shares the page content with
// the analysis stage. Runs after retrieval and entity validation because
// it may consume and extend the retrieved-content map.
func (e *Engine) stageValidateLinkedIn(ctx context.Context, ec *Context) error {
	if ec.Identity == nil || ec.Identity.LinkedInURL == "" {
		return nil
	}

	resp, err := e.reader.Read(ctx, ec.Identity.LinkedInURL)
	if err != nil {
		return eris.Wrap(err, "validate: fetch linkedin page")
	}
	ec.Costs.AddReaderTokens(resp.Data.Usage.Tokens)
	if strings.TrimSpace(resp.Data.Content) == "" {
		return nil
	}

	ec.Content[ec.Identity.LinkedInURL] = resp.Data.Content
	ec.Result.LinkedInURL = ec.Identity.LinkedInURL

	if band := employeeBandFromPage(resp.Data.Content); band != model.EmployeeBandUnknown {
		ec.EmployeeHint = band
		zap.L().Debug("pipeline: linkedin employee hint",
			zap.String("domain", ec.ResolvedDomain),
			zap.String("band", string(band)),
		)
	}
	return nil
}
