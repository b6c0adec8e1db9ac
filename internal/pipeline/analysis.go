package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/llmjson"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
)

const analysisSystemPrompt = `You extract company facts from website content. Given pages retrieved from a company's website plus prior research notes, respond with a valid JSON object:
{
  "company_name": "", "legal_name": "", "description": "2-3 sentence summary of what the company does",
  "headquarters": {"city": "", "state": "", "country": ""},
  "year_founded": "", "parent_company": "",
  "us_headquarters": false, "us_subsidiary": false,
  "location_reasoning": "where the headquarters facts came from",
  "revenue_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}],
  "employee_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}]
}
Only report figures the content supports, one item per source, and tag parent-organization figures with scope ultimate_parent. Leave unknown fields empty.`

// analysisPageLimit caps how much of each page goes into the prompt.
const analysisPageLimit = 8000

type analysisPayload struct {
	AnalysisResult
	RevenueEvidenceRaw  json.RawMessage `json:"revenue_evidence"`
	EmployeeEvidenceRaw json.RawMessage `json:"employee_evidence"`
}

// stageAnalysis is the content-analysis pass: the only stage allowed to
// fail the pipeline after identity, because a result without it is not
// useful. It populates the result's identity fields, evidence, industry
// codes, and the paired quality entries.
func (e *Engine) stageAnalysis(ctx context.Context, ec *Context) error {
	if len(ec.Content) == 0 && ec.Identity == nil {
		return eris.New("analysis: no content and no identity to analyze")
	}

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.analysisModel,
		MaxTokens: 2048,
		System:    anthropic.BuildCachedSystemBlocks(analysisSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: buildAnalysisContext(ec)},
		},
	})
	if err != nil {
		return eris.Wrap(err, "analysis: create message")
	}
	ec.Costs.AddClaude(e.analysisModel,
		int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens),
		int(resp.Usage.CacheCreationInputTokens), int(resp.Usage.CacheReadInputTokens))
	resp.Usage.LogCost(e.analysisModel, "analysis")

	var payload analysisPayload
	if err := llmjson.Unmarshal(resp.Text(), &payload); err != nil {
		return eris.Wrap(err, "analysis: parse response")
	}

	analysis := payload.AnalysisResult
	analysis.RevenueEvidence = model.NormalizeEvidence(payload.RevenueEvidenceRaw, "site_content")
	analysis.EmployeeEvidence = model.NormalizeEvidence(payload.EmployeeEvidenceRaw, "site_content")
	ec.Analysis = &analysis

	applyAnalysis(ec, &analysis)

	// Industry classification rides on the analysis description.
	if err := e.classifyIndustry(ctx, ec); err != nil {
		zap.L().Warn("pipeline: industry classification failed",
			zap.String("domain", ec.ResolvedDomain),
			zap.Error(err),
		)
		ec.Result.Quality.Set(model.QualityIndustry, model.ConfidenceLow, "classification unavailable")
	}
	return nil
}

// applyAnalysis writes the analysis pass's findings onto the result,
// falling back to identity-pass values for fields the content lacked.
func applyAnalysis(ec *Context, a *AnalysisResult) {
	r := ec.Result
	id := ec.Identity
	if id == nil {
		id = &IdentityResult{}
	}

	r.CompanyName = firstNonEmpty(a.CompanyName, id.CompanyName)
	r.LegalName = firstNonEmpty(a.LegalName, id.LegalName)
	r.Description = firstNonEmpty(a.Description, id.Description)
	r.YearFounded = firstNonEmpty(a.YearFounded, id.YearFounded)
	r.ParentCompany = firstNonEmpty(a.ParentCompany, id.ParentCompany)
	r.USHeadquarters = a.USHeadquarters || id.USHeadquarters
	r.USSubsidiary = a.USSubsidiary || id.USSubsidiary
	if r.LinkedInURL == "" {
		r.LinkedInURL = id.LinkedInURL
	}

	if a.Headquarters != (model.Headquarters{}) {
		r.Headquarters = a.Headquarters
		r.Quality.Set(model.QualityLocation, model.ConfidenceHigh,
			firstNonEmpty(a.LocationReason, "headquarters stated on retrieved site content"))
	} else if id.Headquarters != (model.Headquarters{}) {
		r.Headquarters = id.Headquarters
		r.Quality.Set(model.QualityLocation, model.ConfidenceMedium, "headquarters from web search only")
	} else {
		r.Quality.Set(model.QualityLocation, model.ConfidenceLow, "no headquarters found")
	}
}

func (e *Engine) classifyIndustry(ctx context.Context, ec *Context) error {
	description := ec.Result.Description
	if description == "" {
		return eris.New("analysis: no business description to classify")
	}

	res, err := e.classifier.Classify(ctx, description)
	if err != nil {
		return err
	}
	ec.Costs.AddClaude(e.rankModel,
		int(res.Usage.InputTokens), int(res.Usage.OutputTokens),
		int(res.Usage.CacheCreationInputTokens), int(res.Usage.CacheReadInputTokens))

	ec.Result.IndustryCodes = res.Codes
	if len(res.Codes) == 0 {
		ec.Result.Quality.Set(model.QualityIndustry, model.ConfidenceLow, "no approved code matched")
		return nil
	}
	reason := firstNonEmpty(res.Reasoning, "classified from business description")
	if len(res.RulesFired) > 0 {
		reason = fmt.Sprintf("%s (rules fired: %s)", reason, strings.Join(res.RulesFired, ", "))
	}
	ec.Result.Quality.Set(model.QualityIndustry, model.ConfidenceHigh, reason)
	return nil
}

// buildAnalysisContext assembles the user message: prior research notes
// first, then retrieved pages in a stable order.
func buildAnalysisContext(ec *Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company website: %s\n", ec.ResolvedDomain)
	if ec.Identity != nil {
		fmt.Fprintf(&b, "Prior research: name=%q legal=%q hq=%s parent=%q\n",
			ec.Identity.CompanyName, ec.Identity.LegalName,
			formatHQ(ec.Identity.Headquarters), ec.Identity.ParentCompany)
	}

	urls := make([]string, 0, len(ec.Content))
	for u := range ec.Content {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		content := ec.Content[u]
		if len(content) > analysisPageLimit {
			content = content[:analysisPageLimit]
		}
		fmt.Fprintf(&b, "\n--- PAGE %s ---\n%s\n", u, content)
	}
	return b.String()
}

func formatHQ(hq model.Headquarters) string {
	parts := []string{}
	for _, p := range []string{hq.City, hq.State, hq.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
