package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/enrich-cli/internal/llmjson"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/search"
)

const linkedInDiscoveryPrompt = `Find the official LinkedIn company page for %s (website %s). Respond with a JSON object: {"linkedin_url": "", "employee_range": "e.g. 201-500 employees"}. Leave fields empty if not found.`

const researchPromptTemplate = `The reported annual revenue figures for %s (website %s) conflict. Research authoritative sources (filings, press releases, industry databases) and respond with a JSON object:
{"revenue_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}]}
Report each source as its own item.`

// stageLookups is the first fan-out point: LinkedIn-URL discovery (only
// when the identity pass found none) and supplemental revenue research
// (only when identity evidence was flagged as an outlier) run together.
// A failure in one branch never cancels the sibling; both are optional.
func (e *Engine) stageLookups(ctx context.Context, ec *Context) error {
	needLinkedIn := ec.Identity != nil && ec.Identity.LinkedInURL == ""
	if !needLinkedIn && !ec.ResearchNeeded {
		return nil
	}

	var g errgroup.Group

	if needLinkedIn {
		g.Go(func() error {
			if err := e.discoverLinkedIn(ctx, ec); err != nil {
				zap.L().Warn("pipeline: linkedin discovery failed",
					zap.String("domain", ec.ResolvedDomain),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	if ec.ResearchNeeded {
		ec.Result.Diagnostics.ResearchTriggered = true
		ec.Result.Diagnostics.ResearchReason = ec.ResearchReason
		g.Go(func() error {
			if err := e.supplementalResearch(ctx, ec); err != nil {
				zap.L().Warn("pipeline: supplemental research failed",
					zap.String("domain", ec.ResolvedDomain),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Engine) discoverLinkedIn(ctx context.Context, ec *Context) error {
	resp, err := e.search.ChatCompletion(ctx, search.ChatCompletionRequest{
		Messages: []search.Message{
			{Role: "user", Content: fmt.Sprintf(linkedInDiscoveryPrompt, ec.Identity.CompanyName, ec.ResolvedDomain)},
		},
	})
	ec.Costs.AddSearchQuery()
	if err != nil {
		return err
	}

	var out struct {
		LinkedInURL   string `json:"linkedin_url"`
		EmployeeRange string `json:"employee_range"`
	}
	if err := llmjson.Unmarshal(resp.Text(), &out); err != nil {
		return err
	}

	if strings.Contains(out.LinkedInURL, "linkedin.com/company/") {
		ec.Identity.LinkedInURL = out.LinkedInURL
	}
	if band := model.ParseEmployeeBand(out.EmployeeRange); band != model.EmployeeBandUnknown {
		ec.EmployeeHint = band
	}
	return nil
}

func (e *Engine) supplementalResearch(ctx context.Context, ec *Context) error {
	resp, err := e.search.ChatCompletion(ctx, search.ChatCompletionRequest{
		Messages: []search.Message{
			{Role: "user", Content: fmt.Sprintf(researchPromptTemplate, ec.Identity.CompanyName, ec.ResolvedDomain)},
		},
	})
	ec.Costs.AddSearchQuery()
	if err != nil {
		return err
	}

	var out struct {
		RevenueEvidenceRaw json.RawMessage `json:"revenue_evidence"`
	}
	if err := llmjson.Unmarshal(resp.Text(), &out); err != nil {
		return err
	}

	ec.ResearchEvidence = model.NormalizeEvidence(out.RevenueEvidenceRaw, "supplemental_research")
	zap.L().Info("pipeline: supplemental research complete",
		zap.String("domain", ec.ResolvedDomain),
		zap.Int("evidence", len(ec.ResearchEvidence)),
	)
	return nil
}
