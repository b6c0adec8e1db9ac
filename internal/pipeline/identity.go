package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/llmjson"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
	"github.com/sells-group/enrich-cli/pkg/search"
)

const identityPromptTemplate = `Research the company operating the website %s.%s Respond with a JSON object:
{
  "company_name": "", "legal_name": "", "description": "",
  "headquarters": {"city": "", "state": "", "country": ""},
  "year_founded": "", "linkedin_url": "", "parent_company": "",
  "us_headquarters": false, "us_subsidiary": false,
  "urls": ["best pages on the company site for about/products/contact info"],
  "revenue_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}],
  "employee_evidence": [{"amount": "", "source": "", "year": "", "is_estimate": false, "scope": "operating_company|ultimate_parent"}]
}
Report evidence items separately per source. Tag figures that describe a parent organization with scope ultimate_parent. Leave unknown fields empty.`

// identityPayload tolerates the loose evidence shapes the search service
// returns: a list, a single object, or a bare scalar.
type identityPayload struct {
	IdentityResult
	RevenueEvidenceRaw  json.RawMessage `json:"revenue_evidence"`
	EmployeeEvidenceRaw json.RawMessage `json:"employee_evidence"`
}

// outlierSpread is the evidence disagreement ratio beyond which
// supplemental research is triggered.
const outlierSpread = 5.0

// stageIdentity runs the web-search identity pass. It seeds the company
// name, candidate URLs, and the initial evidence set. Critical: without
// an identity there is no usable record.
func (e *Engine) stageIdentity(ctx context.Context, ec *Context) error {
	hint := ""
	if ec.NameHint != "" {
		hint = fmt.Sprintf(" The company is believed to be named %q.", ec.NameHint)
	}

	resp, err := e.search.ChatCompletion(ctx, search.ChatCompletionRequest{
		Messages: []search.Message{
			{Role: "user", Content: fmt.Sprintf(identityPromptTemplate, ec.ResolvedDomain, hint)},
		},
	})
	ec.Costs.AddSearchQuery()
	if err != nil {
		return eris.Wrap(err, "identity: search request")
	}

	var payload identityPayload
	if err := llmjson.Unmarshal(resp.Text(), &payload); err != nil {
		return eris.Wrap(err, "identity: parse response")
	}
	if payload.CompanyName == "" && len(payload.URLs) == 0 {
		return eris.New("identity: response carried no usable identity")
	}

	id := payload.IdentityResult
	id.RevenueEvidence = model.NormalizeEvidence(payload.RevenueEvidenceRaw, "web_search")
	id.EmployeeEvidence = model.NormalizeEvidence(payload.EmployeeEvidenceRaw, "web_search")
	ec.Identity = &id

	// Flag outlier evidence so the supplemental-research branch fires.
	if reason := evidenceOutlierReason(id.RevenueEvidence); reason != "" {
		ec.ResearchNeeded = true
		ec.ResearchReason = reason
		zap.L().Info("pipeline: identity evidence flagged as outlier",
			zap.String("domain", ec.ResolvedDomain),
			zap.String("reason", reason),
		)
	}

	zap.L().Info("pipeline: identity pass complete",
		zap.String("domain", ec.ResolvedDomain),
		zap.String("company", id.CompanyName),
		zap.Int("urls", len(id.URLs)),
		zap.Int("revenue_evidence", len(id.RevenueEvidence)),
	)
	return nil
}

// evidenceOutlierReason reports why the evidence set looks unreliable, or
// "" when it looks fine. Disagreement beyond outlierSpread within the
// operating-company scope is the trigger.
func evidenceOutlierReason(evidence []model.Evidence) string {
	var amounts []float64
	for _, ev := range evidence {
		if ev.Scope == model.ScopeUltimateParent {
			continue
		}
		if usd, ok := reconcile.ParseAmount(ev.Amount); ok && usd > 0 {
			amounts = append(amounts, usd)
		}
	}
	if len(amounts) < 2 {
		return ""
	}
	min, max := amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
	}
	if min > 0 && max/min > outlierSpread {
		return fmt.Sprintf("revenue evidence disagrees by %.1fx", max/min)
	}
	return ""
}
