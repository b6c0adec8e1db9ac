// Package pipeline orchestrates the enrichment stages that turn a domain
// name into a confidence-scored company profile.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/sells-group/enrich-cli/internal/cost"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/progress"
)

// IdentityResult is the parsed output of a web-search identity pass.
type IdentityResult struct {
	CompanyName      string             `json:"company_name"`
	LegalName        string             `json:"legal_name"`
	Description      string             `json:"description"`
	Headquarters     model.Headquarters `json:"headquarters"`
	YearFounded      string             `json:"year_founded"`
	LinkedInURL      string             `json:"linkedin_url"`
	ParentCompany    string             `json:"parent_company"`
	USHeadquarters   bool               `json:"us_headquarters"`
	USSubsidiary     bool               `json:"us_subsidiary"`
	URLs             []string           `json:"urls"`
	RevenueEvidence  []model.Evidence   `json:"-"`
	EmployeeEvidence []model.Evidence   `json:"-"`
}

// AnalysisResult is the parsed output of the content-analysis pass.
type AnalysisResult struct {
	CompanyName      string             `json:"company_name"`
	LegalName        string             `json:"legal_name"`
	Description      string             `json:"description"`
	Headquarters     model.Headquarters `json:"headquarters"`
	YearFounded      string             `json:"year_founded"`
	ParentCompany    string             `json:"parent_company"`
	USHeadquarters   bool               `json:"us_headquarters"`
	USSubsidiary     bool               `json:"us_subsidiary"`
	RevenueEvidence  []model.Evidence   `json:"-"`
	EmployeeEvidence []model.Evidence   `json:"-"`
	LocationReason   string             `json:"location_reasoning"`
}

// Context is the unit of work for one enrichment request. It is owned by
// exactly one in-flight request and never shared across requests.
//
// Fields split into immutable inputs fixed at creation and accumulators
// written by exactly one stage each, read by stages downstream of it.
type Context struct {
	// Immutable inputs.
	RunID           string
	SubmittedDomain string
	NameHint        string

	// Accumulators. The writing stage is noted for each.
	ResolvedDomain   string              // resolve
	Identity         *IdentityResult     // identity
	ResearchNeeded   bool                // identity
	ResearchReason   string              // identity
	EmployeeHint     model.EmployeeBand  // lookups (LinkedIn discovery)
	ResearchEvidence []model.Evidence    // lookups (supplemental research)
	SelectedURLs     []string            // urlselect
	Content          map[string]string   // retrieve; validate may add entries
	Analysis         *AnalysisResult     // analysis

	Result  *model.EnrichmentResult
	Costs   *cost.Accumulator
	Timings *cost.TimingTracker

	Progress progress.Sink
}

// NewContext creates a fresh Context for one submitted domain. calc may
// be nil to price the run at the default rates.
func NewContext(submittedDomain, nameHint string, sink progress.Sink, calc *cost.Calculator) *Context {
	runID := uuid.New().String()
	return &Context{
		RunID:           runID,
		SubmittedDomain: submittedDomain,
		NameHint:        nameHint,
		ResolvedDomain:  submittedDomain,
		Content:         make(map[string]string),
		Result:          model.NewEnrichmentResult(runID, submittedDomain),
		Costs:           cost.NewAccumulator(calc),
		Timings:         cost.NewTimingTracker(),
		Progress:        sink,
	}
}
