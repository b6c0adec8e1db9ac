package model

import (
	"time"

	"github.com/sells-group/enrich-cli/internal/cost"
)

// ResolveMethod records how the submitted domain was resolved.
type ResolveMethod string

const (
	ResolveMethodSearch ResolveMethod = "search"
	ResolveMethodDirect ResolveMethod = "direct"
	ResolveMethodFailed ResolveMethod = "failed"
)

// DomainResolution is the provenance of the resolved domain.
type DomainResolution struct {
	Submitted string        `json:"submitted"`
	Resolved  string        `json:"resolved"`
	Changed   bool          `json:"changed"`
	Method    ResolveMethod `json:"method"`
}

// Headquarters is a company's primary location.
type Headquarters struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// CandidateIndustryCode is an industry code drawn from the approved
// taxonomy. Description is copied verbatim from the approved table and
// never invented.
type CandidateIndustryCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Diagnostics records which supplemental work fired during a run and why,
// plus the domain-resolution trail. It is always populated, even for runs
// that produced only a partial record.
type Diagnostics struct {
	EvidenceSources   []string         `json:"evidence_sources,omitempty"`
	ResearchTriggered bool             `json:"research_triggered"`
	ResearchReason    string           `json:"research_reason,omitempty"`
	EntityMismatch    bool             `json:"entity_mismatch"`
	MismatchDetail    string           `json:"mismatch_detail,omitempty"`
	Adjustments       []string         `json:"adjustments,omitempty"`
	DomainResolution  DomainResolution `json:"domain_resolution"`
}

// EnrichmentResult is the externally visible output of one enrichment run.
// It is created empty, populated by the content-analysis stage, mutated in
// place by the estimation, sanity-check, and inheritance stages, then frozen
// at final assembly. Only the fully assembled result is persisted.
type EnrichmentResult struct {
	RunID           string                  `json:"run_id"`
	Domain          string                  `json:"domain"`
	CompanyName     string                  `json:"company_name,omitempty"`
	LegalName       string                  `json:"legal_name,omitempty"`
	Description     string                  `json:"description,omitempty"`
	Headquarters    Headquarters            `json:"headquarters"`
	YearFounded     string                  `json:"year_founded,omitempty"`
	LinkedInURL     string                  `json:"linkedin_url,omitempty"`
	ParentCompany   string                  `json:"parent_company,omitempty"`
	USHeadquarters  bool                    `json:"us_headquarters"`
	USSubsidiary    bool                    `json:"us_subsidiary"`
	EmployeeBand    EmployeeBand            `json:"employee_band,omitempty"`
	RevenueBand     RevenueBand             `json:"revenue_band,omitempty"`
	IndustryCodes   []CandidateIndustryCode `json:"industry_codes,omitempty"`
	ICPMatch        bool                    `json:"icp_match"`
	Quality         QualityMetrics          `json:"quality"`
	Diagnostics     Diagnostics             `json:"diagnostics"`
	Cost            cost.Report             `json:"cost"`
	StageTimings    []cost.StageTiming      `json:"stage_timings,omitempty"`
	CompletedAt     time.Time               `json:"completed_at"`
}

// NewEnrichmentResult creates an empty result for a run.
func NewEnrichmentResult(runID, submittedDomain string) *EnrichmentResult {
	return &EnrichmentResult{
		RunID:   runID,
		Domain:  submittedDomain,
		Quality: make(QualityMetrics),
		Diagnostics: Diagnostics{
			DomainResolution: DomainResolution{
				Submitted: submittedDomain,
				Resolved:  submittedDomain,
				Method:    ResolveMethodFailed,
			},
		},
	}
}

// Profile is the stored company record keyed by normalized domain.
type Profile struct {
	Domain        string                  `json:"domain"`
	CompanyName   string                  `json:"company_name,omitempty"`
	LegalName     string                  `json:"legal_name,omitempty"`
	Headquarters  Headquarters            `json:"headquarters"`
	EmployeeBand  EmployeeBand            `json:"employee_band,omitempty"`
	RevenueBand   RevenueBand             `json:"revenue_band,omitempty"`
	IndustryCodes []CandidateIndustryCode `json:"industry_codes,omitempty"`
	ICPMatch      bool                    `json:"icp_match"`
	Quality       QualityMetrics          `json:"quality,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ToProfile projects the result onto the stored record shape.
func (r *EnrichmentResult) ToProfile() *Profile {
	return &Profile{
		Domain:        r.Domain,
		CompanyName:   r.CompanyName,
		LegalName:     r.LegalName,
		Headquarters:  r.Headquarters,
		EmployeeBand:  r.EmployeeBand,
		RevenueBand:   r.RevenueBand,
		IndustryCodes: r.IndustryCodes,
		ICPMatch:      r.ICPMatch,
		Quality:       r.Quality,
		UpdatedAt:     r.CompletedAt,
	}
}

// RunStatus is the terminal state of an enrichment run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the persisted diagnostic record of one enrichment run.
type Run struct {
	ID           string             `json:"id"`
	Domain       string             `json:"domain"`
	Status       RunStatus          `json:"status"`
	Error        string             `json:"error,omitempty"`
	Diagnostics  Diagnostics        `json:"diagnostics"`
	Cost         cost.Report        `json:"cost"`
	StageTimings []cost.StageTiming `json:"stage_timings,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
