// Package icp decides whether an enriched company matches the ideal
// customer profile. The calculator is a pure function of its inputs and is
// recomputed every time any input changes; verdicts are never cached.
package icp

import (
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

// Criteria is the fixed target-market definition the verdict is computed
// against.
type Criteria struct {
	// TargetCodes is the set of industry codes considered in-profile.
	TargetCodes map[string]bool
	// TargetCountries lists headquarters countries considered in-region.
	TargetCountries []string
	// RevenueThreshold is the minimum revenue band (inclusive).
	RevenueThreshold model.RevenueBand
}

// Inputs are the three facts the verdict derives from.
type Inputs struct {
	IndustryCodes  []model.CandidateIndustryCode
	HQCountry      string
	USHeadquarters bool
	USSubsidiary   bool
	RevenueBand    model.RevenueBand
}

// Verdict is the computed profile match with its three components exposed
// for diagnostics.
type Verdict struct {
	Match         bool `json:"match"`
	IndustryMatch bool `json:"industry_match"`
	RegionMatch   bool `json:"region_match"`
	RevenuePass   bool `json:"revenue_pass"`
}

// Evaluate computes icp = industry_match AND region_match AND revenue_pass.
func Evaluate(in Inputs, c Criteria) Verdict {
	v := Verdict{
		IndustryMatch: industryMatch(in.IndustryCodes, c.TargetCodes),
		RegionMatch:   regionMatch(in, c.TargetCountries),
		RevenuePass:   revenuePass(in.RevenueBand, c.RevenueThreshold),
	}
	v.Match = v.IndustryMatch && v.RegionMatch && v.RevenuePass
	return v
}

func industryMatch(codes []model.CandidateIndustryCode, targets map[string]bool) bool {
	for _, c := range codes {
		if targets[c.Code] {
			return true
		}
	}
	return false
}

func regionMatch(in Inputs, countries []string) bool {
	if in.USHeadquarters || in.USSubsidiary {
		return true
	}
	hq := strings.ToLower(strings.TrimSpace(in.HQCountry))
	if hq == "" {
		return false
	}
	for _, c := range countries {
		if hq == strings.ToLower(strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

func revenuePass(band, threshold model.RevenueBand) bool {
	ord := band.Ordinal()
	if ord < 0 {
		return false
	}
	return ord >= threshold.Ordinal()
}
