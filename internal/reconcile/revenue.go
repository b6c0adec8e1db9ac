package reconcile

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
)

// conflictRatio is the spread beyond which same-scope evidence is considered
// irreconcilable and discarded rather than averaged.
const conflictRatio = 5.0

// Estimation methods reported in RevenueOutcome.Method.
const (
	MethodEvidence        = "evidence"
	MethodEmployeeProxy   = "employee_proxy"
	MethodIndustryAverage = "industry_average"
	MethodNone            = "none"
)

// RevenueOutcome is the reconciled revenue estimate for a company.
type RevenueOutcome struct {
	Band       model.RevenueBand
	Confidence model.Confidence
	Reasoning  string
	Method     string
	AmountUSD  float64
}

// revenuePerEmployee maps a 2-digit industry code prefix to a typical
// revenue-per-employee proxy in USD, used when no operating-company revenue
// figure exists but a headcount does.
var revenuePerEmployee = map[string]float64{
	"23": 240_000, // construction
	"31": 320_000, // manufacturing
	"32": 320_000,
	"33": 320_000,
	"42": 900_000, // wholesale trade
	"44": 260_000, // retail
	"45": 260_000,
	"48": 210_000, // transportation
	"51": 280_000, // information
	"54": 180_000, // professional services
	"56": 120_000, // admin/support
	"62": 110_000, // healthcare
	"72": 75_000,  // accommodation/food
}

const defaultRevenuePerEmployee = 200_000

// industryAverageRevenue maps a 2-digit industry code prefix to an average
// company revenue, the last-resort fallback when neither revenue evidence
// nor a headcount is available.
var industryAverageRevenue = map[string]float64{
	"23": 3_500_000,
	"31": 8_000_000,
	"32": 8_000_000,
	"33": 8_000_000,
	"42": 12_000_000,
	"44": 2_500_000,
	"45": 2_500_000,
	"51": 6_000_000,
	"54": 1_800_000,
	"56": 2_200_000,
	"62": 3_000_000,
	"72": 1_200_000,
}

const defaultIndustryAverage = 3_000_000

// parsedEvidence pairs an evidence item with its parsed USD value.
type parsedEvidence struct {
	ev  model.Evidence
	usd float64
}

// ReconcileRevenue resolves a list of revenue evidence into one banded
// estimate. Parent-scope evidence is never substituted for the operating
// company's own figure; fallbacks engage only when no operating figure
// parses at all, each rung carrying strictly lower confidence.
func ReconcileRevenue(evidence []model.Evidence, employeeCount int, industryPrefix string) RevenueOutcome {
	operating := parseByScope(evidence, false)
	parent := parseByScope(evidence, true)

	if len(operating) > 0 {
		if lo, hi, conflict := spread(operating); conflict {
			reason := fmt.Sprintf(
				"revenue sources conflict beyond %.0fx (%s vs %s); all discarded rather than guessed",
				conflictRatio, formatUSD(lo), formatUSD(hi))
			zap.L().Warn("reconcile: revenue evidence conflict",
				zap.Float64("low", lo),
				zap.Float64("high", hi),
				zap.Int("sources", len(operating)),
			)
			return RevenueOutcome{
				Band:       model.RevenueBandUnknown,
				Confidence: model.ConfidenceLow,
				Reasoning:  reason,
				Method:     MethodNone,
			}
		}

		chosen := chooseBest(operating)
		conf := model.ConfidenceMedium
		if !chosen.ev.IsEstimate {
			conf = model.ConfidenceHigh
		}
		return RevenueOutcome{
			Band:       model.RevenueBandFor(chosen.usd),
			Confidence: conf,
			Reasoning: fmt.Sprintf("%s from %s%s", formatUSD(chosen.usd),
				chosen.ev.Source, estimateSuffix(chosen.ev)),
			Method:    MethodEvidence,
			AmountUSD: chosen.usd,
		}
	}

	if len(parent) > 0 {
		zap.L().Debug("reconcile: only parent-scope revenue evidence present; not substituting",
			zap.Int("parent_sources", len(parent)))
	}

	// Fallback 1: headcount times an industry revenue-per-employee proxy.
	if employeeCount > 0 {
		perEmp := defaultRevenuePerEmployee
		if v, ok := revenuePerEmployee[industryPrefix]; ok {
			perEmp = int(v)
		}
		usd := float64(employeeCount) * float64(perEmp)
		return RevenueOutcome{
			Band:       model.RevenueBandFor(usd),
			Confidence: model.ConfidenceMedium,
			Reasoning: fmt.Sprintf(
				"no operating-company revenue figure; estimated from %d employees at %s/employee for industry prefix %q",
				employeeCount, formatUSD(float64(perEmp)), industryPrefix),
			Method:    MethodEmployeeProxy,
			AmountUSD: usd,
		}
	}

	// Fallback 2: flat per-industry average.
	if industryPrefix != "" {
		avg := defaultIndustryAverage
		if v, ok := industryAverageRevenue[industryPrefix]; ok {
			avg = int(v)
		}
		usd := float64(avg)
		return RevenueOutcome{
			Band:       model.RevenueBandFor(usd),
			Confidence: model.ConfidenceLow,
			Reasoning: fmt.Sprintf(
				"no revenue evidence or headcount; industry average for prefix %q applied", industryPrefix),
			Method:    MethodIndustryAverage,
			AmountUSD: usd,
		}
	}

	return RevenueOutcome{
		Band:       model.RevenueBandUnknown,
		Confidence: model.ConfidenceLow,
		Reasoning:  "no usable revenue evidence found",
		Method:     MethodNone,
	}
}

// parseByScope parses the evidence amounts for one entity scope. Evidence
// with no scope tag counts as operating-company.
func parseByScope(evidence []model.Evidence, parent bool) []parsedEvidence {
	var out []parsedEvidence
	for _, ev := range evidence {
		isParent := ev.Scope == model.ScopeUltimateParent
		if isParent != parent {
			continue
		}
		usd, ok := ParseAmount(ev.Amount)
		if !ok || usd <= 0 {
			continue
		}
		out = append(out, parsedEvidence{ev: ev, usd: usd})
	}
	return out
}

// spread reports the min and max parsed values and whether they disagree
// beyond the conflict ratio.
func spread(parsed []parsedEvidence) (lo, hi float64, conflict bool) {
	lo, hi = parsed[0].usd, parsed[0].usd
	for _, p := range parsed[1:] {
		if p.usd < lo {
			lo = p.usd
		}
		if p.usd > hi {
			hi = p.usd
		}
	}
	return lo, hi, lo > 0 && hi/lo > conflictRatio
}

// chooseBest prefers non-estimate evidence, then the most recent year, then
// the larger figure (more complete reporting).
func chooseBest(parsed []parsedEvidence) parsedEvidence {
	sorted := make([]parsedEvidence, len(parsed))
	copy(sorted, parsed)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ev.IsEstimate != b.ev.IsEstimate {
			return !a.ev.IsEstimate
		}
		if a.ev.Year != b.ev.Year {
			return a.ev.Year > b.ev.Year
		}
		return a.usd > b.usd
	})
	return sorted[0]
}

func estimateSuffix(ev model.Evidence) string {
	switch {
	case ev.IsEstimate && ev.Year != "":
		return fmt.Sprintf(" (estimate, %s)", ev.Year)
	case ev.IsEstimate:
		return " (estimate)"
	case ev.Year != "":
		return fmt.Sprintf(" (%s)", ev.Year)
	}
	return ""
}

func formatUSD(usd float64) string {
	switch {
	case usd >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", usd/1_000_000_000)
	case usd >= 1_000_000:
		return fmt.Sprintf("$%.1fM", usd/1_000_000)
	case usd >= 1_000:
		return fmt.Sprintf("$%.0fK", usd/1_000)
	default:
		return fmt.Sprintf("$%.0f", usd)
	}
}
