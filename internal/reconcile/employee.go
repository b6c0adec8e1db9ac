package reconcile

import (
	"fmt"

	"github.com/sells-group/enrich-cli/internal/model"
)

// EmployeeOutcome is the reconciled employee-size estimate for a company.
type EmployeeOutcome struct {
	Band       model.EmployeeBand
	Confidence model.Confidence
	Reasoning  string
	Count      int
}

// ReconcileEmployees resolves employee-count evidence plus an optional
// LinkedIn range hint into one banded estimate. The same scope and conflict
// rules as revenue apply: parent-scope counts are never substituted, and a
// greater-than-5x spread discards the evidence.
func ReconcileEmployees(evidence []model.Evidence, linkedInHint string) EmployeeOutcome {
	var counts []parsedEvidence
	for _, ev := range evidence {
		if ev.Scope == model.ScopeUltimateParent {
			continue
		}
		usd, ok := ParseAmount(ev.Amount)
		if !ok || usd <= 0 {
			continue
		}
		counts = append(counts, parsedEvidence{ev: ev, usd: usd})
	}

	hintBand := model.ParseEmployeeBand(linkedInHint)

	if len(counts) == 0 {
		if hintBand != model.EmployeeBandUnknown {
			return EmployeeOutcome{
				Band:       hintBand,
				Confidence: model.ConfidenceMedium,
				Reasoning:  fmt.Sprintf("LinkedIn range hint %q; no direct count evidence", linkedInHint),
			}
		}
		return EmployeeOutcome{
			Band:       model.EmployeeBandUnknown,
			Confidence: model.ConfidenceLow,
			Reasoning:  "no employee-count evidence found",
		}
	}

	if lo, hi, conflict := spread(counts); conflict {
		return EmployeeOutcome{
			Band:       model.EmployeeBandUnknown,
			Confidence: model.ConfidenceLow,
			Reasoning: fmt.Sprintf(
				"employee counts conflict beyond %.0fx (%.0f vs %.0f); all discarded rather than guessed",
				conflictRatio, lo, hi),
		}
	}

	chosen := chooseBest(counts)
	count := int(chosen.usd)
	band := model.EmployeeBandFor(count)

	conf := model.ConfidenceMedium
	reason := fmt.Sprintf("%d employees from %s%s", count, chosen.ev.Source, estimateSuffix(chosen.ev))
	if !chosen.ev.IsEstimate {
		conf = model.ConfidenceHigh
	}
	if hintBand != model.EmployeeBandUnknown && hintBand == band {
		conf = model.ConfidenceHigh
		reason += "; corroborated by LinkedIn range"
	}

	return EmployeeOutcome{
		Band:       band,
		Confidence: conf,
		Reasoning:  reason,
		Count:      count,
	}
}
