package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/icp"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/reconcile"
)

// stageEstimate reconciles the accumulated revenue and employee evidence
// into banded estimates, applies the revenue/size sanity check, and
// computes the ICP verdict from the fresh values.
func (e *Engine) stageEstimate(_ context.Context, ec *Context) error {
	revenueEvidence, employeeEvidence := gatherEvidence(ec)
	recordEvidenceSources(ec, revenueEvidence, employeeEvidence)

	emp := reconcile.ReconcileEmployees(employeeEvidence, string(ec.EmployeeHint))
	ec.Result.EmployeeBand = emp.Band
	ec.Result.Quality.Set(model.QualitySize, emp.Confidence, emp.Reasoning)

	prefix := industryPrefix(ec.Result.IndustryCodes)
	rev := reconcile.ReconcileRevenue(revenueEvidence, emp.Count, prefix)
	ec.Result.RevenueBand = rev.Band
	ec.Result.Quality.Set(model.QualityRevenue, rev.Confidence, rev.Reasoning)

	if adj := reconcile.CheckRevenueSize(ec.Result.RevenueBand, ec.Result.EmployeeBand, prefix); adj.Adjusted {
		ec.Result.RevenueBand = adj.To
		ec.Result.Quality.Set(model.QualityRevenue, model.ConfidenceMedium, adj.Reason)
		ec.Result.Diagnostics.Adjustments = append(ec.Result.Diagnostics.Adjustments, adj.Reason)
	}

	recomputeICP(ec, e.icpCriteria)

	zap.L().Info("pipeline: estimation complete",
		zap.String("domain", ec.ResolvedDomain),
		zap.String("revenue_band", string(ec.Result.RevenueBand)),
		zap.String("employee_band", string(ec.Result.EmployeeBand)),
		zap.String("method", rev.Method),
		zap.Bool("icp_match", ec.Result.ICPMatch),
	)
	return nil
}

// gatherEvidence merges evidence from every pass that produced any. Items
// are never mutated or deduplicated; reconciliation weighs them as given.
func gatherEvidence(ec *Context) (revenue, employees []model.Evidence) {
	if ec.Identity != nil {
		revenue = append(revenue, ec.Identity.RevenueEvidence...)
		employees = append(employees, ec.Identity.EmployeeEvidence...)
	}
	revenue = append(revenue, ec.ResearchEvidence...)
	if ec.Analysis != nil {
		revenue = append(revenue, ec.Analysis.RevenueEvidence...)
		employees = append(employees, ec.Analysis.EmployeeEvidence...)
	}
	return revenue, employees
}

func recordEvidenceSources(ec *Context, revenue, employees []model.Evidence) {
	seen := make(map[string]bool)
	for _, ev := range append(append([]model.Evidence{}, revenue...), employees...) {
		if ev.Source != "" && !seen[ev.Source] {
			seen[ev.Source] = true
			ec.Result.Diagnostics.EvidenceSources = append(ec.Result.Diagnostics.EvidenceSources, ev.Source)
		}
	}
}

// industryPrefix returns the 2-digit prefix of the primary industry code.
func industryPrefix(codes []model.CandidateIndustryCode) string {
	if len(codes) == 0 || len(codes[0].Code) < 2 {
		return ""
	}
	return codes[0].Code[:2]
}

// recomputeICP re-evaluates the verdict from current inputs. Called every
// time industry codes, headquarters, or the revenue band may have moved;
// the verdict is never carried stale across those writes.
func recomputeICP(ec *Context, criteria icp.Criteria) {
	verdict := icp.Evaluate(icp.Inputs{
		IndustryCodes:  ec.Result.IndustryCodes,
		HQCountry:      ec.Result.Headquarters.Country,
		USHeadquarters: ec.Result.USHeadquarters,
		USSubsidiary:   ec.Result.USSubsidiary,
		RevenueBand:    ec.Result.RevenueBand,
	}, criteria)
	ec.Result.ICPMatch = verdict.Match
}
