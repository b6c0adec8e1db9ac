package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
)

// minRevenuePerEmployee maps a 2-digit industry code prefix to the minimum
// plausible annual revenue per employee in USD. A company cannot sustain a
// headcount whose payroll alone would exceed its stated revenue.
var minRevenuePerEmployee = map[string]float64{
	"23": 60_000,  // construction
	"31": 80_000,  // manufacturing
	"32": 80_000,
	"33": 80_000,
	"42": 150_000, // wholesale trade
	"44": 40_000,  // retail
	"45": 40_000,
	"51": 90_000,  // information
	"54": 70_000,  // professional services
	"56": 35_000,  // admin/support
	"62": 40_000,  // healthcare
	"72": 25_000,  // accommodation/food
}

const defaultMinRevenuePerEmployee = 30_000

// SanityAdjustment records a revenue-band bump made because the stated
// revenue was implausibly low for the stated headcount.
type SanityAdjustment struct {
	Adjusted bool
	From     model.RevenueBand
	To       model.RevenueBand
	Reason   string
}

// CheckRevenueSize compares the chosen revenue band against the chosen
// employee band using the industry's minimum revenue-per-employee. When the
// revenue band's ceiling cannot cover the band-minimum headcount, the
// revenue band is bumped upward until it can. Employee counts are never
// lowered to match revenue.
func CheckRevenueSize(revBand model.RevenueBand, empBand model.EmployeeBand, industryPrefix string) SanityAdjustment {
	if revBand.Ordinal() < 0 || empBand.Ordinal() < 0 {
		return SanityAdjustment{From: revBand, To: revBand}
	}

	perEmp := defaultMinRevenuePerEmployee
	if v, ok := minRevenuePerEmployee[industryPrefix]; ok {
		perEmp = int(v)
	}
	minExpected := float64(empBand.FloorCount()) * float64(perEmp)

	adjusted := revBand
	for adjusted.CeilingUSD() < minExpected {
		next := adjusted.Next()
		if next == adjusted {
			break
		}
		adjusted = next
	}

	if adjusted == revBand {
		return SanityAdjustment{From: revBand, To: revBand}
	}

	reason := fmt.Sprintf(
		"revenue band %q implausible for %q at >=%s/employee (industry prefix %q); raised to %q",
		revBand, empBand, formatUSD(float64(perEmp)), industryPrefix, adjusted)
	zap.L().Info("reconcile: revenue band raised by sanity check",
		zap.String("from", string(revBand)),
		zap.String("to", string(adjusted)),
		zap.String("employee_band", string(empBand)),
		zap.String("industry_prefix", industryPrefix),
	)

	return SanityAdjustment{
		Adjusted: true,
		From:     revBand,
		To:       adjusted,
		Reason:   reason,
	}
}
