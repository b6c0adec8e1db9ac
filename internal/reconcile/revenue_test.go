package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$42M", 42_000_000, true},
		{"42 million", 42_000_000, true},
		{"$1.2B", 1_200_000_000, true},
		{"1.5bn", 1_500_000_000, true},
		{"$500,000", 500_000, true},
		{"750K", 750_000, true},
		{"42000000", 42_000_000, true},
		{"USD 30M", 30_000_000, true},
		{"approximately $10M annually", 10_000_000, true},
		{"unknown", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseAmount(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 0.01)
			}
		})
	}
}

func TestReconcileRevenueSingleSource(t *testing.T) {
	// Spec scenario: $42M press release, no conflicts, not an estimate.
	out := ReconcileRevenue([]model.Evidence{
		{Amount: "$42M", Source: "press release", IsEstimate: false},
	}, 0, "")

	assert.Equal(t, model.RevenueBand25MTo75M, out.Band)
	assert.Equal(t, model.ConfidenceHigh, out.Confidence)
	assert.Equal(t, MethodEvidence, out.Method)
	assert.NotEmpty(t, out.Reasoning)
}

func TestReconcileRevenueConflict(t *testing.T) {
	// Sources disagreeing by more than 5x are discarded, not averaged.
	out := ReconcileRevenue([]model.Evidence{
		{Amount: "$2M", Source: "directory listing", IsEstimate: true},
		{Amount: "$80M", Source: "news article", IsEstimate: true},
	}, 0, "54")

	assert.Equal(t, model.RevenueBandUnknown, out.Band)
	assert.Equal(t, model.ConfidenceLow, out.Confidence)
	assert.Equal(t, MethodNone, out.Method)
	assert.Contains(t, out.Reasoning, "conflict")
}

func TestReconcileRevenueAgreementWithinRatio(t *testing.T) {
	out := ReconcileRevenue([]model.Evidence{
		{Amount: "$10M", Source: "directory", IsEstimate: true, Year: "2022"},
		{Amount: "$14M", Source: "annual report", IsEstimate: false, Year: "2023"},
	}, 0, "")

	// Non-estimate wins; 14M sits in 5M-25M.
	assert.Equal(t, model.RevenueBand5MTo25M, out.Band)
	assert.Equal(t, model.ConfidenceHigh, out.Confidence)
	assert.Contains(t, out.Reasoning, "annual report")
}

func TestReconcileRevenueParentScopeNeverSubstituted(t *testing.T) {
	// Only parent-scope evidence exists; the operating company falls through
	// to the employee proxy instead of inheriting the parent's $2B.
	out := ReconcileRevenue([]model.Evidence{
		{Amount: "$2B", Source: "parent annual report", Scope: model.ScopeUltimateParent},
	}, 40, "54")

	assert.Equal(t, MethodEmployeeProxy, out.Method)
	assert.Equal(t, model.ConfidenceMedium, out.Confidence)
	// 40 employees x $180K/employee = $7.2M.
	assert.Equal(t, model.RevenueBand5MTo25M, out.Band)
}

func TestReconcileRevenueFallbackLadder(t *testing.T) {
	// No evidence, no headcount: industry average at low confidence.
	out := ReconcileRevenue(nil, 0, "42")
	assert.Equal(t, MethodIndustryAverage, out.Method)
	assert.Equal(t, model.ConfidenceLow, out.Confidence)
	assert.Equal(t, model.RevenueBand5MTo25M, out.Band)

	// Nothing at all.
	out = ReconcileRevenue(nil, 0, "")
	assert.Equal(t, MethodNone, out.Method)
	assert.Equal(t, model.RevenueBandUnknown, out.Band)
	assert.Equal(t, model.ConfidenceLow, out.Confidence)
}

func TestReconcileRevenueConflictPropertyHolds(t *testing.T) {
	// For any same-scope pair with max/min > 5, band is always unknown.
	pairs := [][2]string{
		{"$1M", "$6M"},
		{"$500K", "$10M"},
		{"100000", "$2B"},
	}
	for _, p := range pairs {
		out := ReconcileRevenue([]model.Evidence{
			{Amount: p[0], Source: "a"},
			{Amount: p[1], Source: "b"},
		}, 100, "54")
		assert.Equal(t, model.RevenueBandUnknown, out.Band, "pair %v", p)
		assert.Equal(t, model.ConfidenceLow, out.Confidence, "pair %v", p)
	}
}

func TestReconcileEmployees(t *testing.T) {
	t.Run("direct count", func(t *testing.T) {
		out := ReconcileEmployees([]model.Evidence{
			{Amount: "250", Source: "state filing", IsEstimate: false},
		}, "")
		assert.Equal(t, model.EmployeeBand201To500, out.Band)
		assert.Equal(t, model.ConfidenceHigh, out.Confidence)
		assert.Equal(t, 250, out.Count)
	})

	t.Run("linkedin hint only", func(t *testing.T) {
		out := ReconcileEmployees(nil, "51-200 employees")
		assert.Equal(t, model.EmployeeBand51To200, out.Band)
		assert.Equal(t, model.ConfidenceMedium, out.Confidence)
	})

	t.Run("hint corroborates evidence", func(t *testing.T) {
		out := ReconcileEmployees([]model.Evidence{
			{Amount: "120", Source: "about page", IsEstimate: true},
		}, "51-200 employees")
		assert.Equal(t, model.EmployeeBand51To200, out.Band)
		assert.Equal(t, model.ConfidenceHigh, out.Confidence)
	})

	t.Run("conflict discards", func(t *testing.T) {
		out := ReconcileEmployees([]model.Evidence{
			{Amount: "20", Source: "a"},
			{Amount: "400", Source: "b"},
		}, "")
		assert.Equal(t, model.EmployeeBandUnknown, out.Band)
		assert.Equal(t, model.ConfidenceLow, out.Confidence)
	})

	t.Run("parent scope ignored", func(t *testing.T) {
		out := ReconcileEmployees([]model.Evidence{
			{Amount: "90000", Source: "parent 10-K", Scope: model.ScopeUltimateParent},
		}, "")
		assert.Equal(t, model.EmployeeBandUnknown, out.Band)
	})

	t.Run("nothing", func(t *testing.T) {
		out := ReconcileEmployees(nil, "")
		assert.Equal(t, model.EmployeeBandUnknown, out.Band)
		assert.Equal(t, model.ConfidenceLow, out.Confidence)
	})
}

func TestCheckRevenueSize(t *testing.T) {
	t.Run("manufacturing bump fires", func(t *testing.T) {
		// Spec scenario: 1,001-5,000 Employees with 0-500K revenue for a
		// manufacturing code. Minimum expected is 1001 x $80K ≈ $80M.
		adj := CheckRevenueSize(model.RevenueBand0To500K, model.EmployeeBand1KTo5K, "33")
		assert.True(t, adj.Adjusted)
		assert.Equal(t, model.RevenueBand0To500K, adj.From)
		assert.Equal(t, model.RevenueBand75MTo200M, adj.To)
		assert.NotEmpty(t, adj.Reason)
	})

	t.Run("plausible combination untouched", func(t *testing.T) {
		adj := CheckRevenueSize(model.RevenueBand5MTo25M, model.EmployeeBand11To50, "54")
		assert.False(t, adj.Adjusted)
		assert.Equal(t, model.RevenueBand5MTo25M, adj.To)
	})

	t.Run("unknown bands skipped", func(t *testing.T) {
		adj := CheckRevenueSize(model.RevenueBandUnknown, model.EmployeeBand1KTo5K, "33")
		assert.False(t, adj.Adjusted)

		adj = CheckRevenueSize(model.RevenueBand0To500K, model.EmployeeBandUnknown, "33")
		assert.False(t, adj.Adjusted)
	})

	t.Run("top band never exceeded", func(t *testing.T) {
		adj := CheckRevenueSize(model.RevenueBand1BPlus, model.EmployeeBand10KPlus, "42")
		assert.False(t, adj.Adjusted)
	})
}
