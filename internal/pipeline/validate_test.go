package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestEntityNameAppears(t *testing.T) {
	content := map[string]string{
		"https://acme-foods.com/": "Welcome to Acme Foods, makers of fine snacks since 2010.",
	}

	assert.True(t, entityNameAppears("Acme Foods, Inc.", content))
	assert.True(t, entityNameAppears("ACME FOODS LLC", content))
	assert.False(t, entityNameAppears("Zenith Widgets", content))

	// Empty names cannot be validated against; treat as a match.
	assert.True(t, entityNameAppears("", content))
}

func TestStageValidateEntitySkipsOnMatch(t *testing.T) {
	se := &fakeSearch{}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme Foods"}
	ec.Content["https://acme-foods.com/"] = "Acme Foods makes snacks."

	require.NoError(t, e.stageValidateEntity(context.Background(), ec))
	assert.False(t, ec.Result.Diagnostics.EntityMismatch)
	assert.Empty(t, se.prompts)
}

func TestStageValidateEntityMismatchRunsStrictPass(t *testing.T) {
	se := &fakeSearch{responses: []string{`{
		"company_name": "Acme Foods",
		"headquarters": {"city": "Columbus", "state": "OH", "country": "United States"},
		"urls": ["https://acme-foods.com/about", "https://acme-foods.com/products"],
		"revenue_evidence": [{"amount": "$42M", "source": "press release", "year": "2025"}]
	}`}}
	rd := &fakeReader{pages: map[string]string{
		"https://acme-foods.com/products": "Acme Foods product catalog.",
	}}
	e := New(nil, se, rd, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{
		CompanyName:     "Zenith Widgets",
		LinkedInURL:     "https://linkedin.com/company/zenith",
		RevenueEvidence: []model.Evidence{{Amount: "$5M", Source: "web_search"}},
	}
	ec.Content["https://acme-foods.com/about"] = "About our company and its history."

	require.NoError(t, e.stageValidateEntity(context.Background(), ec))

	assert.True(t, ec.Result.Diagnostics.EntityMismatch)
	assert.Contains(t, ec.Result.Diagnostics.MismatchDetail, "Zenith Widgets")
	require.Len(t, se.prompts, 1)
	assert.Contains(t, se.prompts[0], "acme-foods.com")

	// The stricter pass wins filled identity fields while unfilled ones
	// carry over from the first pass.
	assert.Equal(t, "Acme Foods", ec.Identity.CompanyName)
	assert.Equal(t, "https://linkedin.com/company/zenith", ec.Identity.LinkedInURL)

	// Evidence accumulates across passes.
	require.Len(t, ec.Identity.RevenueEvidence, 2)
	assert.Equal(t, "$5M", ec.Identity.RevenueEvidence[0].Amount)
	assert.Equal(t, "$42M", ec.Identity.RevenueEvidence[1].Amount)

	// The new on-domain page was fetched; the previously retrieved one stayed.
	assert.Contains(t, ec.Content, "https://acme-foods.com/products")
	assert.Contains(t, ec.Content, "https://acme-foods.com/about")
}

func TestStageValidateEntityNoContent(t *testing.T) {
	se := &fakeSearch{}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}

	require.NoError(t, e.stageValidateEntity(context.Background(), ec))
	assert.Empty(t, se.prompts)
}

func TestStageValidateLinkedIn(t *testing.T) {
	rd := &fakeReader{pages: map[string]string{
		"https://linkedin.com/company/acme-foods": "Acme Foods | Food Production\n201-500 employees\nColumbus, Ohio",
	}}
	e := New(nil, nil, rd, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{LinkedInURL: "https://linkedin.com/company/acme-foods"}

	require.NoError(t, e.stageValidateLinkedIn(context.Background(), ec))

	assert.Equal(t, model.EmployeeBand201To500, ec.EmployeeHint)
	assert.Equal(t, "https://linkedin.com/company/acme-foods", ec.Result.LinkedInURL)
	assert.Contains(t, ec.Content, "https://linkedin.com/company/acme-foods")
	assert.Greater(t, ec.Costs.Report().ReaderTokens, 0)
}

func TestStageValidateLinkedInEmptyPage(t *testing.T) {
	rd := &fakeReader{pages: map[string]string{}}
	e := New(nil, nil, rd, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{LinkedInURL: "https://linkedin.com/company/acme"}

	require.NoError(t, e.stageValidateLinkedIn(context.Background(), ec))
	assert.Equal(t, model.EmployeeBandUnknown, ec.EmployeeHint)
	assert.Empty(t, ec.Result.LinkedInURL)
}
