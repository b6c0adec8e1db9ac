package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/classify"
	"github.com/sells-group/enrich-cli/internal/model"
)

func TestStageAnalysisPopulatesResult(t *testing.T) {
	ai := &fakeAnthropic{responses: []string{e2eAnalysisResponse, e2eRankResponse}}
	classifier := classify.NewClassifier(ai, "rank-model", classify.NewLoader(nil, 0))
	e := New(nil, nil, nil, ai, classifier, nil, testCriteria(), "analysis-model", "rank-model")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{
		CompanyName: "Acme Foods",
		LinkedInURL: "https://linkedin.com/company/acme-foods",
	}
	ec.Content["https://acme-foods.com/about"] = "About Acme Foods."

	require.NoError(t, e.stageAnalysis(context.Background(), ec))

	assert.Equal(t, "Acme Foods", ec.Result.CompanyName)
	assert.Equal(t, "Acme Foods, Inc.", ec.Result.LegalName)
	assert.Equal(t, "Columbus", ec.Result.Headquarters.City)
	assert.True(t, ec.Result.USHeadquarters)

	q, ok := ec.Result.Quality.Get(model.QualityLocation)
	require.True(t, ok)
	assert.Equal(t, model.ConfidenceHigh, q.Confidence)
	assert.Contains(t, q.Reasoning, "contact page")

	require.Len(t, ec.Result.IndustryCodes, 1)
	assert.Equal(t, "311991", ec.Result.IndustryCodes[0].Code)
	iq, ok := ec.Result.Quality.Get(model.QualityIndustry)
	require.True(t, ok)
	assert.Equal(t, model.ConfidenceHigh, iq.Confidence)

	require.NotNil(t, ec.Analysis)
	require.Len(t, ec.Analysis.EmployeeEvidence, 1)
	assert.Equal(t, "250", ec.Analysis.EmployeeEvidence[0].Amount)

	// Two calls: analysis extraction, then the ranking pass.
	assert.Len(t, ai.requests, 2)
	assert.Equal(t, "analysis-model", ai.requests[0].Model)
	assert.Equal(t, "rank-model", ai.requests[1].Model)
}

func TestStageAnalysisHQFallsBackToIdentity(t *testing.T) {
	ai := &fakeAnthropic{responses: []string{
		`{"company_name": "Acme", "description": "Acme manufactures widgets."}`,
		e2eRankResponse,
	}}
	classifier := classify.NewClassifier(ai, "rank-model", classify.NewLoader(nil, 0))
	e := New(nil, nil, nil, ai, classifier, nil, testCriteria(), "analysis-model", "rank-model")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{
		CompanyName:  "Acme",
		Headquarters: model.Headquarters{City: "Dayton", State: "OH", Country: "United States"},
	}
	ec.Content["https://acme.com/"] = "Acme homepage."

	require.NoError(t, e.stageAnalysis(context.Background(), ec))

	assert.Equal(t, "Dayton", ec.Result.Headquarters.City)
	q, _ := ec.Result.Quality.Get(model.QualityLocation)
	assert.Equal(t, model.ConfidenceMedium, q.Confidence)
}

func TestStageAnalysisClassificationFailureDegrades(t *testing.T) {
	// No description in the analysis output means nothing to classify.
	ai := &fakeAnthropic{responses: []string{`{"company_name": "Acme"}`}}
	classifier := classify.NewClassifier(ai, "rank-model", classify.NewLoader(nil, 0))
	e := New(nil, nil, nil, ai, classifier, nil, testCriteria(), "analysis-model", "rank-model")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}
	ec.Content["https://acme.com/"] = "Acme homepage."

	require.NoError(t, e.stageAnalysis(context.Background(), ec))

	assert.Empty(t, ec.Result.IndustryCodes)
	q, ok := ec.Result.Quality.Get(model.QualityIndustry)
	require.True(t, ok)
	assert.Equal(t, model.ConfidenceLow, q.Confidence)
	assert.Equal(t, "classification unavailable", q.Reasoning)
}

func TestStageAnalysisUnparseableResponse(t *testing.T) {
	ai := &fakeAnthropic{responses: []string{"I could not find anything."}}
	e := New(nil, nil, nil, ai, nil, nil, testCriteria(), "analysis-model", "rank-model")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}
	ec.Content["https://acme.com/"] = "Acme homepage."

	require.Error(t, e.stageAnalysis(context.Background(), ec))
}

func TestBuildAnalysisContextOrdersPages(t *testing.T) {
	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}
	ec.Content["https://acme.com/b"] = "page b"
	ec.Content["https://acme.com/a"] = "page a"

	msg := buildAnalysisContext(ec)
	assert.Contains(t, msg, `name="Acme"`)
	assert.Less(t,
		strings.Index(msg, "https://acme.com/a"),
		strings.Index(msg, "https://acme.com/b"))
}
