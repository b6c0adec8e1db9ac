package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestStageLookupsDiscoverLinkedIn(t *testing.T) {
	se := &fakeSearch{responses: []string{
		`{"linkedin_url": "https://www.linkedin.com/company/acme-foods", "employee_range": "201-500 employees"}`,
	}}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme Foods"}

	require.NoError(t, e.stageLookups(context.Background(), ec))

	assert.Equal(t, "https://www.linkedin.com/company/acme-foods", ec.Identity.LinkedInURL)
	assert.Equal(t, model.EmployeeBand201To500, ec.EmployeeHint)
}

func TestStageLookupsRejectsNonCompanyURL(t *testing.T) {
	se := &fakeSearch{responses: []string{
		`{"linkedin_url": "https://www.linkedin.com/in/jane-doe", "employee_range": ""}`,
	}}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}

	require.NoError(t, e.stageLookups(context.Background(), ec))
	assert.Empty(t, ec.Identity.LinkedInURL)
}

func TestStageLookupsSupplementalResearch(t *testing.T) {
	// Identity already carries a LinkedIn URL, so only the research
	// branch runs and the scripted responses stay deterministic.
	se := &fakeSearch{responses: []string{
		`{"revenue_evidence": [{"amount": "$38M", "source": "industry database", "is_estimate": true}]}`,
	}}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme-foods.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme Foods", LinkedInURL: "https://linkedin.com/company/acme-foods"}
	ec.ResearchNeeded = true
	ec.ResearchReason = "revenue evidence disagrees by 20.0x"

	require.NoError(t, e.stageLookups(context.Background(), ec))

	assert.True(t, ec.Result.Diagnostics.ResearchTriggered)
	assert.Equal(t, "revenue evidence disagrees by 20.0x", ec.Result.Diagnostics.ResearchReason)
	require.Len(t, ec.ResearchEvidence, 1)
	assert.Equal(t, "$38M", ec.ResearchEvidence[0].Amount)
	assert.Equal(t, "industry database", ec.ResearchEvidence[0].Source)
}

func TestStageLookupsSkipsWhenNothingToDo(t *testing.T) {
	se := &fakeSearch{}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme", LinkedInURL: "https://linkedin.com/company/acme"}

	require.NoError(t, e.stageLookups(context.Background(), ec))
	assert.Empty(t, se.prompts)
}

func TestStageLookupsBranchFailureIsNotFatal(t *testing.T) {
	se := &fakeSearch{err: errors.New("search down")}
	e := New(nil, se, nil, nil, nil, nil, testCriteria(), "m", "m")

	ec := NewContext("acme.com", "", nil, nil)
	ec.Identity = &IdentityResult{CompanyName: "Acme"}
	ec.ResearchNeeded = true

	require.NoError(t, e.stageLookups(context.Background(), ec))
	assert.Empty(t, ec.Identity.LinkedInURL)
	assert.Empty(t, ec.ResearchEvidence)
}
