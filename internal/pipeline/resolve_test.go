package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func TestRootDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme-foods.com", "acme-foods.com"},
		{"www.acme-foods.com", "acme-foods.com"},
		{"mail.acme-foods.co", "acme-foods.co"},
		{"shop.example.co.uk", "example.co.uk"},
		{"a.b.c.example.com", "example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rootDomain(tt.in), "input %s", tt.in)
	}
}

func TestFuzzyContains(t *testing.T) {
	assert.True(t, fuzzyContains("acme-foods", "acme-foods"))
	assert.True(t, fuzzyContains("acmefoods", "acmefoodsinc"))
	assert.False(t, fuzzyContains("acme", "completely-different"))
	assert.False(t, fuzzyContains("ab", "acme-foods-international"))
	assert.False(t, fuzzyContains("", "acme"))
}

func TestStageResolveEmailSubdomain(t *testing.T) {
	// Submitted domain derived from an email host; search results point
	// at the real site plus aggregator noise.
	srch := &fakeSearch{responses: []string{
		`The company website is https://acme-foods.com. See also
		 https://acme-foods.com/about and https://www.acme-foods.com/products,
		 plus profiles at https://linkedin.com/company/acme-foods and
		 https://crunchbase.com/organization/acme-foods.`,
	}}
	e := New(nil, srch, nil, nil, nil, nil, testCriteria(), "m", "m")
	ec := NewContext("mail.acme-foods.co", "", nil, nil)

	require.NoError(t, e.stageResolve(context.Background(), ec))

	res := ec.Result.Diagnostics.DomainResolution
	assert.Equal(t, "acme-foods.com", res.Resolved)
	assert.True(t, res.Changed)
	assert.Equal(t, model.ResolveMethodSearch, res.Method)
	assert.Equal(t, "acme-foods.com", ec.ResolvedDomain)
}

func TestStageResolveNeverReturnsBlacklisted(t *testing.T) {
	srch := &fakeSearch{responses: []string{
		`Only found https://linkedin.com/company/x, https://linkedin.com/company/y,
		 https://crunchbase.com/org/x, https://facebook.com/x, https://yelp.com/biz/x.`,
	}}
	e := New(nil, srch, nil, nil, nil, nil, testCriteria(), "m", "m")
	ec := NewContext("obscure-co.com", "", nil, nil)

	require.NoError(t, e.stageResolve(context.Background(), ec))

	res := ec.Result.Diagnostics.DomainResolution
	assert.Equal(t, "obscure-co.com", res.Resolved)
	assert.False(t, res.Changed)
	assert.NotContains(t, []string{"linkedin.com", "crunchbase.com"}, res.Resolved)
}

func TestStageResolveConfirmsSubmitted(t *testing.T) {
	srch := &fakeSearch{responses: []string{
		`The official site is https://acme-foods.com, confirmed at acme-foods.com/about.`,
	}}
	e := New(nil, srch, nil, nil, nil, nil, testCriteria(), "m", "m")
	ec := NewContext("acme-foods.com", "", nil, nil)

	require.NoError(t, e.stageResolve(context.Background(), ec))

	res := ec.Result.Diagnostics.DomainResolution
	assert.Equal(t, "acme-foods.com", res.Resolved)
	assert.False(t, res.Changed)
	assert.Equal(t, model.ResolveMethodDirect, res.Method)
}

func TestStageResolveSingleOccurrenceNotPromoted(t *testing.T) {
	srch := &fakeSearch{responses: []string{
		`Possibly https://totally-unrelated.com among other things.`,
	}}
	e := New(nil, srch, nil, nil, nil, nil, testCriteria(), "m", "m")
	ec := NewContext("acme-foods.com", "", nil, nil)

	require.NoError(t, e.stageResolve(context.Background(), ec))

	res := ec.Result.Diagnostics.DomainResolution
	assert.Equal(t, "acme-foods.com", res.Resolved)
	assert.False(t, res.Changed)
}

func TestStageResolveFailsOpen(t *testing.T) {
	srch := &fakeSearch{err: assert.AnError}
	e := New(nil, srch, nil, nil, nil, nil, testCriteria(), "m", "m")
	ec := NewContext("acme-foods.com", "", nil, nil)

	require.NoError(t, e.stageResolve(context.Background(), ec))

	res := ec.Result.Diagnostics.DomainResolution
	assert.Equal(t, "acme-foods.com", res.Resolved)
	assert.Equal(t, model.ResolveMethodFailed, res.Method)
}
