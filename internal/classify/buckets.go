package classify

import (
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

// bucket maps business-description keywords to one or more code prefixes.
// Buckets keep the candidate list (and the ranking prompt) small.
type bucket struct {
	name     string
	keywords []string
	prefixes []string
}

var industryBuckets = []bucket{
	{
		name:     "manufacturing",
		keywords: []string{"manufactur", "fabricat", "machin", "assembly", "oem", "factory", "plant", "production line", "injection mold"},
		prefixes: []string{"31", "32", "33"},
	},
	{
		name:     "construction",
		keywords: []string{"construction", "contractor", "remodel", "roofing", "plumbing", "hvac", "builder"},
		prefixes: []string{"23"},
	},
	{
		name:     "wholesale",
		keywords: []string{"wholesale", "distributor", "distribution", "merchant", "supplier", "import and export"},
		prefixes: []string{"42"},
	},
	{
		name:     "retail",
		keywords: []string{"retail", "store", "shop", "e-commerce", "ecommerce", "dealer"},
		prefixes: []string{"44", "45"},
	},
	{
		name:     "logistics",
		keywords: []string{"trucking", "freight", "logistics", "shipping", "warehous", "3pl", "carrier"},
		prefixes: []string{"48", "49"},
	},
	{
		name:     "software",
		keywords: []string{"software", "saas", "platform", "application", "cloud", "hosting", "data center", "it services", "information technology"},
		prefixes: []string{"51", "5415"},
	},
	{
		name:     "finance",
		keywords: []string{"bank", "lending", "investment", "wealth", "insurance", "brokerage", "financial"},
		prefixes: []string{"52"},
	},
	{
		name:     "real estate",
		keywords: []string{"real estate", "property management", "realty", "leasing"},
		prefixes: []string{"53"},
	},
	{
		name:     "professional services",
		keywords: []string{"consulting", "law firm", "attorney", "accounting", "cpa", "engineering", "advertising", "agency", "marketing"},
		prefixes: []string{"54"},
	},
	{
		name:     "facilities and staffing",
		keywords: []string{"staffing", "janitorial", "cleaning", "waste", "recruiting", "facility services"},
		prefixes: []string{"56"},
	},
	{
		name:     "healthcare",
		keywords: []string{"medical", "health", "clinic", "physician", "dental", "patient", "care services"},
		prefixes: []string{"62", "3391"},
	},
	{
		name:     "food service",
		keywords: []string{"restaurant", "catering", "bakery", "brewery", "food and beverage"},
		prefixes: []string{"722", "3118", "3121"},
	},
	{
		name:     "education",
		keywords: []string{"training", "education", "course", "curriculum"},
		prefixes: []string{"61"},
	},
	{
		name:     "repair",
		keywords: []string{"repair", "maintenance services", "automotive service"},
		prefixes: []string{"81"},
	},
}

// FilterCandidates narrows the approved list to codes under prefixes whose
// bucket keywords appear in the business description. If no bucket matches,
// the full list passes through so the ranking step still sees everything.
func FilterCandidates(description string, tax *Taxonomy) []model.CandidateIndustryCode {
	lower := strings.ToLower(description)

	prefixSet := make(map[string]bool)
	for _, b := range industryBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				for _, p := range b.prefixes {
					prefixSet[p] = true
				}
				break
			}
		}
	}

	if len(prefixSet) == 0 {
		return tax.Codes()
	}

	var out []model.CandidateIndustryCode
	for _, c := range tax.Codes() {
		for p := range prefixSet {
			if strings.HasPrefix(c.Code, p) {
				out = append(out, c)
				break
			}
		}
	}
	if len(out) == 0 {
		return tax.Codes()
	}
	return out
}
