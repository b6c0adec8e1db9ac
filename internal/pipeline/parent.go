package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/store"
)

// parentDomainTable maps well-known parent company names to their primary
// domains. Lookup is exact first, then substring, then against a cleaned
// form of the name.
var parentDomainTable = map[string]string{
	"berkshire hathaway":       "berkshirehathaway.com",
	"procter & gamble":         "pg.com",
	"johnson & johnson":        "jnj.com",
	"nestle":                   "nestle.com",
	"unilever":                 "unilever.com",
	"general electric":         "ge.com",
	"siemens":                  "siemens.com",
	"honeywell":                "honeywell.com",
	"emerson electric":         "emerson.com",
	"danaher":                  "danaher.com",
	"illinois tool works":      "itw.com",
	"parker hannifin":          "parker.com",
	"dover corporation":        "dovercorporation.com",
	"fortive":                  "fortive.com",
	"roper technologies":       "ropertech.com",
	"sysco":                    "sysco.com",
	"archer daniels midland":   "adm.com",
	"tyson foods":              "tysonfoods.com",
	"conagra brands":           "conagrabrands.com",
	"general mills":            "generalmills.com",
	"kraft heinz":              "kraftheinzcompany.com",
	"pepsico":                  "pepsico.com",
	"mondelez international":   "mondelezinternational.com",
	"united technologies":      "rtx.com",
	"raytheon technologies":    "rtx.com",
	"lockheed martin":          "lockheedmartin.com",
	"thermo fisher scientific": "thermofisher.com",
	"abbott laboratories":      "abbott.com",
	"medtronic":                "medtronic.com",
	"cardinal health":          "cardinalhealth.com",
	"mckesson":                 "mckesson.com",
}

var titleCaser = cases.Title(language.English)

// cleanParentName strips legal suffixes and punctuation from a parent
// company name so near-miss spellings still hit the lookup table.
func cleanParentName(name string) string {
	// Title casing first collapses inconsistent capitalization, then the
	// comparison happens on the lowered form.
	name = strings.ToLower(titleCaser.String(strings.TrimSpace(name)))
	for _, suffix := range []string{
		", inc.", ", inc", " inc.", " inc", " incorporated",
		" corporation", " corp.", " corp", " company", " co.", " co",
		" holdings", " holding", " group", " plc", " llc", " ltd.", " ltd",
		" s.a.", " ag", " se", " nv", " gmbh",
	} {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.Trim(name, " .,")
	return name
}

// resolveParentDomain finds a domain for the named parent: exact table
// match, then substring match, then a retry with the cleaned name.
func resolveParentDomain(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}
	if d, ok := parentDomainTable[lower]; ok {
		return d
	}
	for known, d := range parentDomainTable {
		if strings.Contains(lower, known) || strings.Contains(known, lower) {
			return d
		}
	}
	if cleaned := cleanParentName(name); cleaned != lower {
		if d, ok := parentDomainTable[cleaned]; ok {
			return d
		}
		for known, d := range parentDomainTable {
			if strings.Contains(cleaned, known) || strings.Contains(known, cleaned) {
				return d
			}
		}
	}
	return ""
}

// weakData reports whether the result's own figures justify falling back
// to a parent record.
func weakData(r *model.EnrichmentResult) bool {
	weakRevenue := r.RevenueBand.Ordinal() < model.RevenueBand5MTo25M.Ordinal()
	weakSize := r.EmployeeBand.Ordinal() < model.EmployeeBand51To200.Ordinal()
	return weakRevenue || weakSize
}

// stageParent inherits bands from a known parent company record when the
// target's own data is weak. Inheritance is monotonic: a band only ever
// moves to a higher ordinal, and the persistence layer re-enforces the
// same rule on save.
func (e *Engine) stageParent(ctx context.Context, ec *Context) error {
	r := ec.Result
	if r.ParentCompany == "" || !weakData(r) {
		return nil
	}

	parentDomain := resolveParentDomain(r.ParentCompany)
	if parentDomain == "" {
		zap.L().Debug("pipeline: no domain known for parent",
			zap.String("parent", r.ParentCompany),
		)
		return nil
	}

	if e.store == nil {
		return nil
	}
	parent, err := e.store.GetProfile(ctx, parentDomain)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	inherited := false
	if parent.RevenueBand.Ordinal() > r.RevenueBand.Ordinal() {
		reason := fmt.Sprintf("inherited from parent %s (%s)", r.ParentCompany, parentDomain)
		r.RevenueBand = parent.RevenueBand
		r.Quality.Set(model.QualityRevenue, model.ConfidenceMedium, reason)
		r.Diagnostics.Adjustments = append(r.Diagnostics.Adjustments,
			fmt.Sprintf("revenue band %s", reason))
		inherited = true
	}
	if parent.EmployeeBand.Ordinal() > r.EmployeeBand.Ordinal() {
		reason := fmt.Sprintf("inherited from parent %s (%s)", r.ParentCompany, parentDomain)
		r.EmployeeBand = parent.EmployeeBand
		r.Quality.Set(model.QualitySize, model.ConfidenceMedium, reason)
		r.Diagnostics.Adjustments = append(r.Diagnostics.Adjustments,
			fmt.Sprintf("employee band %s", reason))
		inherited = true
	}

	if inherited {
		recomputeICP(ec, e.icpCriteria)
		zap.L().Info("pipeline: inherited parent bands",
			zap.String("domain", ec.ResolvedDomain),
			zap.String("parent_domain", parentDomain),
		)
	}
	return nil
}
