package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
)

// BlockRule rejects codes structurally inconsistent with the detected
// business type. Trigger keywords activate the rule; Unless keywords are
// the anti-pattern that suppresses it for genuinely hybrid businesses.
type BlockRule struct {
	Name            string
	Trigger         []string
	BlockedPrefixes []string
	Unless          []string
}

// blockRules is evaluated in declared order. The order matters: earlier
// rules can remove a code before a later rule would have considered it.
var blockRules = []BlockRule{
	{
		Name:            "manufacturer-blocks-wholesale",
		Trigger:         []string{"manufactur", "fabricat", "factory", "production line"},
		BlockedPrefixes: []string{"42"},
		Unless:          []string{"distributor", "distribution", "wholesale"},
	},
	{
		Name:            "manufacturer-blocks-retail",
		Trigger:         []string{"manufactur", "fabricat", "factory"},
		BlockedPrefixes: []string{"44", "45"},
		Unless:          []string{"retail", "store", "direct-to-consumer", "d2c"},
	},
	{
		Name:            "services-block-goods-production",
		Trigger:         []string{"consulting", "advisory", "agency", "law firm", "accounting"},
		BlockedPrefixes: []string{"31", "32", "33"},
		Unless:          []string{"manufactur", "product line"},
	},
	{
		Name:            "software-blocks-wired-carrier",
		Trigger:         []string{"software", "saas"},
		BlockedPrefixes: []string{"5173"},
		Unless:          []string{"telecom", "carrier", "fiber"},
	},
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ApplyBlockRules filters selected codes against the ordered rule set.
// Returns the surviving codes and the names of rules that fired.
func ApplyBlockRules(description string, codes []model.CandidateIndustryCode) ([]model.CandidateIndustryCode, []string) {
	lower := strings.ToLower(description)
	kept := codes
	var fired []string

	for _, rule := range blockRules {
		if !containsAny(lower, rule.Trigger) {
			continue
		}
		if containsAny(lower, rule.Unless) {
			continue
		}

		var next []model.CandidateIndustryCode
		blockedAny := false
		for _, c := range kept {
			blocked := false
			for _, p := range rule.BlockedPrefixes {
				if strings.HasPrefix(c.Code, p) {
					blocked = true
					break
				}
			}
			if blocked {
				blockedAny = true
				zap.L().Debug("classify: code blocked by rule",
					zap.String("rule", rule.Name),
					zap.String("code", c.Code),
				)
				continue
			}
			next = append(next, c)
		}
		kept = next
		if blockedAny {
			fired = append(fired, rule.Name)
		}
	}

	return kept, fired
}
