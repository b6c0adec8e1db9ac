// Package reconcile resolves conflicting revenue and employee evidence into
// banded estimates with confidence labels and recorded reasoning.
package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches a number with an optional magnitude suffix, e.g.
// "$42M", "42 million", "1.2bn", "500,000".
var amountPattern = regexp.MustCompile(`(?i)([\d][\d,]*\.?\d*)\s*(k|thousand|mm|m|million|bn|b|billion)?`)

var magnitude = map[string]float64{
	"":         1,
	"k":        1_000,
	"thousand": 1_000,
	"m":        1_000_000,
	"mm":       1_000_000,
	"million":  1_000_000,
	"b":        1_000_000_000,
	"bn":       1_000_000_000,
	"billion":  1_000_000_000,
}

// ParseAmount parses a human-written revenue amount into USD. It tolerates
// currency symbols, thousands separators, and magnitude suffixes. Returns
// false when no usable number is present.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Strip common currency markers before matching.
	s = strings.NewReplacer("$", "", "USD", "", "usd", "", "US$", "").Replace(s)

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	num := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	mul, ok := magnitude[strings.ToLower(m[2])]
	if !ok {
		mul = 1
	}
	usd := val * mul
	if usd < 0 {
		return 0, false
	}
	return usd, true
}
