package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EntityScope tags whether a piece of evidence describes the operating
// company itself or its ultimate parent.
type EntityScope string

const (
	ScopeOperatingCompany EntityScope = "operating_company"
	ScopeUltimateParent   EntityScope = "ultimate_parent"
)

// Evidence is a single sourced observation of a fact (a revenue figure or
// an employee count). Evidence is never mutated after creation; reconciliation
// derives new values instead of editing history.
type Evidence struct {
	Amount     string      `json:"amount"`
	Source     string      `json:"source"`
	Year       string      `json:"year,omitempty"`
	IsEstimate bool        `json:"is_estimate"`
	Scope      EntityScope `json:"scope,omitempty"`
}

// UnmarshalJSON tolerates the loose shapes LLM responses produce: amount may
// be a JSON number or a string, year may be a number, and scope values are
// normalized to the two known tags.
func (e *Evidence) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount     json.RawMessage `json:"amount"`
		Source     string          `json:"source"`
		Year       json.RawMessage `json:"year"`
		IsEstimate bool            `json:"is_estimate"`
		Scope      string          `json:"scope"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Amount = rawScalarString(raw.Amount)
	e.Source = raw.Source
	e.Year = rawScalarString(raw.Year)
	e.IsEstimate = raw.IsEstimate
	e.Scope = normalizeScope(raw.Scope)
	return nil
}

// normalizeScope maps free-text scope tags onto the two known values.
// Unrecognized tags become empty (treated as operating-company downstream).
func normalizeScope(s string) EntityScope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "operating_company", "operating company", "subsidiary", "company":
		return ScopeOperatingCompany
	case "ultimate_parent", "ultimate parent", "parent", "parent_company", "holding_company":
		return ScopeUltimateParent
	}
	return ""
}

// rawScalarString renders a raw JSON scalar (string or number) as a string.
func rawScalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// NormalizeEvidence converts a raw JSON fragment that may be a single
// evidence object, a list of them, a bare scalar, or absent into one
// canonical slice. This is the boundary normalization for the loosely-typed
// intermediate shapes coming back from search and analysis services.
func NormalizeEvidence(raw json.RawMessage, defaultSource string) []Evidence {
	if len(raw) == 0 {
		return nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var list []Evidence
	if err := json.Unmarshal(raw, &list); err == nil {
		return compactEvidence(list, defaultSource)
	}

	var single Evidence
	if err := json.Unmarshal(raw, &single); err == nil {
		return compactEvidence([]Evidence{single}, defaultSource)
	}

	// Bare scalar: treat it as an amount with the default source.
	if amount := rawScalarString(raw); amount != "" {
		return []Evidence{{Amount: amount, Source: defaultSource, IsEstimate: true}}
	}
	return nil
}

// compactEvidence drops entries with no amount and backfills missing sources.
func compactEvidence(list []Evidence, defaultSource string) []Evidence {
	var out []Evidence
	for _, e := range list {
		if strings.TrimSpace(e.Amount) == "" {
			continue
		}
		if e.Source == "" {
			e.Source = defaultSource
		}
		out = append(out, e)
	}
	return out
}
