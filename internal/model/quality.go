package model

// Confidence labels how much trust a derived field deserves.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Quality pairs a confidence label with the reasoning behind it.
// Reasoning is always non-empty when a confidence is set.
type Quality struct {
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

// Field names for quality metrics.
const (
	QualityLocation = "location"
	QualityRevenue  = "revenue"
	QualitySize     = "size"
	QualityIndustry = "industry"
)

// QualityMetrics holds per-field quality entries. Every overwrite of a
// derived value must go through Set so the paired entry is replaced in the
// same operation and never left stale.
type QualityMetrics map[string]Quality

// Set records confidence and reasoning for a field. An empty reasoning is
// replaced with a placeholder so the non-empty invariant holds even on
// sloppy call sites.
func (m QualityMetrics) Set(field string, conf Confidence, reasoning string) {
	if reasoning == "" {
		reasoning = "no reasoning recorded"
	}
	m[field] = Quality{Confidence: conf, Reasoning: reasoning}
}

// Get returns the entry for a field and whether one exists.
func (m QualityMetrics) Get(field string) (Quality, bool) {
	q, ok := m[field]
	return q, ok
}

// Clone returns an independent copy.
func (m QualityMetrics) Clone() QualityMetrics {
	out := make(QualityMetrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
