package cost

import (
	"sync"
	"time"
)

// Report summarizes accumulated spend for one enrichment run. Counters are
// add-only while the run is in flight; a Report is a point-in-time copy.
type Report struct {
	SearchQueries   int     `json:"search_queries"`
	ReaderTokens    int     `json:"reader_tokens"`
	LLMInputTokens  int     `json:"llm_input_tokens"`
	LLMOutputTokens int     `json:"llm_output_tokens"`
	TotalUSD        float64 `json:"total_usd"`
}

// Accumulator collects add-only usage counters scoped to one enrichment
// context. Safe for concurrent use by fan-out stages.
type Accumulator struct {
	mu   sync.Mutex
	rep  Report
	calc *Calculator
}

// NewAccumulator creates an Accumulator priced by calc.
func NewAccumulator(calc *Calculator) *Accumulator {
	if calc == nil {
		calc = NewCalculator(DefaultRates())
	}
	return &Accumulator{calc: calc}
}

// AddSearchQuery records one web-search synthesis query.
func (a *Accumulator) AddSearchQuery() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rep.SearchQueries++
	a.rep.TotalUSD += a.calc.SearchQuery()
}

// AddReaderTokens records reader token consumption.
func (a *Accumulator) AddReaderTokens(tokens int) {
	if tokens <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rep.ReaderTokens += tokens
	a.rep.TotalUSD += a.calc.Reader(tokens)
}

// AddClaude records token usage for one Claude call.
func (a *Accumulator) AddClaude(model string, input, output, cacheWrite, cacheRead int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rep.LLMInputTokens += input + cacheWrite + cacheRead
	a.rep.LLMOutputTokens += output
	a.rep.TotalUSD += a.calc.Claude(model, input, output, cacheWrite, cacheRead)
}

// Report returns a copy of the current totals.
func (a *Accumulator) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rep
}

// StageTiming records how long one pipeline stage ran and how it ended.
type StageTiming struct {
	Stage  string `json:"stage"`
	Millis int64  `json:"elapsed_ms"`
	Status string `json:"status"`
}

// TimingTracker records per-stage elapsed times in execution order.
// Safe for concurrent use by fan-out stages.
type TimingTracker struct {
	mu      sync.Mutex
	timings []StageTiming
}

// NewTimingTracker creates an empty tracker.
func NewTimingTracker() *TimingTracker {
	return &TimingTracker{}
}

// Record appends one stage timing.
func (t *TimingTracker) Record(stage string, elapsed time.Duration, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timings = append(t.timings, StageTiming{
		Stage:  stage,
		Millis: elapsed.Milliseconds(),
		Status: status,
	})
}

// Timings returns a copy of recorded stage timings in order.
func (t *TimingTracker) Timings() []StageTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageTiming, len(t.timings))
	copy(out, t.timings)
	return out
}

// TotalMillis sums recorded stage durations.
func (t *TimingTracker) TotalMillis() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total int64
	for _, st := range t.timings {
		total += st.Millis
	}
	return total
}
