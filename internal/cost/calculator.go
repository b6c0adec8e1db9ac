package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchRate           `yaml:"search" mapstructure:"search"`
	Reader    ReaderRate           `yaml:"reader" mapstructure:"reader"`
}

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// SearchRate holds web-search synthesis pricing.
type SearchRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// ReaderRate holds page-content retrieval pricing.
type ReaderRate struct {
	PerMTok float64 `yaml:"per_mtok" mapstructure:"per_mtok"`
}

// Calculator computes USD costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of one Claude call.
func (c *Calculator) Claude(model string, input, output, cacheWrite, cacheRead int) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	cwCost := (float64(cacheWrite) / 1e6) * rate.Input * rate.CacheWriteMul
	crCost := (float64(cacheRead) / 1e6) * rate.Input * rate.CacheReadMul
	return inCost + outCost + cwCost + crCost
}

// SearchQuery returns the flat cost per search-synthesis query.
func (c *Calculator) SearchQuery() float64 {
	return c.rates.Search.PerQuery
}

// Reader computes the cost of reader token consumption.
func (c *Calculator) Reader(tokens int) float64 {
	return (float64(tokens) / 1e6) * c.rates.Reader.PerMTok
}

// RatesWithDefaults overlays configured rates on the defaults. Anthropic
// model entries are merged per model; search and reader rates replace the
// default only when set to a positive value.
func RatesWithDefaults(overrides Rates) Rates {
	rates := DefaultRates()
	for model, rate := range overrides.Anthropic {
		rates.Anthropic[model] = rate
	}
	if overrides.Search.PerQuery > 0 {
		rates.Search = overrides.Search
	}
	if overrides.Reader.PerMTok > 0 {
		rates.Reader = overrides.Reader
	}
	return rates
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00, CacheWriteMul: 1.25, CacheReadMul: 0.1,
			},
		},
		Search: SearchRate{PerQuery: 0.005},
		Reader: ReaderRate{PerMTok: 0.02},
	}
}
