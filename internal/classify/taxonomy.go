// Package classify assigns industry codes from a bounded approved taxonomy
// using a retrieve-then-rank strategy: keyword buckets narrow the candidate
// list, a reasoning model ranks the survivors, and rule-based post-filtering
// rejects structurally inconsistent picks.
package classify

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/enrich-cli/internal/cache"
	"github.com/sells-group/enrich-cli/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

// Taxonomy is the closed approved code set. Codes outside it are never
// attached to a result.
type Taxonomy struct {
	codes  []model.CandidateIndustryCode
	byCode map[string]string
}

// NewTaxonomy builds a taxonomy from an approved code list, dropping
// duplicates and entries with an empty code.
func NewTaxonomy(codes []model.CandidateIndustryCode) *Taxonomy {
	t := &Taxonomy{byCode: make(map[string]string, len(codes))}
	for _, c := range codes {
		if c.Code == "" {
			continue
		}
		if _, dup := t.byCode[c.Code]; dup {
			continue
		}
		t.byCode[c.Code] = c.Description
		t.codes = append(t.codes, c)
	}
	return t
}

// Contains reports whether code exists verbatim in the approved set.
func (t *Taxonomy) Contains(code string) bool {
	_, ok := t.byCode[code]
	return ok
}

// Description returns the canonical description for an approved code.
func (t *Taxonomy) Description(code string) string {
	return t.byCode[code]
}

// Codes returns the full approved list in load order.
func (t *Taxonomy) Codes() []model.CandidateIndustryCode {
	return t.codes
}

func (t *Taxonomy) Len() int {
	return len(t.codes)
}

var (
	seedOnce sync.Once
	seedTax  *Taxonomy
	seedErr  error
)

// SeedTaxonomy parses the embedded taxonomy seed. The seed ships with the
// binary so classification still works without a datastore.
func SeedTaxonomy() (*Taxonomy, error) {
	seedOnce.Do(func() {
		var doc struct {
			Codes []struct {
				Code        string `yaml:"code"`
				Description string `yaml:"description"`
			} `yaml:"codes"`
		}
		if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
			seedErr = eris.Wrap(err, "classify: parse embedded taxonomy seed")
			return
		}
		codes := make([]model.CandidateIndustryCode, 0, len(doc.Codes))
		for _, c := range doc.Codes {
			codes = append(codes, model.CandidateIndustryCode{
				Code:        c.Code,
				Description: c.Description,
			})
		}
		seedTax = NewTaxonomy(codes)
	})
	return seedTax, seedErr
}

// CodeSource lists approved industry codes, usually backed by the datastore.
type CodeSource interface {
	ListApprovedCodes(ctx context.Context) ([]model.CandidateIndustryCode, error)
}

// Loader caches the approved taxonomy with a TTL. Staleness only costs an
// extra fetch, so no locking beyond the cache's own.
type Loader struct {
	src   CodeSource
	cache *cache.TTL[*Taxonomy]
}

// NewLoader creates a taxonomy loader. src may be nil, in which case the
// embedded seed is always used.
func NewLoader(src CodeSource, ttl time.Duration) *Loader {
	return &Loader{
		src:   src,
		cache: cache.NewTTL[*Taxonomy](ttl),
	}
}

// Load returns the approved taxonomy, consulting the source at most once
// per TTL window. A source failure falls back to the embedded seed.
func (l *Loader) Load(ctx context.Context) (*Taxonomy, error) {
	return l.cache.GetOrFill(func() (*Taxonomy, error) {
		if l.src != nil {
			codes, err := l.src.ListApprovedCodes(ctx)
			if err == nil && len(codes) > 0 {
				return NewTaxonomy(codes), nil
			}
			if err != nil {
				zap.L().Warn("classify: approved code lookup failed, using embedded seed",
					zap.Error(err),
				)
			}
		}
		return SeedTaxonomy()
	})
}
