// Package store persists company profiles and run diagnostics, and serves
// the approved industry-code taxonomy and the target-ICP code subset.
package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
)

// ErrNotFound is returned when no record exists for the given key.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Profiles, keyed by normalized domain.
	GetProfile(ctx context.Context, domain string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, profile *model.Profile) error

	// Run diagnostics.
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// Taxonomy.
	ListApprovedCodes(ctx context.Context) ([]model.CandidateIndustryCode, error)
	ListTargetCodes(ctx context.Context) ([]string, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// mergeMonotonic applies the monotonic-improvement rule before a re-save:
// a stored revenue or size band is only ever replaced by a band with a
// higher ordinal. A later, weaker enrichment run must not regress data a
// stronger run (or parent inheritance) already established.
func mergeMonotonic(existing, incoming *model.Profile) *model.Profile {
	if existing == nil {
		return incoming
	}
	merged := *incoming

	if existing.RevenueBand.Ordinal() > incoming.RevenueBand.Ordinal() {
		merged.RevenueBand = existing.RevenueBand
		if q, ok := existing.Quality[model.QualityRevenue]; ok {
			merged.Quality = merged.Quality.Clone()
			merged.Quality.Set(model.QualityRevenue, q.Confidence, q.Reasoning)
		}
		zap.L().Debug("store: kept stronger stored revenue band",
			zap.String("domain", incoming.Domain),
			zap.String("stored", string(existing.RevenueBand)),
			zap.String("incoming", string(incoming.RevenueBand)),
		)
	}
	if existing.EmployeeBand.Ordinal() > incoming.EmployeeBand.Ordinal() {
		merged.EmployeeBand = existing.EmployeeBand
		if q, ok := existing.Quality[model.QualitySize]; ok {
			merged.Quality = merged.Quality.Clone()
			merged.Quality.Set(model.QualitySize, q.Confidence, q.Reasoning)
		}
		zap.L().Debug("store: kept stronger stored employee band",
			zap.String("domain", incoming.Domain),
			zap.String("stored", string(existing.EmployeeBand)),
			zap.String("incoming", string(incoming.EmployeeBand)),
		)
	}
	return &merged
}
