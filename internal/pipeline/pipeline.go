package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/classify"
	"github.com/sells-group/enrich-cli/internal/cost"
	"github.com/sells-group/enrich-cli/internal/icp"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/progress"
	"github.com/sells-group/enrich-cli/internal/store"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/reader"
	"github.com/sells-group/enrich-cli/pkg/search"
)

// Engine composes the enrichment stages with their collaborators.
type Engine struct {
	store      store.Store
	search     search.Client
	reader     reader.Client
	ai         anthropic.Client
	classifier *classify.Classifier
	calc       *cost.Calculator

	icpCriteria   icp.Criteria
	analysisModel string
	rankModel     string
}

// New creates an Engine with all dependencies. store may be nil for dry
// runs; results are then returned without being persisted. calc may be
// nil to price runs at the default rates.
func New(
	st store.Store,
	searchClient search.Client,
	readerClient reader.Client,
	aiClient anthropic.Client,
	classifier *classify.Classifier,
	calc *cost.Calculator,
	criteria icp.Criteria,
	analysisModel, rankModel string,
) *Engine {
	return &Engine{
		store:         st,
		search:        searchClient,
		reader:        readerClient,
		ai:            aiClient,
		classifier:    classifier,
		calc:          calc,
		icpCriteria:   criteria,
		analysisModel: analysisModel,
		rankModel:     rankModel,
	}
}

// stageSpec names one stage and its failure semantics.
type stageSpec struct {
	name     string
	critical bool
	fn       StageFunc
}

// Run executes the full enrichment pipeline for one submitted domain. The
// returned result always carries the cost/timing report and diagnostics,
// even when a critical stage failed and the record is only partial.
func (e *Engine) Run(ctx context.Context, submittedDomain, nameHint string, sink progress.Sink) (*model.EnrichmentResult, error) {
	ec := NewContext(submittedDomain, nameHint, sink, e.calc)
	log := zap.L().With(
		zap.String("run_id", ec.RunID),
		zap.String("domain", submittedDomain),
	)
	log.Info("pipeline: starting enrichment")

	stages := []stageSpec{
		{"resolve", true, e.stageResolve},
		{"identity", true, e.stageIdentity},
		{"lookups", false, e.stageLookups},
		{"urlselect", false, e.stageURLSelect},
		{"retrieve", false, e.stageRetrieve},
		{"validate_entity", false, e.stageValidateEntity},
		{"validate_linkedin", false, e.stageValidateLinkedIn},
		{"analysis", true, e.stageAnalysis},
		{"estimate", false, e.stageEstimate},
		{"parent", false, e.stageParent},
	}

	var runErr error
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := runStage(ctx, ec, s.name, s.critical, s.fn); err != nil {
			runErr = err
			break
		}
	}

	e.stageAssemble(ctx, ec, runErr)

	if runErr != nil {
		log.Error("pipeline: enrichment failed",
			zap.Error(runErr),
			zap.Float64("cost_usd", ec.Result.Cost.TotalUSD),
		)
		return ec.Result, runErr
	}

	log.Info("pipeline: enrichment complete",
		zap.String("resolved_domain", ec.ResolvedDomain),
		zap.Bool("icp_match", ec.Result.ICPMatch),
		zap.Float64("cost_usd", ec.Result.Cost.TotalUSD),
		zap.Int64("total_ms", ec.Timings.TotalMillis()),
	)
	return ec.Result, nil
}
