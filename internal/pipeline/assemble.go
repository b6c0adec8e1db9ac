package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
)

// stageAssemble freezes the result: cost and timing reports are read out,
// the completion stamp is set, and the record is persisted. It always
// runs, even after a critical failure, so the caller gets the diagnostics
// and cost trail either way. Only a complete run's profile is stored; a
// failed run saves its run record alone.
func (e *Engine) stageAssemble(ctx context.Context, ec *Context, runErr error) {
	r := ec.Result
	r.CompletedAt = time.Now().UTC()
	r.Cost = ec.Costs.Report()
	r.StageTimings = ec.Timings.Timings()

	status := model.RunStatusComplete
	errText := ""
	if runErr != nil {
		status = model.RunStatusFailed
		errText = runErr.Error()
	}

	if e.store == nil {
		return
	}

	if runErr == nil {
		if err := e.store.UpsertProfile(ctx, r.ToProfile()); err != nil {
			zap.L().Error("pipeline: persist profile failed",
				zap.String("domain", r.Domain),
				zap.Error(err),
			)
		}
	}

	run := &model.Run{
		ID:           r.RunID,
		Domain:       r.Domain,
		Status:       status,
		Error:        errText,
		Diagnostics:  r.Diagnostics,
		Cost:         r.Cost,
		StageTimings: r.StageTimings,
		CreatedAt:    r.CompletedAt,
	}
	if err := e.store.SaveRun(ctx, run); err != nil {
		zap.L().Error("pipeline: persist run failed",
			zap.String("run_id", r.RunID),
			zap.Error(err),
		)
	}
}
