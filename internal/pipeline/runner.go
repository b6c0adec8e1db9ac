package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/progress"
)

const (
	stageStatusComplete = "complete"
	stageStatusFailed   = "failed"
)

// StageFunc is one named pipeline stage operating on the shared Context.
type StageFunc func(ctx context.Context, ec *Context) error

// runStage is the pipeline's sole error-isolation boundary. It wraps fn
// with timing recorded under name regardless of outcome, emits progress
// events, and applies the critical/optional failure contract: a critical
// failure aborts the pipeline, an optional one is swallowed so later
// stages continue with degraded data.
func runStage(ctx context.Context, ec *Context, name string, critical bool, fn StageFunc) error {
	progress.Publish(ec.Progress, progress.Event{Stage: name, Status: progress.StatusStarted})

	start := time.Now()
	err := fn(ctx, ec)
	elapsed := time.Since(start)

	status := stageStatusComplete
	if err != nil {
		status = stageStatusFailed
	}
	ec.Timings.Record(name, elapsed, status)

	if err != nil {
		zap.L().Error("pipeline: stage failed",
			zap.String("stage", name),
			zap.Bool("critical", critical),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		progress.Publish(ec.Progress, progress.Event{
			Stage:   name,
			Status:  progress.StatusFailed,
			Message: err.Error(),
			Elapsed: elapsed,
			CostUSD: ec.Costs.Report().TotalUSD,
		})
		if critical {
			return eris.Wrapf(err, "pipeline: critical stage %s", name)
		}
		return nil
	}

	zap.L().Info("pipeline: stage complete",
		zap.String("stage", name),
		zap.Duration("elapsed", elapsed),
	)
	progress.Publish(ec.Progress, progress.Event{
		Stage:   name,
		Status:  progress.StatusDone,
		Elapsed: elapsed,
		CostUSD: ec.Costs.Report().TotalUSD,
	})
	return nil
}
