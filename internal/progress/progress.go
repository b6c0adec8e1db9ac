// Package progress reports pipeline stage events to an observer, typically
// the CLI. Sinks receive one event per stage transition plus a final summary.
package progress

import (
	"time"

	"go.uber.org/zap"
)

// Status describes where a stage is in its lifecycle.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is a single progress notification emitted by the stage runner.
type Event struct {
	Stage   string
	Status  Status
	Message string
	Elapsed time.Duration
	CostUSD float64
}

// Sink receives progress events. Implementations must tolerate
// concurrent Publish calls from parallel stages.
type Sink interface {
	Publish(ev Event)
}

// Publish sends an event to the sink if one is set. A nil sink drops
// events, so callers never need to guard.
func Publish(s Sink, ev Event) {
	if s == nil {
		return
	}
	s.Publish(ev)
}

// LogSink writes progress events to the global zap logger.
type LogSink struct{}

func (LogSink) Publish(ev Event) {
	fields := []zap.Field{
		zap.String("stage", ev.Stage),
		zap.String("status", string(ev.Status)),
	}
	if ev.Message != "" {
		fields = append(fields, zap.String("message", ev.Message))
	}
	if ev.Elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", ev.Elapsed))
	}
	if ev.CostUSD > 0 {
		fields = append(fields, zap.Float64("cost_usd", ev.CostUSD))
	}
	zap.L().Info("pipeline progress", fields...)
}
