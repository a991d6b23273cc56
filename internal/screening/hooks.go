package screening

import (
	"context"
	"time"

	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/common/metrics"
	"candidate-screening/internal/common/observability"
	"candidate-screening/internal/workflow"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LogObserver writes one structured line per stage and per run.
type LogObserver struct {
	Logger logger.Logger
}

func (o LogObserver) OnStageStart(ctx context.Context, run workflow.RunInfo, stage workflow.StageID) context.Context {
	o.Logger.Debug("stage started", map[string]interface{}{
		"runId": run.RunID,
		"stage": string(stage),
	})
	return ctx
}

func (o LogObserver) OnStageEnd(_ context.Context, run workflow.RunInfo, stage workflow.StageID, elapsed time.Duration, err error) {
	fields := map[string]interface{}{
		"runId":    run.RunID,
		"stage":    string(stage),
		"duration": elapsed.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		fields["errorCode"] = string(apperrors.CodeOf(err))
		o.Logger.Warn("stage failed", fields)
		return
	}
	o.Logger.Info("stage completed", fields)
}

func (o LogObserver) OnRunEnd(_ context.Context, run workflow.RunInfo, terminal workflow.StageID, elapsed time.Duration, err error) {
	fields := map[string]interface{}{
		"runId":    run.RunID,
		"stage":    string(terminal),
		"duration": elapsed.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		o.Logger.Error("screening failed", fields)
		return
	}
	o.Logger.Info("screening completed", fields)
}

// MetricsObserver feeds the prometheus stage and outcome vectors.
type MetricsObserver struct {
	workflow.NopObserver
}

func (MetricsObserver) OnStageEnd(_ context.Context, _ workflow.RunInfo, stage workflow.StageID, elapsed time.Duration, err error) {
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		metrics.StageFailures.WithLabelValues(string(stage), string(apperrors.CodeOf(err))).Inc()
	}
}

func (MetricsObserver) OnRunEnd(_ context.Context, _ workflow.RunInfo, terminal workflow.StageID, _ time.Duration, err error) {
	if err == nil {
		metrics.ScreeningOutcomes.WithLabelValues(string(terminal)).Inc()
	}
}

// TraceObserver opens a span per stage and records run metrics through otel.
type TraceObserver struct {
	Obs *observability.Observability
}

func (o TraceObserver) OnStageStart(ctx context.Context, run workflow.RunInfo, stage workflow.StageID) context.Context {
	ctx, _ = o.Obs.StartSpan(ctx, "screening."+string(stage),
		attribute.String("screening.run_id", run.RunID),
		attribute.String("screening.stage", string(stage)),
	)
	return ctx
}

func (o TraceObserver) OnStageEnd(ctx context.Context, _ workflow.RunInfo, _ workflow.StageID, _ time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}

func (o TraceObserver) OnRunEnd(ctx context.Context, _ workflow.RunInfo, terminal workflow.StageID, elapsed time.Duration, err error) {
	outcome := string(terminal)
	if err != nil {
		outcome = "failed"
	}
	o.Obs.RecordRun(ctx, outcome)
	o.Obs.RecordRunDuration(ctx, elapsed, outcome)
}
