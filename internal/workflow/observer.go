package workflow

import (
	"context"
	"time"
)

// RunInfo identifies one Invoke.
type RunInfo struct {
	Graph string
	RunID string
}

// Observer receives lifecycle events. Observers cannot change control flow:
// their return values other than the context are ignored and panics are
// recovered.
type Observer interface {
	// OnStageStart may return a derived context (e.g. carrying a span) that
	// is passed to the stage and to OnStageEnd.
	OnStageStart(ctx context.Context, run RunInfo, stage StageID) context.Context
	OnStageEnd(ctx context.Context, run RunInfo, stage StageID, elapsed time.Duration, err error)
	OnRunEnd(ctx context.Context, run RunInfo, terminal StageID, elapsed time.Duration, err error)
}

// NopObserver can be embedded to implement only some events.
type NopObserver struct{}

func (NopObserver) OnStageStart(ctx context.Context, _ RunInfo, _ StageID) context.Context {
	return ctx
}

func (NopObserver) OnStageEnd(context.Context, RunInfo, StageID, time.Duration, error) {}

func (NopObserver) OnRunEnd(context.Context, RunInfo, StageID, time.Duration, error) {}

func safeStageStart(o Observer, ctx context.Context, run RunInfo, id StageID) (out context.Context) {
	out = ctx
	defer func() {
		if recover() != nil {
			out = ctx
		}
	}()
	if derived := o.OnStageStart(ctx, run, id); derived != nil {
		out = derived
	}
	return out
}

func safeStageEnd(o Observer, ctx context.Context, run RunInfo, id StageID, elapsed time.Duration, err error) {
	defer func() { _ = recover() }()
	o.OnStageEnd(ctx, run, id, elapsed, err)
}

func safeRunEnd(o Observer, ctx context.Context, run RunInfo, terminal StageID, elapsed time.Duration, err error) {
	defer func() { _ = recover() }()
	o.OnRunEnd(ctx, run, terminal, elapsed, err)
}
