package workflow

import (
	"context"
	"fmt"
	"time"

	apperrors "candidate-screening/internal/common/errors"

	"github.com/google/uuid"
)

// Runnable is a compiled graph. It is immutable and safe for concurrent
// Invoke calls; each call owns its state.
type Runnable[S any, P Patch] struct {
	name      string
	entry     StageID
	merge     MergeFunc[S, P]
	stages    map[StageID]*stage[S, P]
	routes    map[StageID]*route[S]
	observers []Observer
}

// Run is the record of one completed Invoke.
type Run[S any] struct {
	ID       string
	State    S
	Path     []StageID
	Terminal StageID
	Elapsed  time.Duration
}

// Name returns the graph name.
func (r *Runnable[S, P]) Name() string { return r.name }

// Invoke runs the graph from the entry stage until a terminal stage completes.
// Stages run sequentially and at most once. The context is checked before each
// stage; on any failure no state is returned.
func (r *Runnable[S, P]) Invoke(ctx context.Context, initial S) (*Run[S], error) {
	info := RunInfo{Graph: r.name, RunID: uuid.NewString()}
	start := time.Now()

	state := initial
	visited := make(map[StageID]struct{}, len(r.stages))
	path := make([]StageID, 0, len(r.stages))
	current := r.entry

	fail := func(stageID StageID, err error) (*Run[S], error) {
		for _, o := range r.observers {
			safeRunEnd(o, ctx, info, stageID, time.Since(start), err)
		}
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(current, &StageError{Graph: r.name, Stage: current, Err: err})
		}
		if _, seen := visited[current]; seen {
			return fail(current, &StageError{Graph: r.name, Stage: current,
				Err: apperrors.NewGraphDefinitionError(fmt.Sprintf("stage %q reached twice", current))})
		}
		visited[current] = struct{}{}

		next, err := r.runStage(ctx, info, current, &state)
		path = append(path, current)
		if err != nil {
			return fail(current, err)
		}

		if next == "" {
			run := &Run[S]{
				ID:       info.RunID,
				State:    state,
				Path:     path,
				Terminal: current,
				Elapsed:  time.Since(start),
			}
			for _, o := range r.observers {
				safeRunEnd(o, ctx, info, current, run.Elapsed, nil)
			}
			return run, nil
		}
		current = next
	}
}

// runStage executes one stage, merges its patch into state and resolves the
// next stage ("" when terminal).
func (r *Runnable[S, P]) runStage(ctx context.Context, info RunInfo, id StageID, state *S) (StageID, error) {
	st, ok := r.stages[id]
	if !ok {
		return "", &StageError{Graph: r.name, Stage: id,
			Err: apperrors.NewGraphDefinitionError(fmt.Sprintf("stage %q is not declared", id))}
	}

	stageCtx := ctx
	for _, o := range r.observers {
		stageCtx = safeStageStart(o, stageCtx, info, id)
	}
	began := time.Now()

	err := r.apply(stageCtx, st, state)
	var next StageID
	if err == nil {
		next, err = r.resolve(id, *state)
	}

	for _, o := range r.observers {
		safeStageEnd(o, stageCtx, info, id, time.Since(began), err)
	}
	return next, err
}

func (r *Runnable[S, P]) apply(ctx context.Context, st *stage[S, P], state *S) error {
	patch, err := st.run(ctx, *state)
	if err != nil {
		return &StageError{Graph: r.name, Stage: st.id, Err: err}
	}
	for _, f := range patch.Fields() {
		if _, ok := st.writes[f]; !ok {
			return &StageError{Graph: r.name, Stage: st.id, Err: apperrors.NewStageContractError(string(st.id), f)}
		}
	}
	*state = r.merge(*state, patch)
	return nil
}

func (r *Runnable[S, P]) resolve(from StageID, state S) (StageID, error) {
	rt := r.routes[from]
	if rt == nil {
		return "", nil
	}
	if rt.router == nil {
		return rt.to, nil
	}

	next, err := rt.router.Next(state)
	if err != nil {
		return "", &StageError{Graph: r.name, Stage: from, Err: err}
	}
	if _, ok := rt.targets[next]; !ok {
		return "", &StageError{Graph: r.name, Stage: from,
			Err: apperrors.NewGraphDefinitionError(fmt.Sprintf("router returned undeclared target %q", next))}
	}
	return next, nil
}
