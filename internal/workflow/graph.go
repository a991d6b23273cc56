// Package workflow compiles and runs small directed graphs of named stages
// over a caller-defined state type. A graph has one entry stage, static edges
// and decision-table branches; a stage with no outgoing route is terminal.
package workflow

import (
	"context"
	"fmt"
)

// StageID names a stage within a graph.
type StageID string

func (id StageID) String() string { return string(id) }

// Patch is the partial state a stage returns. Fields lists the state fields
// the patch sets, so the engine can check them against the stage's write-set.
type Patch interface {
	Fields() []string
}

// StageFunc computes a patch from the current state. It must not mutate state.
type StageFunc[S any, P Patch] func(ctx context.Context, state S) (P, error)

// MergeFunc applies a patch to a state, overwriting the fields it sets.
type MergeFunc[S any, P Patch] func(state S, patch P) S

type stage[S any, P Patch] struct {
	id     StageID
	writes map[string]struct{}
	run    StageFunc[S, P]
}

type edge struct {
	from StageID
	to   StageID
}

type branch[S any] struct {
	from    StageID
	router  Router[S]
	targets []StageID
}

// Graph is a mutable graph definition. Build it, then Compile it once.
// Definition problems are collected and reported by Compile.
type Graph[S any, P Patch] struct {
	name     string
	merge    MergeFunc[S, P]
	stages   map[StageID]*stage[S, P]
	order    []StageID
	edges    []edge
	branches []branch[S]
	entry    StageID
	problems []string
}

// NewGraph starts a graph definition.
func NewGraph[S any, P Patch](name string, merge MergeFunc[S, P]) *Graph[S, P] {
	return &Graph[S, P]{
		name:   name,
		merge:  merge,
		stages: make(map[StageID]*stage[S, P]),
	}
}

// AddStage registers a stage with the state fields it may write.
func (g *Graph[S, P]) AddStage(id StageID, writes []string, fn StageFunc[S, P]) *Graph[S, P] {
	if _, exists := g.stages[id]; exists {
		g.problems = append(g.problems, fmt.Sprintf("duplicate stage %q", id))
		return g
	}
	if fn == nil {
		g.problems = append(g.problems, fmt.Sprintf("stage %q has no function", id))
	}

	ws := make(map[string]struct{}, len(writes))
	for _, w := range writes {
		ws[w] = struct{}{}
	}
	g.stages[id] = &stage[S, P]{id: id, writes: ws, run: fn}
	g.order = append(g.order, id)
	return g
}

// AddEdge adds an unconditional transition.
func (g *Graph[S, P]) AddEdge(from, to StageID) *Graph[S, P] {
	g.edges = append(g.edges, edge{from: from, to: to})
	return g
}

// AddBranch makes router choose the stage that follows from. targets is the
// complete set of stages the router is allowed to return.
func (g *Graph[S, P]) AddBranch(from StageID, router Router[S], targets ...StageID) *Graph[S, P] {
	g.branches = append(g.branches, branch[S]{from: from, router: router, targets: targets})
	return g
}

// SetEntry names the stage every run starts from.
func (g *Graph[S, P]) SetEntry(id StageID) *Graph[S, P] {
	g.entry = id
	return g
}

// Name returns the graph name.
func (g *Graph[S, P]) Name() string { return g.name }
