package workflow

import (
	"fmt"
	"sort"
	"strings"

	apperrors "candidate-screening/internal/common/errors"
)

// Option configures a compiled Runnable.
type Option func(*options)

type options struct {
	observers []Observer
}

// WithObserver attaches lifecycle observers, notified in the order given.
func WithObserver(obs ...Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs...)
	}
}

// route is the single outgoing transition of a non-terminal stage.
type route[S any] struct {
	to      StageID
	router  Router[S]
	targets map[StageID]struct{}
}

// Compile checks the definition and freezes it into a Runnable. All problems
// found are reported together in one GRAPH_DEFINITION_ERROR.
func (g *Graph[S, P]) Compile(opts ...Option) (*Runnable[S, P], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	problems := append([]string(nil), g.problems...)
	declared := func(id StageID) bool {
		_, ok := g.stages[id]
		return ok
	}

	if g.merge == nil {
		problems = append(problems, "no merge function")
	}
	if g.entry == "" {
		problems = append(problems, "no entry stage")
	} else if !declared(g.entry) {
		problems = append(problems, fmt.Sprintf("entry stage %q is not declared", g.entry))
	}

	routes := make(map[StageID]*route[S])
	routeCount := make(map[StageID]int)

	for _, e := range g.edges {
		if !declared(e.from) {
			problems = append(problems, fmt.Sprintf("edge %s -> %s: source %q is not declared", e.from, e.to, e.from))
		}
		if !declared(e.to) {
			problems = append(problems, fmt.Sprintf("edge %s -> %s: target %q is not declared", e.from, e.to, e.to))
		}
		routeCount[e.from]++
		routes[e.from] = &route[S]{to: e.to}
	}

	for _, b := range g.branches {
		if !declared(b.from) {
			problems = append(problems, fmt.Sprintf("branch at %q: stage is not declared", b.from))
		}
		routeCount[b.from]++

		allowed := make(map[StageID]struct{}, len(b.targets))
		for _, t := range b.targets {
			if !declared(t) {
				problems = append(problems, fmt.Sprintf("branch at %s: target %q is not declared", b.from, t))
			}
			allowed[t] = struct{}{}
		}

		if b.router == nil {
			problems = append(problems, fmt.Sprintf("branch at %s: no router", b.from))
			continue
		}
		if err := b.router.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("branch at %s: %s", b.from, apperrors.AsStandardError(err).Details))
		}
		for _, t := range b.router.Targets() {
			if _, ok := allowed[t]; !ok {
				problems = append(problems, fmt.Sprintf("branch at %s: router can return %q, which is not a declared target", b.from, t))
			}
		}
		routes[b.from] = &route[S]{router: b.router, targets: allowed}
	}

	multi := make([]string, 0)
	for id, n := range routeCount {
		if n > 1 {
			multi = append(multi, string(id))
		}
	}
	sort.Strings(multi)
	for _, id := range multi {
		problems = append(problems, fmt.Sprintf("stage %q has %d outgoing routes", id, routeCount[StageID(id)]))
	}

	if len(problems) == 0 {
		if cycle := findCycle(g.entry, routes); cycle != nil {
			problems = append(problems, fmt.Sprintf("cycle reachable from entry: %s", joinIDs(cycle)))
		}
	}

	if len(problems) > 0 {
		return nil, apperrors.NewGraphDefinitionError(fmt.Sprintf("graph %s: %s", g.name, strings.Join(problems, "; ")))
	}

	stages := make(map[StageID]*stage[S, P], len(g.stages))
	for id, st := range g.stages {
		stages[id] = st
	}

	return &Runnable[S, P]{
		name:      g.name,
		entry:     g.entry,
		merge:     g.merge,
		stages:    stages,
		routes:    routes,
		observers: append([]Observer(nil), o.observers...),
	}, nil
}

func successors[S any](r *route[S]) []StageID {
	if r == nil {
		return nil
	}
	if r.router == nil {
		return []StageID{r.to}
	}
	out := make([]StageID, 0, len(r.targets))
	for t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findCycle runs a DFS from entry and returns the first cycle found as a path
// that starts and ends on the same stage.
func findCycle[S any](entry StageID, routes map[StageID]*route[S]) []StageID {
	const (
		unvisited = iota
		onStack
		done
	)
	color := make(map[StageID]int)
	var stack []StageID
	var cycle []StageID

	var visit func(id StageID) bool
	visit = func(id StageID) bool {
		color[id] = onStack
		stack = append(stack, id)
		for _, next := range successors(routes[id]) {
			switch color[next] {
			case onStack:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]StageID(nil), stack[i:]...), next)
						break
					}
				}
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = done
		return false
	}

	if visit(entry) {
		return cycle
	}
	return nil
}

func joinIDs(ids []StageID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
