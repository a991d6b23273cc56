package workflow

import (
	"fmt"
	"strings"

	apperrors "candidate-screening/internal/common/errors"
)

// Router picks the next stage at a branch point.
type Router[S any] interface {
	// Next returns the stage that follows.
	Next(state S) (StageID, error)
	// Targets lists every stage Next can return.
	Targets() []StageID
	// Validate reports whether Next is defined for every input it can see.
	Validate() error
}

// KeyFunc extracts the decision key from state. It returns an error when the
// state cannot be keyed, e.g. a field that should be set is not.
type KeyFunc[S any, K comparable] func(state S) (K, error)

// DecisionTable is a Router backed by an explicit lookup table over a closed
// key domain. Validate fails unless every domain value has a row.
type DecisionTable[S any, K comparable] struct {
	key    KeyFunc[S, K]
	domain []K
	rows   map[K]StageID
}

// NewDecisionTable builds a table router. domain enumerates every key the
// KeyFunc can produce.
func NewDecisionTable[S any, K comparable](key KeyFunc[S, K], domain []K, rows map[K]StageID) *DecisionTable[S, K] {
	return &DecisionTable[S, K]{key: key, domain: domain, rows: rows}
}

func (d *DecisionTable[S, K]) Validate() error {
	if d.key == nil {
		return apperrors.NewGraphDefinitionError("decision table has no key function")
	}
	if len(d.domain) == 0 {
		return apperrors.NewGraphDefinitionError("decision table has an empty domain")
	}

	inDomain := make(map[K]struct{}, len(d.domain))
	var missing []string
	for _, k := range d.domain {
		inDomain[k] = struct{}{}
		if _, ok := d.rows[k]; !ok {
			missing = append(missing, fmt.Sprintf("%v", k))
		}
	}
	if len(missing) > 0 {
		return apperrors.NewGraphDefinitionError(
			fmt.Sprintf("decision table incomplete, no row for %s", strings.Join(missing, ", ")))
	}

	for k := range d.rows {
		if _, ok := inDomain[k]; !ok {
			return apperrors.NewGraphDefinitionError(fmt.Sprintf("decision table row %v is outside its domain", k))
		}
	}
	return nil
}

// Targets returns the distinct stages named by the table, in domain order.
func (d *DecisionTable[S, K]) Targets() []StageID {
	seen := make(map[StageID]struct{})
	var out []StageID
	for _, k := range d.domain {
		id, ok := d.rows[k]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (d *DecisionTable[S, K]) Next(state S) (StageID, error) {
	k, err := d.key(state)
	if err != nil {
		return "", err
	}
	id, ok := d.rows[k]
	if !ok {
		return "", apperrors.NewGraphDefinitionError(fmt.Sprintf("decision table has no row for %v", k))
	}
	return id, nil
}
