package workflow

import "fmt"

// StageError attributes a run failure to the stage (or branch point) that
// produced it. The cause stays reachable through errors.Is and errors.As.
type StageError struct {
	Graph string
	Stage StageID
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow %s: stage %s: %v", e.Graph, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ErrorFields locates the failure for job error variables and logs.
func (e *StageError) ErrorFields() map[string]interface{} {
	return map[string]interface{}{
		"graph": e.Graph,
		"stage": string(e.Stage),
	}
}
