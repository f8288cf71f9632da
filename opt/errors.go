package opt

import "errors"

// Fatal error kinds. Both unwind the run immediately; the orchestrator
// reports the iteration count reached alongside them.
var (
	// ErrConfiguration marks setup defects: a boundary condition or load
	// query matching zero nodes, or an element-count mismatch between the
	// level set and finite element meshes.
	ErrConfiguration = errors.New("configuration error")

	// ErrDivergence marks a failed elasticity solve. There is no retry
	// policy for the linear solve.
	ErrDivergence = errors.New("numerical divergence")
)
