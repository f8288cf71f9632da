package opt

// FieldSelector chooses which sensitivity field the engine interpolates to
// the boundary.
type FieldSelector uint8

const (
	FieldCompliance FieldSelector = iota
	FieldStress
)

// BoundaryPoint is a discretized sample on the zero contour of the level
// set. The point set is rebuilt from the boundary discretization each
// iteration; sensitivities and velocity are overwritten in place and carry
// no state between iterations.
type BoundaryPoint struct {
	X, Y float64

	// Sensitivities holds [objective gradient, constraint gradient] for
	// the current iteration.
	Sensitivities [2]float64

	// Velocity is the outward-normal advection speed assigned by the
	// sub-solver.
	Velocity float64

	// Length is the boundary length attributed to this point (half the
	// combined length of its adjacent segments).
	Length float64

	// Fixed marks points that must not move, e.g. near load application.
	Fixed bool
}

// Extents describes the rectangular design domain.
type Extents struct {
	Width  float64
	Height float64
}

// AreaState is the area bookkeeping handed to the sub-solver.
type AreaState struct {
	BoundaryArea float64 // current structural area from the discretization
	MeshArea     float64 // area of the active design domain
	MaxArea      float64 // maximum material area as a fraction of MeshArea

	// ConstraintDistance is meshArea*maxArea - boundaryArea, the single
	// scalar constraint the sub-solver works against. Positive is slack.
	ConstraintDistance float64
}

// OptimizationResult is what one constrained sub-solve returns. Lambdas is
// fixed at two entries; only index 0 (the area constraint multiplier) is
// meaningful in this configuration, index 1 is reserved.
type OptimizationResult struct {
	TimeStep float64
	Lambdas  [2]float64
}

// IterationRecord is the immutable per-iteration log entry.
type IterationRecord struct {
	Iteration          int
	Objective          float64
	MaxStress          float64
	AreaFraction       float64
	RelativeDifference float64
}
