package opt

// The orchestration loop drives four opaque numerical engines plus a
// best-effort recorder. Each is modeled as a narrow capability interface so
// deterministic fakes can stand in for the numerics in tests. Every call is
// blocking: the result is fully materialized before the caller reads it,
// with no partial or streamed state.

// MeshState exposes the level set mesh's per-element material areas,
// index-aligned 1:1 with the finite element mesh.
type MeshState interface {
	ElementAreas() []float64
}

// BoundaryRepresentation owns the discretized zero contour for the duration
// of one iteration. Discretise rebuilds the point set; ComputeAreaFractions
// refreshes the element areas reported through MeshState and the structural
// area reported by Area.
type BoundaryRepresentation interface {
	Discretise() error
	ComputeAreaFractions() error
	Points() []*BoundaryPoint
	Area() float64
}

// ElasticitySolver assembles and solves the stiffness system. A solve that
// fails to converge is fatal.
type ElasticitySolver interface {
	Assemble(areaFractions []float64) error
	AssembleLoads() error
	Solve() error
}

// SensitivityEngine aggregates stresses into the p-norm objective and
// interpolates Gauss point sensitivities to boundary positions by local
// least squares within a fixed radius.
type SensitivityEngine interface {
	ComputeFieldSensitivities(pNorm float64) (objective, maxStress float64, err error)
	InterpolateBoundary(x, y, radius float64, field FieldSelector, pNorm float64) (float64, error)
}

// Subsolver computes the constrained boundary step from the assigned
// sensitivities. It mutates each point's Velocity in place and returns the
// time step and the fixed-size multiplier vector. A step that cannot satisfy
// both the move limit and the area budget is clamped, not rejected.
type Subsolver interface {
	Solve(points []*BoundaryPoint, innerMoveLimit float64, extents Extents, area AreaState) (OptimizationResult, error)
}

// LevelSetEvolver advances the implicit boundary: velocity extension to the
// narrow band, gradient computation, field update, and exact signed-distance
// reinitialization. Update reports whether it reinitialized on its own.
type LevelSetEvolver interface {
	ExtendVelocities(points []*BoundaryPoint)
	ComputeGradients()
	Update(timeStep float64) (reinitialized bool, err error)
	Reinitialize()
}

// Recorder persists iteration logs and field snapshots. Failures are
// logged and absorbed; recording never alters loop state.
type Recorder interface {
	Record(rec IterationRecord) error
	Snapshot(iteration int) error
}
