package opt

import (
	"fmt"
	"log"
)

// Config holds the fixed run parameters for the optimization loop. All
// values are decided at startup; nothing is renegotiated while running.
type Config struct {
	MaxIterations int
	MaxArea       float64 // allowed material area as a fraction of MeshArea
	MeshArea      float64 // area of the active design domain
	PNorm         float64 // stress aggregation exponent
	MoveLimit     float64 // global CFL-like stability bound per iteration
	TrustRegion   float64 // tighter move limit used inside the sub-solve
	Radius        float64 // least-squares interpolation radius
	Field         FieldSelector
	Extents       Extents
	Verbose       bool
}

func (c Config) validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrConfiguration, c.MaxIterations)
	}
	if c.MaxArea <= 0 || c.MaxArea > 1 {
		return fmt.Errorf("%w: max area %g outside (0, 1]", ErrConfiguration, c.MaxArea)
	}
	if c.MeshArea <= 0 {
		return fmt.Errorf("%w: mesh area must be positive, got %g", ErrConfiguration, c.MeshArea)
	}
	if c.MoveLimit <= 0 || c.TrustRegion <= 0 {
		return fmt.Errorf("%w: move limits must be positive (global %g, trust region %g)",
			ErrConfiguration, c.MoveLimit, c.TrustRegion)
	}
	return nil
}

// Orchestrator sequences one optimization iteration at a time: boundary
// discretization, area fraction mapping, the elasticity solve, sensitivity
// aggregation and assignment, constraint budgeting, the constrained
// sub-solve, level set evolution, reinitialization scheduling, the
// convergence test and recording. The loop is single-threaded and strictly
// sequential; every stage blocks until its result is fully materialized.
type Orchestrator struct {
	cfg Config

	meshState MeshState
	boundary  BoundaryRepresentation
	solver    ElasticitySolver
	sens      SensitivityEngine
	sub       Subsolver
	evolver   LevelSetEvolver
	recorder  Recorder

	mapper    *AreaFractionMapper
	budget    ConstraintBudget
	assigner  *VelocityAssigner
	scheduler ReinitializationScheduler
	monitor   *ConvergenceMonitor

	elapsed float64 // accumulated pseudo-time
	lambdas [2]float64
}

// Engines bundles the external collaborators the loop drives.
type Engines struct {
	MeshState MeshState
	Boundary  BoundaryRepresentation
	Solver    ElasticitySolver
	Sens      SensitivityEngine
	Subsolver Subsolver
	Evolver   LevelSetEvolver
	Recorder  Recorder
}

// NewOrchestrator wires the loop. numElements fixes the element-index
// contract between the two meshes; a later count mismatch aborts the run.
// The recorder may be nil, in which case nothing is persisted.
func NewOrchestrator(cfg Config, numElements int, eng Engines) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if eng.MeshState == nil || eng.Boundary == nil || eng.Solver == nil ||
		eng.Sens == nil || eng.Subsolver == nil || eng.Evolver == nil {
		return nil, fmt.Errorf("%w: all engines except the recorder are required", ErrConfiguration)
	}
	if numElements <= 0 {
		return nil, fmt.Errorf("%w: element count must be positive, got %d", ErrConfiguration, numElements)
	}
	return &Orchestrator{
		cfg:       cfg,
		meshState: eng.MeshState,
		boundary:  eng.Boundary,
		solver:    eng.Solver,
		sens:      eng.Sens,
		sub:       eng.Subsolver,
		evolver:   eng.Evolver,
		recorder:  eng.Recorder,
		mapper:    NewAreaFractionMapper(numElements),
		budget:    ConstraintBudget{MeshArea: cfg.MeshArea, MaxArea: cfg.MaxArea},
		assigner: &VelocityAssigner{
			Engine: eng.Sens,
			Radius: cfg.Radius,
			Field:  cfg.Field,
			PNorm:  cfg.PNorm,
		},
		monitor: NewConvergenceMonitor(),
	}, nil
}

// Run executes iterations until the hard cap or the convergence predicate,
// whichever comes first, and returns the number of completed iterations.
// Fatal errors unwind immediately with the count reached; recording errors
// are logged and absorbed.
func (o *Orchestrator) Run() (int, error) {
	o.snapshot(0)

	if o.cfg.Verbose {
		fmt.Printf("---------------------------------------------\n")
		fmt.Printf("%9s %12s %10s %10s\n", "Iteration", "Objective", "Tvm_max", "Area")
		fmt.Printf("---------------------------------------------\n")
	}

	for iter := 1; iter <= o.cfg.MaxIterations; iter++ {
		stop, err := o.iterate(iter)
		if err != nil {
			return iter - 1, fmt.Errorf("iteration %d: %w", iter, err)
		}
		if stop {
			return iter, nil
		}
	}
	return o.cfg.MaxIterations, nil
}

// Lambdas returns the multipliers from the most recent sub-solve. Index 1
// is reserved for a second constraint and is never interpreted here.
func (o *Orchestrator) Lambdas() [2]float64 { return o.lambdas }

// Elapsed returns the accumulated pseudo-time over all completed updates.
func (o *Orchestrator) Elapsed() float64 { return o.elapsed }

// Monitor exposes the convergence state, mainly for inspection after a run.
func (o *Orchestrator) Monitor() *ConvergenceMonitor { return o.monitor }

// iterate runs the stages of a single iteration in their fixed order and
// reports whether the convergence predicate says to stop.
func (o *Orchestrator) iterate(iter int) (stop bool, err error) {
	// Discretize the zero contour and refresh element material areas.
	if err := o.boundary.Discretise(); err != nil {
		return false, fmt.Errorf("discretizing boundary: %w", err)
	}
	if err := o.boundary.ComputeAreaFractions(); err != nil {
		return false, fmt.Errorf("computing area fractions: %w", err)
	}

	// Map level set areas onto finite element area fractions.
	fractions, err := o.mapper.Map(o.meshState.ElementAreas())
	if err != nil {
		return false, err
	}

	// Assemble and solve the stiffness system. Divergence is fatal.
	if err := o.solver.Assemble(fractions); err != nil {
		return false, fmt.Errorf("assembling stiffness: %w", err)
	}
	if err := o.solver.AssembleLoads(); err != nil {
		return false, fmt.Errorf("assembling loads: %w", err)
	}
	if err := o.solver.Solve(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrDivergence, err)
	}

	// Aggregate stresses into the p-norm objective.
	objective, maxStress, err := o.sens.ComputeFieldSensitivities(o.cfg.PNorm)
	if err != nil {
		return false, fmt.Errorf("computing field sensitivities: %w", err)
	}

	// Interpolate and assign the two-slot sensitivities to every point.
	points := o.boundary.Points()
	if err := o.assigner.Assign(points); err != nil {
		return false, err
	}

	// Budget the area constraint and run the constrained sub-solve. The
	// sub-solver sets point velocities in place; the loop must not touch
	// the level set until it has fully returned.
	boundaryArea := o.boundary.Area()
	area := AreaState{
		BoundaryArea:       boundaryArea,
		MeshArea:           o.cfg.MeshArea,
		MaxArea:            o.cfg.MaxArea,
		ConstraintDistance: o.budget.Distance(boundaryArea),
	}
	result, err := o.sub.Solve(points, o.cfg.TrustRegion, o.cfg.Extents, area)
	if err != nil {
		return false, fmt.Errorf("sub-solver: %w", err)
	}
	o.lambdas = result.Lambdas

	// Advance the level set.
	o.evolver.ExtendVelocities(points)
	o.evolver.ComputeGradients()
	reinitialized, err := o.evolver.Update(result.TimeStep)
	if err != nil {
		return false, fmt.Errorf("updating level set: %w", err)
	}
	if o.scheduler.Next(reinitialized) {
		o.evolver.Reinitialize()
	}
	o.elapsed += result.TimeStep

	// Convergence bookkeeping and the record, then the stopping test.
	areaFraction := boundaryArea / o.cfg.MeshArea
	relDiff := o.monitor.Observe(objective)

	if o.cfg.Verbose {
		fmt.Printf("%9d %12.4f %10.4f %10.4f\n", iter, objective, maxStress, areaFraction)
	}

	o.record(IterationRecord{
		Iteration:          iter,
		Objective:          objective,
		MaxStress:          maxStress,
		AreaFraction:       areaFraction,
		RelativeDifference: relDiff,
	})
	o.snapshot(iter)

	return o.monitor.Converged(areaFraction, o.cfg.MaxArea), nil
}

// record persists one iteration record, best effort.
func (o *Orchestrator) record(rec IterationRecord) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(rec); err != nil {
		log.Printf("recording iteration %d failed: %v", rec.Iteration, err)
	}
}

// snapshot persists the field state for one iteration, best effort.
func (o *Orchestrator) snapshot(iter int) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Snapshot(iter); err != nil {
		log.Printf("snapshot at iteration %d failed: %v", iter, err)
	}
}
