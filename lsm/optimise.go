package lsm

import (
	"fmt"
	"math"

	"github.com/topoform/lsto/opt"
)

// Newton-Raphson settings for the constraint multiplier solve.
const (
	newtonMaxIter = 50
	newtonTol     = 1e-9
	newtonStep    = 1e-6
)

// Optimise computes the constrained boundary step: given boundary points
// carrying (objective, constraint) sensitivities, it solves for the area
// constraint multiplier by Newton-Raphson so the predicted area change meets
// the constraint budget, with every point displacement clamped to the inner
// trust region. It writes the advection velocity onto each point and returns
// the time step together with the two-entry multiplier vector.
type Optimise struct {
	// MoveLimit is the global CFL-like bound on boundary advance per
	// iteration. The inner trust region passed to Solve is tighter and
	// governs the constrained step itself.
	MoveLimit float64
}

// NewOptimise creates a sub-solver with the given global move limit.
func NewOptimise(moveLimit float64) *Optimise {
	return &Optimise{MoveLimit: moveLimit}
}

// Solve implements the sub-solver contract of the optimization loop. Fixed
// points keep zero velocity. When the move limit cannot reach the full
// constraint budget in one step, the step is clamped and the loop carries
// the remaining violation into later iterations.
func (o *Optimise) Solve(points []*opt.BoundaryPoint, innerMoveLimit float64,
	extents opt.Extents, area opt.AreaState) (opt.OptimizationResult, error) {

	if len(points) == 0 {
		return opt.OptimizationResult{}, fmt.Errorf("no boundary points to optimize")
	}
	if innerMoveLimit <= 0 {
		return opt.OptimizationResult{}, fmt.Errorf("inner move limit must be positive, got %g", innerMoveLimit)
	}

	// Scale the descent direction so the steepest objective move uses the
	// whole trust region.
	sMax := 0.0
	reach := 0.0
	for _, p := range points {
		if s := math.Abs(p.Sensitivities[0]); s > sMax {
			sMax = s
		}
		if !p.Fixed {
			reach += innerMoveLimit * p.Length
		}
	}
	lambda0 := 0.0
	if sMax > 0 {
		lambda0 = innerMoveLimit / sMax
	}

	// The reachable area change this step; an unreachable budget is
	// clamped, not an error.
	target := math.Max(-reach, math.Min(reach, area.ConstraintDistance))

	displace := func(p *opt.BoundaryPoint, lambda1 float64) float64 {
		if p.Fixed {
			return 0
		}
		z := lambda0*p.Sensitivities[0] + lambda1*p.Sensitivities[1]
		return math.Max(-innerMoveLimit, math.Min(innerMoveLimit, z))
	}

	// Predicted area change: a point advancing outward by z sweeps
	// z*length of material.
	areaChange := func(lambda1 float64) float64 {
		sum := 0.0
		for _, p := range points {
			sum += displace(p, lambda1) * p.Length
		}
		return sum
	}

	// Newton-Raphson on the constraint multiplier with a numerical
	// derivative; clamping makes the residual piecewise linear.
	lambda1 := 0.0
	for iter := 0; iter < newtonMaxIter; iter++ {
		f := areaChange(lambda1) - target
		if math.Abs(f) <= newtonTol*math.Max(1, area.MeshArea) {
			break
		}
		df := (areaChange(lambda1+newtonStep) - areaChange(lambda1-newtonStep)) / (2 * newtonStep)
		if math.Abs(df) < newtonTol {
			// Every point is clamped; no multiplier can improve the
			// residual further.
			break
		}
		lambda1 -= f / df
	}

	// Displacements advance over one pseudo-time unit; the global move
	// limit caps the step when the front would outrun it.
	maxZ := 0.0
	for _, p := range points {
		z := displace(p, lambda1)
		// Points on the domain edge cannot advance past it.
		if z > 0 && (p.X <= 0 || p.X >= extents.Width || p.Y <= 0 || p.Y >= extents.Height) {
			z = 0
		}
		p.Velocity = z
		if math.Abs(z) > maxZ {
			maxZ = math.Abs(z)
		}
	}
	timeStep := 1.0
	if maxZ > o.MoveLimit {
		timeStep = o.MoveLimit / maxZ
	}

	// Index 1 is reserved for a second constraint.
	return opt.OptimizationResult{
		TimeStep: timeStep,
		Lambdas:  [2]float64{lambda1, 0},
	}, nil
}
