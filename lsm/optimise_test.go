package lsm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topoform/lsto/opt"
)

func constraintOnlyPoints(n int) []*opt.BoundaryPoint {
	points := make([]*opt.BoundaryPoint, n)
	for i := range points {
		points[i] = &opt.BoundaryPoint{
			X: 1, Y: 1, Length: 1,
			Sensitivities: [2]float64{0, -1},
		}
	}
	return points
}

func TestOptimise_RejectsEmptyBoundary(t *testing.T) {
	o := NewOptimise(0.5)
	_, err := o.Solve(nil, 0.15, opt.Extents{Width: 10, Height: 10}, opt.AreaState{})
	assert.Error(t, err)
}

func TestOptimise_ShrinksWhenOverBudget(t *testing.T) {
	// No objective drive, 10 units over budget: every point must move
	// inward (negative velocity), within the trust region.
	o := NewOptimise(0.5)
	points := constraintOnlyPoints(100)
	area := opt.AreaState{
		BoundaryArea: 50, MeshArea: 100, MaxArea: 0.4,
		ConstraintDistance: -10,
	}
	result, err := o.Solve(points, 0.15, opt.Extents{Width: 10, Height: 10}, area)
	require.NoError(t, err)

	swept := 0.0
	for i, p := range points {
		assert.LessOrEqual(t, p.Velocity, 0.0, "point %d", i)
		assert.LessOrEqual(t, math.Abs(p.Velocity), 0.15+1e-9, "trust region bounds point %d", i)
		swept += p.Velocity * p.Length
	}
	// The step covers the budget: 100 points * 0.1 inward = -10.
	assert.InDelta(t, -10, swept, 1e-6)
	assert.Greater(t, result.TimeStep, 0.0)
}

func TestOptimise_ClampsUnreachableBudget(t *testing.T) {
	// The violation exceeds what the trust region can recover in one
	// step: the step is clamped, not rejected.
	o := NewOptimise(0.5)
	points := constraintOnlyPoints(10)
	area := opt.AreaState{
		BoundaryArea: 500, MeshArea: 1000, MaxArea: 0.1,
		ConstraintDistance: -400,
	}
	result, err := o.Solve(points, 0.15, opt.Extents{Width: 100, Height: 100}, area)
	require.NoError(t, err)

	for i, p := range points {
		assert.InDelta(t, -0.15, p.Velocity, 1e-6, "point %d saturates the trust region", i)
	}
	assert.Greater(t, result.TimeStep, 0.0)
}

func TestOptimise_FixedPointsDoNotMove(t *testing.T) {
	o := NewOptimise(0.5)
	points := constraintOnlyPoints(10)
	points[3].Fixed = true
	area := opt.AreaState{ConstraintDistance: -5, MeshArea: 100}

	_, err := o.Solve(points, 0.15, opt.Extents{Width: 10, Height: 10}, area)
	require.NoError(t, err)
	assert.Equal(t, 0.0, points[3].Velocity)
}

func TestOptimise_DomainEdgeCannotAdvanceOutward(t *testing.T) {
	o := NewOptimise(0.5)
	p := &opt.BoundaryPoint{
		X: 0, Y: 5, Length: 1,
		Sensitivities: [2]float64{0, -1},
	}
	// Positive slack pulls the boundary outward, but the point sits on
	// the domain edge.
	area := opt.AreaState{ConstraintDistance: 10, MeshArea: 100}
	_, err := o.Solve([]*opt.BoundaryPoint{p}, 0.15, opt.Extents{Width: 10, Height: 10}, area)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Velocity)
}

func TestOptimise_ReservedSecondMultiplier(t *testing.T) {
	o := NewOptimise(0.5)
	points := constraintOnlyPoints(4)
	area := opt.AreaState{ConstraintDistance: -1, MeshArea: 100}

	result, err := o.Solve(points, 0.15, opt.Extents{Width: 10, Height: 10}, area)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Lambdas[1], "index 1 is reserved, never assigned meaning")
}

func TestOptimise_TimeStepCappedByGlobalMoveLimit(t *testing.T) {
	// With an inner limit above the global one the step shrinks to keep
	// the advance within the CFL bound.
	o := NewOptimise(0.5)
	points := constraintOnlyPoints(10)
	area := opt.AreaState{ConstraintDistance: -100, MeshArea: 100}

	result, err := o.Solve(points, 1.0, opt.Extents{Width: 10, Height: 10}, area)
	require.NoError(t, err)

	maxAdvance := 0.0
	for _, p := range points {
		if a := math.Abs(p.Velocity) * result.TimeStep; a > maxAdvance {
			maxAdvance = a
		}
	}
	assert.LessOrEqual(t, maxAdvance, 0.5+1e-9)
}
