package lsm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topoform/lsto/mesh"
	"github.com/topoform/lsto/opt"
)

func newTestLevelSet(t *testing.T, nx, ny int, holes []Hole) *LevelSet {
	t.Helper()
	g, err := mesh.NewGrid(nx, ny)
	require.NoError(t, err)
	return NewLevelSet(NewMesh(g), holes, 0.5, 6)
}

func TestMaterialArea_Cases(t *testing.T) {
	tests := []struct {
		name string
		phi  [4]float64
		want float64
	}{
		{"all material", [4]float64{1, 1, 1, 1}, 1},
		{"all void", [4]float64{-1, -1, -1, -1}, 0},
		{"vertical half cut", [4]float64{1, -1, -1, 1}, 0.5},
		{"horizontal half cut", [4]float64{1, 1, -1, -1}, 0.5},
		{"corner cut", [4]float64{1, -1, -1, -1}, 0.125},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, materialArea(tc.phi), 1e-12)
		})
	}
}

func TestDiscretise_NoContour(t *testing.T) {
	ls := newTestLevelSet(t, 4, 4, nil) // solid everywhere
	b := NewBoundary(ls)
	assert.Error(t, b.Discretise())
}

func TestDiscretise_HoleContour(t *testing.T) {
	ls := newTestLevelSet(t, 20, 20, []Hole{{X: 10, Y: 10, R: 5}})
	b := NewBoundary(ls)
	require.NoError(t, b.Discretise())

	points := b.Points()
	require.NotEmpty(t, points)
	assert.NotEmpty(t, b.Segments())

	for i, p := range points {
		// Every point sits near the circle of radius 5.
		r := math.Hypot(p.X-10, p.Y-10)
		assert.InDelta(t, 5, r, 0.5, "point %d at (%g, %g)", i, p.X, p.Y)
		assert.Greater(t, p.Length, 0.0, "point %d has no attributed length", i)
	}
}

func TestDiscretise_RebuildsPointSet(t *testing.T) {
	ls := newTestLevelSet(t, 20, 20, []Hole{{X: 10, Y: 10, R: 5}})
	b := NewBoundary(ls)
	require.NoError(t, b.Discretise())
	first := len(b.Points())

	require.NoError(t, b.Discretise())
	assert.Len(t, b.Points(), first, "re-discretizing the same field yields the same point count")
}

func TestComputeAreaFractions_HoleArea(t *testing.T) {
	ls := newTestLevelSet(t, 20, 20, []Hole{{X: 10, Y: 10, R: 5}})
	b := NewBoundary(ls)
	require.NoError(t, b.Discretise())
	require.NoError(t, b.ComputeAreaFractions())

	areas := ls.Mesh.ElementAreas()
	for e, a := range areas {
		assert.GreaterOrEqual(t, a, 0.0, "element %d", e)
		assert.LessOrEqual(t, a, 1.0, "element %d", e)
	}

	// Total material: domain minus the hole, up to discretization error.
	want := 400 - math.Pi*25
	assert.InDelta(t, want, b.Area(), 4)

	// An element at the hole center is fully void, a far corner is solid.
	g := ls.Mesh.Grid
	assert.Equal(t, 0.0, areas[g.ElementIndex(10, 10)])
	assert.Equal(t, 1.0, areas[g.ElementIndex(0, 0)])
}

func TestDiscretise_FixedNodesMarkPoints(t *testing.T) {
	ls := newTestLevelSet(t, 20, 20, []Hole{{X: 10, Y: 10, R: 5}})
	ls.FixRegion([2]float64{0, 0}, [2]float64{20, 20})
	b := NewBoundary(ls)
	require.NoError(t, b.Discretise())

	for i, p := range b.Points() {
		assert.True(t, p.Fixed, "point %d must inherit the pinned nodes", i)
	}
}

var _ opt.BoundaryRepresentation = (*Boundary)(nil)
var _ opt.MeshState = (*Mesh)(nil)
var _ opt.LevelSetEvolver = (*LevelSet)(nil)
var _ opt.Subsolver = (*Optimise)(nil)
