package lsm

import "github.com/topoform/lsto/mesh"

// Mesh is the level set view of the shared grid. It carries the per-element
// material areas produced by the boundary discretization, index-aligned 1:1
// with the finite element mesh over the same grid.
type Mesh struct {
	Grid   *mesh.Grid
	Width  float64
	Height float64

	areas []float64
}

// NewMesh creates a level set mesh over the grid with every element fully
// material.
func NewMesh(g *mesh.Grid) *Mesh {
	areas := make([]float64, g.NumElements())
	for i := range areas {
		areas[i] = 1
	}
	return &Mesh{
		Grid:   g,
		Width:  g.Width(),
		Height: g.Height(),
		areas:  areas,
	}
}

// NumElements returns the element count.
func (m *Mesh) NumElements() int { return m.Grid.NumElements() }

// ElementAreas returns the per-element material areas from the most recent
// boundary discretization.
func (m *Mesh) ElementAreas() []float64 { return m.areas }
