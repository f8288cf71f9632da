package fea

import (
	"fmt"

	"github.com/topoform/lsto/mesh"
)

// DOFPerNode is the displacement degrees of freedom per node (2D).
const DOFPerNode = 2

// Mesh is the finite element view of the shared grid: bilinear quad
// elements with per-element area fractions scaling their stiffness.
type Mesh struct {
	Grid     *mesh.Grid
	Material SolidMaterial

	fractions []float64
}

// NewMesh creates a finite element mesh over the grid with every element
// fully solid.
func NewMesh(g *mesh.Grid, material SolidMaterial) *Mesh {
	fractions := make([]float64, g.NumElements())
	for i := range fractions {
		fractions[i] = 1
	}
	return &Mesh{Grid: g, Material: material, fractions: fractions}
}

// NumElements returns the element count.
func (m *Mesh) NumElements() int { return m.Grid.NumElements() }

// NumDOF returns the total displacement degrees of freedom.
func (m *Mesh) NumDOF() int { return DOFPerNode * m.Grid.NumNodes() }

// NodesByCoordinates returns the nodes within the tolerance box around
// coord, used to locate boundary conditions and loads.
func (m *Mesh) NodesByCoordinates(coord, tol [2]float64) []int {
	return m.Grid.NodesNear(coord, tol)
}

// DOF expands a node list into its degree-of-freedom list, x then y per
// node.
func (m *Mesh) DOF(nodes []int) []int {
	dof := make([]int, 0, DOFPerNode*len(nodes))
	for _, n := range nodes {
		dof = append(dof, DOFPerNode*n, DOFPerNode*n+1)
	}
	return dof
}

// SetAreaFractions replaces the per-element area fractions.
func (m *Mesh) SetAreaFractions(fractions []float64) error {
	if len(fractions) != m.NumElements() {
		return fmt.Errorf("area fraction count %d does not match %d elements",
			len(fractions), m.NumElements())
	}
	copy(m.fractions, fractions)
	return nil
}

// AreaFraction returns the area fraction of element e.
func (m *Mesh) AreaFraction(e int) float64 { return m.fractions[e] }

// ElementDOF returns the eight degrees of freedom of element e in the
// node order of mesh.Grid.ElementNodes.
func (m *Mesh) ElementDOF(e int) [8]int {
	nodes := m.Grid.ElementNodes(e)
	var dof [8]int
	for i, n := range nodes {
		dof[2*i] = DOFPerNode * n
		dof[2*i+1] = DOFPerNode*n + 1
	}
	return dof
}
