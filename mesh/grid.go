package mesh

import (
	"fmt"
	"math"
)

// Grid is a structured Cartesian mesh of unit-square elements shared by the
// finite element analysis and the level set method. Elements are numbered
// row-major from the lower-left corner; nodes likewise. Both analyses index
// elements through the same grid, so the 1:1 element correspondence between
// them is structural rather than assumed.
type Grid struct {
	NumX int // elements in x
	NumY int // elements in y
}

// NewGrid creates a grid of nx by ny unit elements.
func NewGrid(nx, ny int) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: nx=%d, ny=%d", nx, ny)
	}
	return &Grid{NumX: nx, NumY: ny}, nil
}

// NumElements returns the total element count.
func (g *Grid) NumElements() int { return g.NumX * g.NumY }

// NumNodes returns the total node count.
func (g *Grid) NumNodes() int { return (g.NumX + 1) * (g.NumY + 1) }

// Width returns the domain extent in x.
func (g *Grid) Width() float64 { return float64(g.NumX) }

// Height returns the domain extent in y.
func (g *Grid) Height() float64 { return float64(g.NumY) }

// NodeIndex returns the node number at integer grid coordinates (i, j).
func (g *Grid) NodeIndex(i, j int) int { return j*(g.NumX+1) + i }

// NodeCoord returns the (x, y) position of node n.
func (g *Grid) NodeCoord(n int) (x, y float64) {
	stride := g.NumX + 1
	return float64(n % stride), float64(n / stride)
}

// ElementIndex returns the element number whose lower-left corner sits at
// integer grid coordinates (i, j).
func (g *Grid) ElementIndex(i, j int) int { return j*g.NumX + i }

// ElementNodes returns the four corner nodes of element e in
// counter-clockwise order starting from the lower-left corner.
func (g *Grid) ElementNodes(e int) [4]int {
	i, j := e%g.NumX, e/g.NumX
	n0 := g.NodeIndex(i, j)
	return [4]int{n0, n0 + 1, n0 + g.NumX + 2, n0 + g.NumX + 1}
}

// ElementCentroid returns the center of element e.
func (g *Grid) ElementCentroid(e int) (x, y float64) {
	i, j := e%g.NumX, e/g.NumX
	return float64(i) + 0.5, float64(j) + 0.5
}

// NodesNear returns the nodes within the axis-aligned tolerance box centered
// on coord. This is the node selection used to place boundary conditions and
// point loads; callers treat an empty result as a configuration error.
func (g *Grid) NodesNear(coord, tol [2]float64) []int {
	var nodes []int
	for n := 0; n < g.NumNodes(); n++ {
		x, y := g.NodeCoord(n)
		if math.Abs(x-coord[0]) <= tol[0] && math.Abs(y-coord[1]) <= tol[1] {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// VerifyAligned checks the element-index contract between two meshes built
// over this grid. Counts that disagree with the grid mean the 1:1
// element correspondence is broken and the run must not start.
func (g *Grid) VerifyAligned(feaElements, lsmElements int) error {
	if feaElements != g.NumElements() || lsmElements != g.NumElements() {
		return fmt.Errorf("element count mismatch: grid has %d, fea has %d, lsm has %d",
			g.NumElements(), feaElements, lsmElements)
	}
	return nil
}
