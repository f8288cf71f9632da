package lsm

import (
	"fmt"
	"math"

	"github.com/topoform/lsto/opt"
)

// Segment is one linear piece of the discretized zero contour.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

func (s Segment) length() float64 {
	return math.Hypot(s.X2-s.X1, s.Y2-s.Y1)
}

// distanceTo returns the distance from (x, y) to the segment.
func (s Segment) distanceTo(x, y float64) float64 {
	dx, dy := s.X2-s.X1, s.Y2-s.Y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-s.X1, y-s.Y1)
	}
	t := ((x-s.X1)*dx + (y-s.Y1)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(s.X1+t*dx), y-(s.Y1+t*dy))
}

// Boundary is the explicit discretization of the level set's zero contour.
// The point set is rebuilt by every Discretise call and owned by the
// optimization loop for the duration of one iteration.
type Boundary struct {
	ls *LevelSet

	points   []*opt.BoundaryPoint
	segments []Segment
	area     float64
}

// NewBoundary creates a boundary over the level set.
func NewBoundary(ls *LevelSet) *Boundary {
	return &Boundary{ls: ls}
}

// Points returns the current boundary points.
func (b *Boundary) Points() []*opt.BoundaryPoint { return b.points }

// Area returns the total material area from the last ComputeAreaFractions.
func (b *Boundary) Area() float64 { return b.area }

// Segments returns the current contour segments.
func (b *Boundary) Segments() []Segment { return b.segments }

// Discretise extracts the zero contour cell by cell, placing one boundary
// point at each grid edge crossing and one segment per crossing pair. Points
// on edges with a pinned node are marked fixed. Each point is attributed
// half the length of its adjacent segments.
func (b *Boundary) Discretise() error {
	g := b.ls.Mesh.Grid

	// Edge crossings are shared between neighboring cells; key them by
	// the node pair so each yields exactly one point.
	type edgeKey struct{ a, b int }
	crossings := make(map[edgeKey]*opt.BoundaryPoint)
	b.points = b.points[:0]
	b.segments = b.segments[:0]

	pointOn := func(n1, n2 int) *opt.BoundaryPoint {
		key := edgeKey{a: n1, b: n2}
		if n2 < n1 {
			key = edgeKey{a: n2, b: n1}
		}
		if p, ok := crossings[key]; ok {
			return p
		}
		p1, p2 := b.ls.Phi[n1], b.ls.Phi[n2]
		t := p1 / (p1 - p2)
		x1, y1 := g.NodeCoord(n1)
		x2, y2 := g.NodeCoord(n2)
		p := &opt.BoundaryPoint{
			X:     x1 + t*(x2-x1),
			Y:     y1 + t*(y2-y1),
			Fixed: b.ls.IsFixed(n1) || b.ls.IsFixed(n2),
		}
		crossings[key] = p
		b.points = append(b.points, p)
		return p
	}

	for e := 0; e < g.NumElements(); e++ {
		nodes := g.ElementNodes(e)
		// Cell edges in counter-clockwise order.
		var cut []*opt.BoundaryPoint
		for k := 0; k < 4; k++ {
			n1, n2 := nodes[k], nodes[(k+1)%4]
			if (b.ls.Phi[n1] >= 0) != (b.ls.Phi[n2] >= 0) {
				cut = append(cut, pointOn(n1, n2))
			}
		}
		switch len(cut) {
		case 2:
			b.addSegment(cut[0], cut[1])
		case 4:
			// Saddle cell: pair crossings by the sign of the cell
			// center to keep the contour consistent.
			center := (b.ls.Phi[nodes[0]] + b.ls.Phi[nodes[1]] +
				b.ls.Phi[nodes[2]] + b.ls.Phi[nodes[3]]) / 4
			if center >= 0 {
				b.addSegment(cut[0], cut[1])
				b.addSegment(cut[2], cut[3])
			} else {
				b.addSegment(cut[1], cut[2])
				b.addSegment(cut[3], cut[0])
			}
		}
	}

	if len(b.points) == 0 {
		return fmt.Errorf("level set has no zero contour to discretize")
	}
	return nil
}

func (b *Boundary) addSegment(p1, p2 *opt.BoundaryPoint) {
	s := Segment{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}
	b.segments = append(b.segments, s)
	half := s.length() / 2
	p1.Length += half
	p2.Length += half
}

// marchSegments extracts the zero contour as bare segments, without boundary
// point bookkeeping. Reinitialization measures node distances against these.
func marchSegments(ls *LevelSet) []Segment {
	g := ls.Mesh.Grid

	crossing := func(n1, n2 int) [2]float64 {
		p1, p2 := ls.Phi[n1], ls.Phi[n2]
		t := p1 / (p1 - p2)
		x1, y1 := g.NodeCoord(n1)
		x2, y2 := g.NodeCoord(n2)
		return [2]float64{x1 + t*(x2-x1), y1 + t*(y2-y1)}
	}
	segment := func(a, b [2]float64) Segment {
		return Segment{X1: a[0], Y1: a[1], X2: b[0], Y2: b[1]}
	}

	var segments []Segment
	for e := 0; e < g.NumElements(); e++ {
		nodes := g.ElementNodes(e)
		var cut [][2]float64
		for k := 0; k < 4; k++ {
			n1, n2 := nodes[k], nodes[(k+1)%4]
			if (ls.Phi[n1] >= 0) != (ls.Phi[n2] >= 0) {
				cut = append(cut, crossing(n1, n2))
			}
		}
		switch len(cut) {
		case 2:
			segments = append(segments, segment(cut[0], cut[1]))
		case 4:
			center := (ls.Phi[nodes[0]] + ls.Phi[nodes[1]] +
				ls.Phi[nodes[2]] + ls.Phi[nodes[3]]) / 4
			if center >= 0 {
				segments = append(segments, segment(cut[0], cut[1]), segment(cut[2], cut[3]))
			} else {
				segments = append(segments, segment(cut[1], cut[2]), segment(cut[3], cut[0]))
			}
		}
	}
	return segments
}

// ComputeAreaFractions clips every grid cell against the zero contour and
// writes the material area per element, accumulating the total structural
// area. Cells in the killed region report zero.
func (b *Boundary) ComputeAreaFractions() error {
	g := b.ls.Mesh.Grid
	total := 0.0
	for e := 0; e < g.NumElements(); e++ {
		nodes := g.ElementNodes(e)
		var phi [4]float64
		for k, n := range nodes {
			phi[k] = b.ls.Phi[n]
		}
		a := materialArea(phi)
		b.ls.Mesh.areas[e] = a
		total += a
	}
	b.area = total
	return nil
}

// materialArea returns the area of the material region (phi >= 0) of a unit
// cell whose corners carry the given level set values, in counter-clockwise
// order from the lower-left corner. The contour is linear along each edge.
func materialArea(phi [4]float64) float64 {
	corners := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var poly [][2]float64
	for k := 0; k < 4; k++ {
		p1, p2 := phi[k], phi[(k+1)%4]
		c1, c2 := corners[k], corners[(k+1)%4]
		if p1 >= 0 {
			poly = append(poly, c1)
		}
		if (p1 >= 0) != (p2 >= 0) {
			t := p1 / (p1 - p2)
			poly = append(poly, [2]float64{
				c1[0] + t*(c2[0]-c1[0]),
				c1[1] + t*(c2[1]-c1[1]),
			})
		}
	}
	if len(poly) < 3 {
		return 0
	}

	// Shoelace formula.
	area := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i][0]*poly[j][1] - poly[j][0]*poly[i][1]
	}
	return math.Abs(area) / 2
}
