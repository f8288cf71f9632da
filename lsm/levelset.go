package lsm

import (
	"fmt"
	"math"

	"github.com/topoform/lsto/opt"
)

// Hole is a circular void seeded into the initial design.
type Hole struct {
	X, Y, R float64
}

// LevelSet is the implicit boundary representation: a nodal scalar field
// whose zero contour is the structural boundary. Positive values are
// material, negative are void. Values are maintained within a narrow band
// around the contour and clamped at the band edge.
type LevelSet struct {
	Mesh *Mesh

	// Phi holds the signed distance value per grid node.
	Phi []float64

	moveLimit float64
	bandWidth float64

	velocity []float64
	gradient []float64
	fixed    []bool // nodes that never move (loads, domain shaping edges)
	killed   []bool // nodes outside the active design domain, always void

	// distance the front has advected since the last exact
	// reinitialization; crossing half the band forces one internally
	drift float64
}

// NewLevelSet initializes the field to a signed distance function of the
// seeded holes: full material everywhere except inside the holes, clamped at
// the band width.
func NewLevelSet(m *Mesh, holes []Hole, moveLimit, bandWidth float64) *LevelSet {
	n := m.Grid.NumNodes()
	ls := &LevelSet{
		Mesh:      m,
		Phi:       make([]float64, n),
		moveLimit: moveLimit,
		bandWidth: bandWidth,
		velocity:  make([]float64, n),
		gradient:  make([]float64, n),
		fixed:     make([]bool, n),
		killed:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		x, y := m.Grid.NodeCoord(i)
		phi := bandWidth
		for _, h := range holes {
			d := math.Hypot(x-h.X, y-h.Y) - h.R
			if d < phi {
				phi = d
			}
		}
		ls.Phi[i] = clampBand(phi, bandWidth)
	}
	return ls
}

// KillRegion removes the nodes inside the box [min, max] from the active
// design domain: they become permanently void and never move. Used to carve
// non-rectangular domains such as the L-bracket out of the grid.
func (ls *LevelSet) KillRegion(min, max [2]float64) {
	ls.forRegion(min, max, func(n int) {
		ls.killed[n] = true
		ls.fixed[n] = true
		ls.Phi[n] = -ls.bandWidth
	})
}

// FixRegion pins the nodes inside the box [min, max]: the boundary may pass
// through but never advects there. Used around load application points.
func (ls *LevelSet) FixRegion(min, max [2]float64) {
	ls.forRegion(min, max, func(n int) {
		ls.fixed[n] = true
	})
}

func (ls *LevelSet) forRegion(min, max [2]float64, apply func(n int)) {
	for n := 0; n < ls.Mesh.Grid.NumNodes(); n++ {
		x, y := ls.Mesh.Grid.NodeCoord(n)
		if x >= min[0] && x <= max[0] && y >= min[1] && y <= max[1] {
			apply(n)
		}
	}
}

// IsFixed reports whether node n is pinned.
func (ls *LevelSet) IsFixed(n int) bool { return ls.fixed[n] }

// Field returns the nodal level set values.
func (ls *LevelSet) Field() []float64 { return ls.Phi }

// ExtendVelocities propagates the boundary point advection velocities to
// every narrow band node, each node taking the velocity of its nearest
// boundary point. Fixed nodes stay at zero.
func (ls *LevelSet) ExtendVelocities(points []*opt.BoundaryPoint) {
	for n := range ls.velocity {
		ls.velocity[n] = 0
		if ls.fixed[n] || math.Abs(ls.Phi[n]) >= ls.bandWidth {
			continue
		}
		x, y := ls.Mesh.Grid.NodeCoord(n)
		best := math.Inf(1)
		for _, p := range points {
			d := math.Hypot(p.X-x, p.Y-y)
			if d < best {
				best = d
				ls.velocity[n] = p.Velocity
			}
		}
	}
}

// ComputeGradients evaluates the Godunov upwind gradient magnitude of the
// field at every node, upwinded by the sign of the extension velocity.
func (ls *LevelSet) ComputeGradients() {
	g := ls.Mesh.Grid
	for j := 0; j <= g.NumY; j++ {
		for i := 0; i <= g.NumX; i++ {
			n := g.NodeIndex(i, j)
			backX, forwX := ls.oneSided(i, j, -1, 0), ls.oneSided(i, j, 1, 0)
			backY, forwY := ls.oneSided(i, j, 0, -1), ls.oneSided(i, j, 0, 1)

			var gx, gy float64
			if ls.velocity[n] > 0 {
				gx = math.Max(math.Max(backX, 0), math.Max(-forwX, 0))
				gy = math.Max(math.Max(backY, 0), math.Max(-forwY, 0))
			} else {
				gx = math.Max(math.Max(-backX, 0), math.Max(forwX, 0))
				gy = math.Max(math.Max(-backY, 0), math.Max(forwY, 0))
			}
			ls.gradient[n] = math.Hypot(gx, gy)
		}
	}
}

// oneSided returns the one-sided difference of Phi at grid point (i, j) in
// direction (di, dj), using the node itself at the domain edge.
func (ls *LevelSet) oneSided(i, j, di, dj int) float64 {
	g := ls.Mesh.Grid
	i2, j2 := i+di, j+dj
	if i2 < 0 || i2 > g.NumX || j2 < 0 || j2 > g.NumY {
		return 0
	}
	d := ls.Phi[g.NodeIndex(i2, j2)] - ls.Phi[g.NodeIndex(i, j)]
	if di < 0 || dj < 0 {
		return -d
	}
	return d
}

// Update advances the field by timeStep through the Hamilton-Jacobi
// advection phi += dt*v*|grad phi| and reports whether the front drifted far
// enough that the field was reinitialized internally.
func (ls *LevelSet) Update(timeStep float64) (bool, error) {
	if timeStep <= 0 {
		return false, fmt.Errorf("time step must be positive, got %g", timeStep)
	}
	maxSpeed := 0.0
	for n := range ls.Phi {
		if ls.fixed[n] {
			continue
		}
		v := ls.velocity[n]
		if math.Abs(v) > maxSpeed {
			maxSpeed = math.Abs(v)
		}
		ls.Phi[n] = clampBand(ls.Phi[n]+timeStep*v*ls.gradient[n], ls.bandWidth)
	}

	ls.drift += timeStep * maxSpeed
	if ls.drift > ls.bandWidth/2 {
		ls.Reinitialize()
		return true, nil
	}
	return false, nil
}

// Reinitialize restores the field to an exact signed distance function of
// its current zero contour, clamped at the band width. Killed nodes stay
// fully void.
func (ls *LevelSet) Reinitialize() {
	segments := marchSegments(ls)
	if len(segments) == 0 {
		ls.drift = 0
		return
	}
	for n := range ls.Phi {
		if ls.killed[n] {
			ls.Phi[n] = -ls.bandWidth
			continue
		}
		x, y := ls.Mesh.Grid.NodeCoord(n)
		best := ls.bandWidth
		for _, s := range segments {
			if d := s.distanceTo(x, y); d < best {
				best = d
			}
		}
		ls.Phi[n] = math.Copysign(best, ls.Phi[n])
	}
	ls.drift = 0
}

func clampBand(phi, band float64) float64 {
	if phi > band {
		return band
	}
	if phi < -band {
		return -band
	}
	return phi
}
