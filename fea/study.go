package fea

import "fmt"

// Default linear solver settings. The tolerance is tight because stress
// sensitivities amplify displacement error through the p-norm.
const (
	DefaultSolveTol     = 1e-8
	DefaultSolveMaxIter = 10000
)

// PointLoad is a set of nodal force values keyed by degree of freedom.
type PointLoad struct {
	DOF    []int
	Values []float64
}

// NewPointLoad pairs degrees of freedom with force values. An empty query
// means the load coordinates matched no nodes, which is a setup defect.
func NewPointLoad(dof []int, values []float64) (PointLoad, error) {
	if len(dof) == 0 {
		return PointLoad{}, fmt.Errorf("point load matches zero degrees of freedom")
	}
	if len(dof) != len(values) {
		return PointLoad{}, fmt.Errorf("point load has %d degrees of freedom but %d values",
			len(dof), len(values))
	}
	return PointLoad{DOF: dof, Values: values}, nil
}

// DirichletConditions prescribes displacement amplitudes on degrees of
// freedom.
type DirichletConditions struct {
	DOF        []int
	Amplitudes []float64
}

// NewDirichletConditions pairs fixed degrees of freedom with amplitudes.
func NewDirichletConditions(dof []int, amplitudes []float64) (DirichletConditions, error) {
	if len(dof) == 0 {
		return DirichletConditions{}, fmt.Errorf("boundary condition matches zero degrees of freedom")
	}
	if len(dof) != len(amplitudes) {
		return DirichletConditions{}, fmt.Errorf("boundary condition has %d degrees of freedom but %d amplitudes",
			len(dof), len(amplitudes))
	}
	return DirichletConditions{DOF: dof, Amplitudes: amplitudes}, nil
}

// StationaryStudy solves [K]{u} = {f} on the finite element mesh with the
// current area fractions. It satisfies the elasticity solver contract of the
// optimization loop: Assemble, AssembleLoads, Solve, in that order, each
// fully completing before the next.
type StationaryStudy struct {
	Mesh *Mesh

	SolveTol     float64
	SolveMaxIter int

	fixed      map[int]float64 // dof -> prescribed amplitude
	load       PointLoad
	stiffness  *csrMatrix
	forces     []float64
	disp       []float64
	iterations int
}

// NewStationaryStudy creates a study over the mesh with default solver
// settings and no constraints.
func NewStationaryStudy(m *Mesh) *StationaryStudy {
	return &StationaryStudy{
		Mesh:         m,
		SolveTol:     DefaultSolveTol,
		SolveMaxIter: DefaultSolveMaxIter,
		fixed:        make(map[int]float64),
		forces:       make([]float64, m.NumDOF()),
		disp:         make([]float64, m.NumDOF()),
	}
}

// AddBoundaryConditions registers homogeneous or prescribed Dirichlet
// conditions.
func (s *StationaryStudy) AddBoundaryConditions(bc DirichletConditions) error {
	for i, dof := range bc.DOF {
		if dof < 0 || dof >= s.Mesh.NumDOF() {
			return fmt.Errorf("boundary condition degree of freedom %d out of range [0, %d)",
				dof, s.Mesh.NumDOF())
		}
		s.fixed[dof] = bc.Amplitudes[i]
	}
	return nil
}

// SetPointLoad registers the load applied on every AssembleLoads call.
func (s *StationaryStudy) SetPointLoad(load PointLoad) {
	s.load = load
}

// Assemble builds the global stiffness matrix from the reference element
// stiffness scaled by each element's area fraction, then eliminates fixed
// degrees of freedom (zeroed rows and columns, unit diagonal).
func (s *StationaryStudy) Assemble(areaFractions []float64) error {
	if err := s.Mesh.SetAreaFractions(areaFractions); err != nil {
		return err
	}

	ke := ElementStiffness(s.Mesh.Material.PlaneStressD())
	n := s.Mesh.NumDOF()
	rows := make([]map[int]float64, n)
	for i := range rows {
		rows[i] = make(map[int]float64)
	}

	for e := 0; e < s.Mesh.NumElements(); e++ {
		alpha := s.Mesh.AreaFraction(e)
		dof := s.Mesh.ElementDOF(e)
		for i := 0; i < 8; i++ {
			gi := dof[i]
			if _, isFixed := s.fixed[gi]; isFixed {
				continue
			}
			for j := 0; j < 8; j++ {
				gj := dof[j]
				if _, isFixed := s.fixed[gj]; isFixed {
					continue
				}
				rows[gi][gj] += alpha * ke.At(i, j)
			}
		}
	}
	for dof := range s.fixed {
		rows[dof] = map[int]float64{dof: 1}
	}

	s.stiffness = newCSR(rows)
	return nil
}

// AssembleLoads rebuilds the force vector from the registered point load and
// the prescribed displacement amplitudes.
func (s *StationaryStudy) AssembleLoads() error {
	for i := range s.forces {
		s.forces[i] = 0
	}
	for i, dof := range s.load.DOF {
		if dof < 0 || dof >= len(s.forces) {
			return fmt.Errorf("load degree of freedom %d out of range [0, %d)", dof, len(s.forces))
		}
		s.forces[dof] += s.load.Values[i]
	}
	for dof, amp := range s.fixed {
		s.forces[dof] = amp
	}
	return nil
}

// Solve runs the conjugate gradient solver. A solve that fails to converge
// is reported as an error and is not retried.
func (s *StationaryStudy) Solve() error {
	if s.stiffness == nil {
		return fmt.Errorf("solve called before assembly")
	}
	u, iters, err := conjugateGradient(s.stiffness, s.forces, s.SolveTol, s.SolveMaxIter)
	if err != nil {
		return fmt.Errorf("elasticity solve: %w", err)
	}
	s.iterations = iters
	copy(s.disp, u)
	return nil
}

// Displacements returns the solution vector of the last solve.
func (s *StationaryStudy) Displacements() []float64 { return s.disp }

// SolveIterations returns the conjugate gradient iterations of the last
// solve.
func (s *StationaryStudy) SolveIterations() int { return s.iterations }
