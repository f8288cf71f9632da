package fea

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/topoform/lsto/opt"
)

// gaussSample is one Gauss point's contribution to the sensitivity field.
type gaussSample struct {
	x, y       float64
	vonMises   float64
	energy     float64 // strain energy density, the compliance sensitivity
	stressSens float64 // p-norm stress sensitivity
}

// SensitivityAnalysis aggregates Gauss point stresses into the p-norm
// objective and interpolates the resulting sensitivity field to arbitrary
// boundary positions by weighted least squares.
type SensitivityAnalysis struct {
	Study *StationaryStudy

	samples     []gaussSample
	objective   float64
	vonMisesMax float64
}

// NewSensitivityAnalysis creates an analysis bound to a solved study.
func NewSensitivityAnalysis(s *StationaryStudy) *SensitivityAnalysis {
	return &SensitivityAnalysis{Study: s}
}

// ComputeFieldSensitivities evaluates von Mises stress at every Gauss point
// of every element and aggregates them into the p-norm objective
//
//	Z = (sum_g w_g alpha_e vm_g^p)^(1/p)
//
// a smooth surrogate for the maximum stress. It also records the per-point
// stress sensitivities used later for boundary interpolation, and returns
// the objective together with the raw maximum von Mises stress.
func (sa *SensitivityAnalysis) ComputeFieldSensitivities(pNorm float64) (objective, maxStress float64, err error) {
	if pNorm <= 1 {
		return 0, 0, fmt.Errorf("p-norm exponent must exceed 1, got %g", pNorm)
	}
	m := sa.Study.Mesh
	D := m.Material.PlaneStressD()
	u := sa.Study.Displacements()

	sa.samples = sa.samples[:0]
	sa.vonMisesMax = 0
	sum := 0.0

	var ue [8]float64
	for e := 0; e < m.NumElements(); e++ {
		alpha := m.AreaFraction(e)
		dof := m.ElementDOF(e)
		for i, d := range dof {
			ue[i] = u[d]
		}
		cx, cy := m.Grid.ElementCentroid(e)

		for _, gp := range gaussPoints {
			stress, strain := gaussStress(D, gp[0], gp[1], ue[:])
			vm := vonMises(stress)
			energy := 0.5 * mat.Dot(stress, strain)

			if vm > sa.vonMisesMax {
				sa.vonMisesMax = vm
			}
			sum += jacobianDet * alpha * math.Pow(vm, pNorm)

			sa.samples = append(sa.samples, gaussSample{
				// Gauss points sit at the quarter offsets of the
				// unit element.
				x:        cx + gp[0]/2,
				y:        cy + gp[1]/2,
				vonMises: vm,
				energy:   alpha * energy,
			})
		}
	}

	sa.objective = math.Pow(sum, 1/pNorm)
	if sa.objective > 0 {
		// d/dalpha of the p-norm aggregate, folded with the local strain
		// energy so highly stressed, highly loaded regions dominate.
		factor := math.Pow(sum, 1/pNorm-1)
		for i := range sa.samples {
			s := &sa.samples[i]
			if s.vonMises > 0 {
				s.stressSens = factor * math.Pow(s.vonMises, pNorm-2) * s.energy
			}
		}
	}
	return sa.objective, sa.vonMisesMax, nil
}

// Objective returns the aggregated objective of the last computation.
func (sa *SensitivityAnalysis) Objective() float64 { return sa.objective }

// VonMisesMax returns the maximum von Mises stress of the last computation.
func (sa *SensitivityAnalysis) VonMisesMax() float64 { return sa.vonMisesMax }

// InterpolateBoundary fits a linear polynomial to the Gauss point
// sensitivities within radius of (x, y) by distance-weighted least squares
// and evaluates it at the point. The fitted coefficients are discarded after
// each call.
func (sa *SensitivityAnalysis) InterpolateBoundary(x, y, radius float64, field opt.FieldSelector, pNorm float64) (float64, error) {
	if len(sa.samples) == 0 {
		return 0, fmt.Errorf("no field sensitivities computed")
	}

	type neighbor struct {
		dx, dy, w, v float64
	}
	var near []neighbor
	for i := range sa.samples {
		s := &sa.samples[i]
		dx, dy := s.x-x, s.y-y
		d := math.Hypot(dx, dy)
		if d > radius {
			continue
		}
		v := s.stressSens
		if field == opt.FieldCompliance {
			v = s.energy
		}
		// Closer samples dominate the fit; the small offset keeps
		// coincident points finite.
		near = append(near, neighbor{dx: dx, dy: dy, w: 1 / (d + 0.01), v: v})
	}
	if len(near) == 0 {
		return 0, fmt.Errorf("no Gauss points within radius %g of (%g, %g)", radius, x, y)
	}

	// Degenerate stencils fall back to a weighted average.
	if len(near) < 3 {
		num, den := 0.0, 0.0
		for _, nb := range near {
			num += nb.w * nb.v
			den += nb.w
		}
		return num / den, nil
	}

	a := mat.NewDense(len(near), 3, nil)
	b := mat.NewVecDense(len(near), nil)
	for i, nb := range near {
		sw := math.Sqrt(nb.w)
		a.Set(i, 0, sw)
		a.Set(i, 1, sw*nb.dx)
		a.Set(i, 2, sw*nb.dy)
		b.SetVec(i, sw*nb.v)
	}

	var qr mat.QR
	qr.Factorize(a)
	var coeff mat.VecDense
	if err := qr.SolveVecTo(&coeff, false, b); err != nil {
		// Collinear stencil; the average is still well defined.
		num, den := 0.0, 0.0
		for _, nb := range near {
			num += nb.w * nb.v
			den += nb.w
		}
		return num / den, nil
	}
	return coeff.AtVec(0), nil
}

// vonMises returns the plane stress von Mises equivalent of the stress
// vector (sig_x, sig_y, tau_xy).
func vonMises(stress *mat.VecDense) float64 {
	sx, sy, txy := stress.AtVec(0), stress.AtVec(1), stress.AtVec(2)
	return math.Sqrt(sx*sx + sy*sy - sx*sy + 3*txy*txy)
}
