package fea

import "gonum.org/v1/gonum/mat"

// SolidMaterial is a linear elastic isotropic material.
type SolidMaterial struct {
	E   float64 // Young's modulus
	Nu  float64 // Poisson's ratio
	Rho float64 // density
}

// PlaneStressD returns the 3x3 plane stress constitutive matrix relating
// strain (eps_x, eps_y, gamma_xy) to stress (sig_x, sig_y, tau_xy).
func (m SolidMaterial) PlaneStressD() *mat.Dense {
	c := m.E / (1 - m.Nu*m.Nu)
	return mat.NewDense(3, 3, []float64{
		c, c * m.Nu, 0,
		c * m.Nu, c, 0,
		0, 0, c * (1 - m.Nu) / 2,
	})
}
