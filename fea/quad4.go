package fea

import "gonum.org/v1/gonum/mat"

// Bilinear quadrilateral (Q4) element on the unit square, integrated with a
// 2x2 Gauss rule. All grid elements are identical unit squares, so the
// reference stiffness is computed once and scaled by each element's area
// fraction during assembly.

const gaussCoord = 0.5773502691896258 // 1/sqrt(3)

// gaussPoints are the 2x2 quadrature points in natural coordinates, each
// with unit weight.
var gaussPoints = [4][2]float64{
	{-gaussCoord, -gaussCoord},
	{gaussCoord, -gaussCoord},
	{gaussCoord, gaussCoord},
	{-gaussCoord, gaussCoord},
}

// unit square mapping: x = (xi+1)/2, so dxi/dx = 2 and detJ = 1/4
const (
	naturalToPhysical = 2.0
	jacobianDet       = 0.25
)

// shapeDerivatives returns dN/dx and dN/dy for the four corner nodes at the
// natural point (xi, eta), already mapped to physical coordinates.
func shapeDerivatives(xi, eta float64) (dNdx, dNdy [4]float64) {
	dNdXi := [4]float64{-(1 - eta) / 4, (1 - eta) / 4, (1 + eta) / 4, -(1 + eta) / 4}
	dNdEta := [4]float64{-(1 - xi) / 4, -(1 + xi) / 4, (1 + xi) / 4, (1 - xi) / 4}
	for i := 0; i < 4; i++ {
		dNdx[i] = naturalToPhysical * dNdXi[i]
		dNdy[i] = naturalToPhysical * dNdEta[i]
	}
	return dNdx, dNdy
}

// strainDisplacement returns the 3x8 B matrix at the natural point
// (xi, eta).
func strainDisplacement(xi, eta float64) *mat.Dense {
	dNdx, dNdy := shapeDerivatives(xi, eta)
	b := mat.NewDense(3, 8, nil)
	for i := 0; i < 4; i++ {
		b.Set(0, 2*i, dNdx[i])
		b.Set(1, 2*i+1, dNdy[i])
		b.Set(2, 2*i, dNdy[i])
		b.Set(2, 2*i+1, dNdx[i])
	}
	return b
}

// ElementStiffness returns the 8x8 stiffness matrix of a fully solid unit
// square element for the constitutive matrix D.
func ElementStiffness(D *mat.Dense) *mat.Dense {
	ke := mat.NewDense(8, 8, nil)
	var bd, btdb mat.Dense
	for _, gp := range gaussPoints {
		b := strainDisplacement(gp[0], gp[1])
		bd.Mul(D, b)
		btdb.Mul(b.T(), &bd)
		btdb.Scale(jacobianDet, &btdb)
		ke.Add(ke, &btdb)
	}
	return ke
}

// gaussStress returns the stress vector (sig_x, sig_y, tau_xy) at one Gauss
// point for the element displacement vector ue.
func gaussStress(D *mat.Dense, xi, eta float64, ue []float64) (stress, strain *mat.VecDense) {
	b := strainDisplacement(xi, eta)
	u := mat.NewVecDense(8, ue)
	strain = mat.NewVecDense(3, nil)
	strain.MulVec(b, u)
	stress = mat.NewVecDense(3, nil)
	stress.MulVec(D, strain)
	return stress, strain
}
