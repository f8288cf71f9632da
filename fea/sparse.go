package fea

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// csrMatrix is a square sparse matrix in compressed sparse row form, built
// once per assembly and read many times by the conjugate gradient solver.
type csrMatrix struct {
	n      int
	rowPtr []int
	colIdx []int
	vals   []float64
}

// newCSR compresses per-row coefficient maps into CSR form.
func newCSR(rows []map[int]float64) *csrMatrix {
	n := len(rows)
	a := &csrMatrix{
		n:      n,
		rowPtr: make([]int, n+1),
	}
	for i, row := range rows {
		a.rowPtr[i] = len(a.colIdx)
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		for _, j := range cols {
			a.colIdx = append(a.colIdx, j)
			a.vals = append(a.vals, row[j])
		}
	}
	a.rowPtr[n] = len(a.colIdx)
	return a
}

// mulVec computes dst = A*x.
func (a *csrMatrix) mulVec(dst, x []float64) {
	for i := 0; i < a.n; i++ {
		sum := 0.0
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			sum += a.vals[k] * x[a.colIdx[k]]
		}
		dst[i] = sum
	}
}

// conjugateGradient solves A*x = b for symmetric positive definite A,
// starting from zero. It returns the solution and the iterations used, or
// an error when the residual fails to reach tol*|b| within maxIter steps.
func conjugateGradient(a *csrMatrix, b []float64, tol float64, maxIter int) ([]float64, int, error) {
	n := a.n
	x := make([]float64, n)
	r := make([]float64, n)
	copy(r, b)
	p := make([]float64, n)
	copy(p, r)
	ap := make([]float64, n)

	bNorm := math.Sqrt(floats.Dot(b, b))
	if bNorm == 0 {
		return x, 0, nil
	}

	rr := floats.Dot(r, r)
	for iter := 1; iter <= maxIter; iter++ {
		a.mulVec(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			return nil, iter, fmt.Errorf("matrix not positive definite (p'Ap = %g)", pap)
		}
		alpha := rr / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rrNext := floats.Dot(r, r)
		if math.Sqrt(rrNext) <= tol*bNorm {
			return x, iter, nil
		}
		beta := rrNext / rr
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rr = rrNext
	}
	return nil, maxIter, fmt.Errorf("conjugate gradient stalled after %d iterations (residual %g, target %g)",
		maxIter, math.Sqrt(rr), tol*bNorm)
}
