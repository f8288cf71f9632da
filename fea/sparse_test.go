package fea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSR_MulVec(t *testing.T) {
	rows := []map[int]float64{
		{0: 2, 1: -1},
		{0: -1, 1: 2, 2: -1},
		{1: -1, 2: 2},
	}
	a := newCSR(rows)

	dst := make([]float64, 3)
	a.mulVec(dst, []float64{1, 2, 3})
	assert.Equal(t, []float64{0, 0, 4}, dst)
}

func TestConjugateGradient_SolvesSPDSystem(t *testing.T) {
	// Tridiagonal SPD system with known solution x = (1, 2, 3).
	rows := []map[int]float64{
		{0: 2, 1: -1},
		{0: -1, 1: 2, 2: -1},
		{1: -1, 2: 2},
	}
	a := newCSR(rows)
	b := []float64{0, 0, 4}

	x, iters, err := conjugateGradient(a, b, 1e-12, 100)
	require.NoError(t, err)
	assert.LessOrEqual(t, iters, 3, "CG on an n-dimensional SPD system finishes within n iterations")
	assert.InDelta(t, 1, x[0], 1e-9)
	assert.InDelta(t, 2, x[1], 1e-9)
	assert.InDelta(t, 3, x[2], 1e-9)
}

func TestConjugateGradient_ZeroRHS(t *testing.T) {
	a := newCSR([]map[int]float64{{0: 1}, {1: 1}})
	x, iters, err := conjugateGradient(a, []float64{0, 0}, 1e-12, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, iters)
	assert.Equal(t, []float64{0, 0}, x)
}

func TestConjugateGradient_ReportsStall(t *testing.T) {
	// An indefinite matrix breaks the SPD contract.
	a := newCSR([]map[int]float64{{0: 1}, {1: -1}})
	_, _, err := conjugateGradient(a, []float64{1, 1}, 1e-12, 10)
	assert.Error(t, err)
}
