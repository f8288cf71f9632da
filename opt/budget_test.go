package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintBudget_Distance(t *testing.T) {
	b := ConstraintBudget{MeshArea: 6400, MaxArea: 0.4}

	tests := []struct {
		name         string
		boundaryArea float64
		want         float64
	}{
		{"within budget", 2000, 560},
		{"exactly at budget", 2560, 0},
		{"over budget", 3000, -440},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, b.Distance(tc.boundaryArea), 1e-12)
		})
	}
}
