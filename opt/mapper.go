package opt

import "fmt"

// MinAreaFraction is the floor applied to fully void elements so they keep a
// near-zero stiffness contribution and the global stiffness matrix stays
// nonsingular.
const MinAreaFraction = 1e-6

// AreaFractionMapper maps level set element areas onto finite element area
// fractions. The two meshes must agree on element count and ordering for the
// lifetime of the run.
type AreaFractionMapper struct {
	numElements int
}

// NewAreaFractionMapper creates a mapper expecting the given finite element
// count.
func NewAreaFractionMapper(numElements int) *AreaFractionMapper {
	return &AreaFractionMapper{numElements: numElements}
}

// Map converts level set areas to area fractions, flooring each at
// MinAreaFraction. An element-count mismatch breaks the index alignment
// contract and is a fatal configuration error.
func (m *AreaFractionMapper) Map(areas []float64) ([]float64, error) {
	if len(areas) != m.numElements {
		return nil, fmt.Errorf("%w: level set mesh has %d elements, finite element mesh has %d",
			ErrConfiguration, len(areas), m.numElements)
	}
	fractions := make([]float64, len(areas))
	for i, a := range areas {
		if a < MinAreaFraction {
			a = MinAreaFraction
		}
		fractions[i] = a
	}
	return fractions, nil
}
