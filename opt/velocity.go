package opt

import "fmt"

// VelocityAssigner writes the two-slot sensitivity vector onto every
// boundary point. It is a pure per-point map: interpolation results are used
// once and discarded, with no iteration-to-iteration memory.
type VelocityAssigner struct {
	Engine SensitivityEngine
	Radius float64 // least-squares interpolation radius, in grid spacings
	Field  FieldSelector
	PNorm  float64
}

// Assign interpolates the scalar stress sensitivity s at each point and sets
// the objective gradient to -s (steepest descent: the boundary moves against
// the rising-stress direction) and the constraint gradient to -1 (area grows
// at a uniform unit rate per unit outward advance).
func (va *VelocityAssigner) Assign(points []*BoundaryPoint) error {
	for i, p := range points {
		s, err := va.Engine.InterpolateBoundary(p.X, p.Y, va.Radius, va.Field, va.PNorm)
		if err != nil {
			return fmt.Errorf("interpolating boundary point %d at (%g, %g): %w", i, p.X, p.Y, err)
		}
		p.Sensitivities[0] = -s
		p.Sensitivities[1] = -1
	}
	return nil
}
