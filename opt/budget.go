package opt

// ConstraintBudget computes the remaining area budget each iteration. It is
// the single scalar constraint handed to the sub-solver.
type ConstraintBudget struct {
	MeshArea float64 // area of the active design domain
	MaxArea  float64 // allowed material area, as a fraction of MeshArea
}

// Distance returns meshArea*maxArea - boundaryArea. Positive means feasible
// slack, negative means the design is over budget; the sub-solver pushes
// back toward feasibility but is not guaranteed to restore it in one step.
func (b ConstraintBudget) Distance(boundaryArea float64) float64 {
	return b.MeshArea*b.MaxArea - boundaryArea
}
