package opt

import "math"

const (
	// convergenceWindow is the number of trailing objective values the
	// stability test compares against.
	convergenceWindow = 5

	// convergenceTol is the maximum relative objective change over the
	// window for the design to count as stable.
	convergenceTol = 0.0005

	// areaSlack is the feasibility tolerance on the area constraint: the
	// loop may stop while up to 0.1% over budget.
	areaSlack = 1.001
)

// ConvergenceMonitor implements the sliding-window stopping rule from
// Dunning et al.: the loop stops early once the objective has been stable
// over the trailing window and the design is within the area budget.
type ConvergenceMonitor struct {
	history []float64
	relDiff float64
}

// NewConvergenceMonitor starts with a relative difference of 1.0, meaning
// "not converged".
func NewConvergenceMonitor() *ConvergenceMonitor {
	return &ConvergenceMonitor{relDiff: 1.0}
}

// Observe appends the completed iteration's objective to the history and
// returns the updated relative difference. The history is append-only and
// never truncated. For the first five iterations the relative difference
// keeps its previous value; from the sixth on it is the maximum relative
// change against each of the five preceding objectives.
func (m *ConvergenceMonitor) Observe(objective float64) float64 {
	m.history = append(m.history, objective)
	n := len(m.history)
	if n <= convergenceWindow {
		return m.relDiff
	}
	m.relDiff = 0
	for k := 1; k <= convergenceWindow; k++ {
		diff := math.Abs((objective - m.history[n-1-k]) / objective)
		if diff > m.relDiff {
			m.relDiff = diff
		}
	}
	return m.relDiff
}

// Converged reports whether both the stability and the feasibility test
// hold: the objective is no longer moving and the design is not meaningfully
// over the area budget.
func (m *ConvergenceMonitor) Converged(areaFraction, maxArea float64) bool {
	return m.relDiff <= convergenceTol && areaFraction <= areaSlack*maxArea
}

// RelativeDifference returns the current stability measure.
func (m *ConvergenceMonitor) RelativeDifference() float64 { return m.relDiff }

// History returns the recorded objective values, one per completed
// iteration.
func (m *ConvergenceMonitor) History() []float64 { return m.history }
