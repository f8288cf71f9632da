package opt

// ReinitializationScheduler bounds the advection error accumulating in the
// signed-distance field. Its only state is the number of level set updates
// elapsed since the field was last exactly reinitialized.
type ReinitializationScheduler struct {
	count int
}

// Next is evaluated once per iteration, immediately after the level set
// update, and reports whether an exact reinitialization must be forced now.
// A self-reinitializing update resets the counter; otherwise a counter of 1
// (exactly one prior non-reinitializing update) forces a reinitialization
// and resets, so the field is restored at most every second step when the
// evolver never restores it on its own.
func (s *ReinitializationScheduler) Next(selfReinitialized bool) bool {
	if selfReinitialized {
		s.count = 0
		return false
	}
	if s.count == 1 {
		s.count = 0
		return true
	}
	s.count++
	return false
}

// Count returns the updates elapsed since the last exact reinitialization.
func (s *ReinitializationScheduler) Count() int { return s.count }
