package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_ForcesOnSecondNonReinitializingUpdate(t *testing.T) {
	var s ReinitializationScheduler

	assert.False(t, s.Next(false), "first update after a reinitialization must not force")
	assert.Equal(t, 1, s.Count())

	assert.True(t, s.Next(false), "second consecutive non-reinitializing update must force")
	assert.Equal(t, 0, s.Count(), "forcing resets the counter")
}

func TestScheduler_SelfReinitializationResetsCounter(t *testing.T) {
	var s ReinitializationScheduler

	s.Next(false)
	assert.Equal(t, 1, s.Count())

	assert.False(t, s.Next(true), "a self-reinitializing update never forces")
	assert.Equal(t, 0, s.Count())

	// The window starts over after the reset.
	assert.False(t, s.Next(false))
	assert.True(t, s.Next(false))
}

func TestScheduler_AtMostEverySecondStep(t *testing.T) {
	var s ReinitializationScheduler

	var forced []bool
	for i := 0; i < 8; i++ {
		forced = append(forced, s.Next(false))
	}
	assert.Equal(t, []bool{false, true, false, true, false, true, false, true}, forced)
}

func TestScheduler_SelfReinitializationAlwaysWins(t *testing.T) {
	var s ReinitializationScheduler

	// Regardless of prior state, a true report resets and never forces.
	s.Next(false)
	assert.False(t, s.Next(true))
	assert.False(t, s.Next(true))
	assert.Equal(t, 0, s.Count())
}
