package bmcapture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalLockAfterMinFrames(t *testing.T) {
	s := newSignalMonitor()

	assert.False(t, s.valid())
	s.observe(true)
	s.observe(true)
	assert.False(t, s.valid(), "two good frames must not lock")
	acquired := s.observe(true)
	assert.True(t, acquired)
	assert.True(t, s.valid())
}

func TestSignalInterruptionResetsProgress(t *testing.T) {
	s := newSignalMonitor()

	s.observe(true)
	s.observe(true)
	s.observe(false) // progress lost
	s.observe(true)
	s.observe(true)
	assert.False(t, s.valid(), "good frames before an interruption must not count")
	s.observe(true)
	assert.True(t, s.valid())
}

func TestSignalLossHysteresis(t *testing.T) {
	s := newSignalMonitor()
	for i := 0; i < DefaultMinFramesForLock; i++ {
		s.observe(true)
	}
	assert.True(t, s.valid())

	// A short dropout must not break the lock.
	for i := 0; i < DefaultMaxLostFrames-1; i++ {
		s.observe(false)
		assert.True(t, s.valid(), "lock dropped after %d bad frame(s)", i+1)
	}
	s.observe(true)
	assert.True(t, s.valid())

	// A sustained dropout must.
	for i := 0; i < DefaultMaxLostFrames; i++ {
		s.observe(false)
	}
	assert.False(t, s.valid())
}

func TestSignalRelockAfterLoss(t *testing.T) {
	s := newSignalMonitor()
	for i := 0; i < DefaultMinFramesForLock; i++ {
		s.observe(true)
	}
	for i := 0; i < DefaultMaxLostFrames; i++ {
		s.observe(false)
	}
	assert.False(t, s.valid())

	// Reacquisition goes through the full stable-frame count again.
	s.observe(true)
	s.observe(true)
	assert.False(t, s.valid())
	s.observe(true)
	assert.True(t, s.valid())
}

func TestSignalCustomParameters(t *testing.T) {
	s := newSignalMonitor()
	s.setParameters(1, 1)

	s.observe(true)
	assert.True(t, s.valid())
	s.observe(false)
	assert.False(t, s.valid())
}

func TestFrameRateStability(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newSignalMonitor()
	s.now = func() time.Time { return now }

	for i := 0; i < minFramesForRateCheck-1; i++ {
		s.observe(true)
	}
	assert.False(t, s.rateStable(), "too few frames for a rate estimate")

	s.observe(true)
	assert.True(t, s.rateStable())

	// A stale last frame means the rate can no longer be trusted, even
	// with plenty of frames on record.
	now = now.Add(frameRateStableWindow + time.Millisecond)
	assert.False(t, s.rateStable())

	s.observe(true)
	assert.True(t, s.rateStable())
}

func TestInvalidFramesStillCountAsArrivals(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newSignalMonitor()
	s.now = func() time.Time { return now }

	// A source delivering flagged no-input frames is still delivering
	// frames: the arrival count and rate check must see them, even though
	// the lock never engages.
	for i := 0; i < 12; i++ {
		s.observe(false)
	}
	assert.Equal(t, uint64(12), s.frameCount)
	assert.True(t, s.rateStable())
	assert.False(t, s.valid())

	now = now.Add(frameRateStableWindow + time.Millisecond)
	assert.False(t, s.rateStable())
	s.observe(false)
	assert.True(t, s.rateStable())
}

func TestSignalReset(t *testing.T) {
	s := newSignalMonitor()
	for i := 0; i < 20; i++ {
		s.observe(true)
	}
	s.reset()

	assert.False(t, s.valid())
	assert.False(t, s.rateStable())
	assert.Equal(t, uint64(0), s.frameCount)
}
