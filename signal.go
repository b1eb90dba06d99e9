package bmcapture

import "time"

// Defaults for the signal-lock hysteresis. A channel reports a valid signal
// only after DefaultMinFramesForLock consecutive good frames, and drops the
// lock only after DefaultMaxLostFrames consecutive bad ones.
const (
	DefaultMinFramesForLock = 3
	DefaultMaxLostFrames    = 5
)

const (
	// minFramesForRateCheck is how many frames must arrive before the
	// frame rate is considered measurable at all.
	minFramesForRateCheck = 10

	// frameRateStableWindow bounds how stale the last frame may be while
	// still calling the rate stable.
	frameRateStableWindow = 500 * time.Millisecond
)

// signalMonitor tracks whether the input has a usable signal. Frame arrivals
// feed observe; consumers poll valid and rateStable. Hysteresis on both edges
// keeps a single dropped or spurious frame from flapping the lock.
//
// Not safe for concurrent use; the owning channel serializes access.
type signalMonitor struct {
	minFramesForLock int
	maxLostFrames    int

	stableCount int
	lostCount   int
	locked      bool

	frameCount uint64
	lastFrame  time.Time

	now func() time.Time
}

func newSignalMonitor() *signalMonitor {
	return &signalMonitor{
		minFramesForLock: DefaultMinFramesForLock,
		maxLostFrames:    DefaultMaxLostFrames,
		now:              time.Now,
	}
}

// observe records one frame arrival. good is false for frames the driver
// delivered without an input signal. Every arrival counts toward frameCount
// and the rate check; only good frames advance the lock. Returns true if
// this observation acquired the lock.
func (s *signalMonitor) observe(good bool) bool {
	s.frameCount++
	s.lastFrame = s.now()

	if !good {
		s.stableCount = 0
		if s.locked {
			s.lostCount++
			if s.lostCount >= s.maxLostFrames {
				s.locked = false
				s.lostCount = 0
			}
		}
		return false
	}

	s.lostCount = 0
	if s.locked {
		return false
	}
	s.stableCount++
	if s.stableCount >= s.minFramesForLock {
		s.locked = true
		s.stableCount = 0
		return true
	}
	return false
}

func (s *signalMonitor) valid() bool {
	return s.locked
}

// rateStable reports whether enough frames have arrived, recently enough,
// to trust the measured frame rate.
func (s *signalMonitor) rateStable() bool {
	if s.frameCount < minFramesForRateCheck {
		return false
	}
	return s.now().Sub(s.lastFrame) < frameRateStableWindow
}

// setParameters adjusts the hysteresis thresholds. Values below 1 are
// rejected by the caller.
func (s *signalMonitor) setParameters(minFramesForLock, maxLostFrames int) {
	s.minFramesForLock = minFramesForLock
	s.maxLostFrames = maxLostFrames
}

func (s *signalMonitor) reset() {
	s.stableCount = 0
	s.lostCount = 0
	s.locked = false
	s.frameCount = 0
	s.lastFrame = time.Time{}
}
