package bmcapture

import "time"

// Guard is an exclusive-access lock with timed acquisition. Each buffer slot
// owns one Guard for its whole lifetime, so a guard acquired for a slot stays
// valid across buffer rotations.
type Guard struct {
	ch chan struct{}
}

func newGuard() *Guard {
	return &Guard{ch: make(chan struct{}, 1)}
}

// Acquire takes the guard, waiting up to timeout. Returns false if the guard
// could not be acquired in time.
func (g *Guard) Acquire(timeout time.Duration) bool {
	select {
	case g.ch <- struct{}{}:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case g.ch <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

// TryAcquire takes the guard only if it is immediately available.
func (g *Guard) TryAcquire() bool {
	select {
	case g.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the guard. Calling Release without holding the guard panics.
func (g *Guard) Release() {
	select {
	case <-g.ch:
	default:
		panic("bmcapture: release of unheld guard")
	}
}
