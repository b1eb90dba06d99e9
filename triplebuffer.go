package bmcapture

import "sync"

// TripleBuffer hands frames from a producer to a consumer through three
// rotating slots. The producer writes into the back slot and publishes with
// SwapBack; the consumer promotes the freshest published slot with SwapFront
// and reads through Front. The producer never waits for the consumer.
//
// Slot identities are stable: a value placed in a slot stays in that slot,
// only the back/middle/front roles rotate around it.
type TripleBuffer[T any] struct {
	mu    sync.Mutex
	slots [3]T

	back   int
	middle int
	front  int

	// fresh marks that the middle slot holds a publication the consumer
	// has not promoted yet.
	fresh bool
}

// NewTripleBuffer returns a buffer whose slots hold the given initial values.
func NewTripleBuffer[T any](a, b, c T) *TripleBuffer[T] {
	return &TripleBuffer[T]{
		slots:  [3]T{a, b, c},
		back:   0,
		middle: 1,
		front:  2,
	}
}

// Back returns the slot the producer may write into. Only the producer may
// call Back and it must not retain the value across SwapBack.
func (tb *TripleBuffer[T]) Back() T {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.slots[tb.back]
}

// BackIndex returns the index of the current back slot.
func (tb *TripleBuffer[T]) BackIndex() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.back
}

// SwapBack publishes the back slot: it becomes the middle slot and the
// previous middle becomes the new back. Never blocks on the consumer; an
// unconsumed publication is simply replaced.
func (tb *TripleBuffer[T]) SwapBack() {
	tb.mu.Lock()
	tb.back, tb.middle = tb.middle, tb.back
	tb.fresh = true
	tb.mu.Unlock()
}

// SwapFront promotes the most recent publication to the front slot. Returns
// true if a new publication was promoted, false if nothing has been published
// since the last promotion (the front slot is left untouched).
func (tb *TripleBuffer[T]) SwapFront() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if !tb.fresh {
		return false
	}
	tb.front, tb.middle = tb.middle, tb.front
	tb.fresh = false
	return true
}

// Front returns the consumer's slot. The value is stable until the next
// SwapFront.
func (tb *TripleBuffer[T]) Front() T {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.slots[tb.front]
}

// FrontIndex returns the index of the current front slot.
func (tb *TripleBuffer[T]) FrontIndex() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.front
}
