package chain

import (
	"sync/atomic"
	"time"
)

// Clock exposes the host's logical height: a monotonically non-decreasing
// integer used for order expiry and audit timestamps, never for scheduling.
type Clock interface {
	Height() uint64
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	height uint64
}

// NewManual returns a Manual clock starting at the given height.
func NewManual(height uint64) *Manual {
	return &Manual{height: height}
}

// Height returns the current height.
func (m *Manual) Height() uint64 {
	return atomic.LoadUint64(&m.height)
}

// SetHeight moves the clock to a specific height.
func (m *Manual) SetHeight(height uint64) {
	atomic.StoreUint64(&m.height, height)
}

// Advance moves the clock forward by delta.
func (m *Manual) Advance(delta uint64) {
	atomic.AddUint64(&m.height, delta)
}

// Ticker is a wall-clock driven height source for the standalone server,
// standing in for the sequencing layer's block height.
type Ticker struct {
	height uint64
	stop   chan struct{}
}

// NewTicker starts a height source that increments every interval.
func NewTicker(interval time.Duration) *Ticker {
	t := &Ticker{height: 1, stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				atomic.AddUint64(&t.height, 1)
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Height returns the current height.
func (t *Ticker) Height() uint64 {
	return atomic.LoadUint64(&t.height)
}

// Stop halts the ticker goroutine.
func (t *Ticker) Stop() {
	close(t.stop)
}
