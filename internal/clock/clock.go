// Package clock provides the two membership.Clock implementations used
// outside of tests: LogicalClock for the in-memory simulation driven by
// netsim.Emulator, and WallClock for the "serve" real-process path,
// where ticks are paced by an actual time.Ticker.
package clock

import (
	"sync/atomic"
	"time"
)

// LogicalClock is a shared, monotonically increasing tick counter. All
// nodes registered with the same driver (netsim.Emulator, or a future
// test harness) read the same LogicalClock, so every node observes
// identical tick numbers within a round — required for the
// bounded-detection-time scenarios from the simulate CLI.
//
// LogicalClock is safe for concurrent Now calls; Advance is expected to
// be called by a single driver goroutine.
type LogicalClock struct {
	tick int64
}

// Now implements membership.Clock.
func (c *LogicalClock) Now() int64 {
	return atomic.LoadInt64(&c.tick)
}

// Advance bumps the clock by one tick and returns the new value.
func (c *LogicalClock) Advance() int64 {
	return atomic.AddInt64(&c.tick, 1)
}

// WallClock paces ticks off a real time.Ticker, for the "serve"
// subcommand running against a real network. Each tick corresponds to
// one firing of the underlying ticker; Now reports the number of ticks
// observed so far, not wall-clock time itself, so the protocol's
// constants (T_FAIL, T_REMOVE, T_GOSSIP) keep their tick-count meaning
// regardless of the configured interval.
type WallClock struct {
	interval time.Duration
	ticker   *time.Ticker
	tick     int64
}

// NewWallClock creates a WallClock that advances once per interval. Run
// must be called to start the underlying ticker.
func NewWallClock(interval time.Duration) *WallClock {
	return &WallClock{interval: interval}
}

// Now implements membership.Clock.
func (w *WallClock) Now() int64 {
	return atomic.LoadInt64(&w.tick)
}

// Run starts the ticker and blocks, calling onTick once per fired tick
// until stop is closed. Callers typically run this in its own
// goroutine.
func (w *WallClock) Run(stop <-chan struct{}, onTick func()) {
	w.ticker = time.NewTicker(w.interval)
	defer w.ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-w.ticker.C:
			atomic.AddInt64(&w.tick, 1)
			onTick()
		}
	}
}
