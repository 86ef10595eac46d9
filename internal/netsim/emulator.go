// Package netsim implements the discrete-time in-memory network
// emulator that drives a cluster of membership.Node instances tick by
// tick, introducing configurable message loss and delivery jitter. It
// sits entirely outside the membership core's concurrency boundary:
// nothing here is called concurrently with a Node's own Tick, but the
// emulator itself is free to use locks, unlike the core.
package netsim

import (
	"math/rand"
	"sync"

	"github.com/mcastellin/clustermemb/internal/clock"
	"github.com/mcastellin/clustermemb/internal/membership"
)

type pendingDelivery struct {
	deliverAtTick int64
	to            membership.Address
	frame         []byte
}

// Emulator is a discrete-time, in-memory membership.Network that
// drives every registered Node exactly once per Tick, in stable
// registration order, and optionally drops or delays frames to
// exercise the protocol's tolerance for both.
//
// Emulator is safe for concurrent Send calls (membership.Node never
// issues them concurrently itself, but a real Network adapter could),
// guarded by a single mutex — well outside the core's single-threaded
// requirement.
type Emulator struct {
	mu sync.Mutex

	clock *clock.LogicalClock
	nodes map[membership.Address]*membership.Node
	order []membership.Address

	dropProbability float64
	maxJitterTicks  int
	pending         []pendingDelivery

	rng *rand.Rand
}

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithDropProbability sets the fraction (0..1) of sent frames silently
// discarded before delivery, modeling transient network loss.
func WithDropProbability(p float64) Option {
	return func(e *Emulator) { e.dropProbability = p }
}

// WithJitter bounds how many extra ticks a delivered frame may be
// delayed by (uniformly drawn in [0, maxTicks]).
func WithJitter(maxTicks int) Option {
	return func(e *Emulator) { e.maxJitterTicks = maxTicks }
}

// WithRand overrides the emulator's random source, for deterministic
// tests of loss/jitter behavior.
func WithRand(rng *rand.Rand) Option {
	return func(e *Emulator) { e.rng = rng }
}

// NewEmulator creates an Emulator with its own LogicalClock.
func NewEmulator(opts ...Option) *Emulator {
	e := &Emulator{
		clock: &clock.LogicalClock{},
		nodes: map[membership.Address]*membership.Node{},
		rng:   rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the emulator's shared logical clock, to be passed to
// every membership.NewNode registered with this Emulator.
func (e *Emulator) Clock() *clock.LogicalClock {
	return e.clock
}

// Register adds member to the emulator's routing table. member must
// already be constructed with this Emulator as its Network and this
// Emulator's Clock as its Clock.
func (e *Emulator) Register(member *membership.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	addr := member.Addr()
	if _, exists := e.nodes[addr]; !exists {
		e.order = append(e.order, addr)
	}
	e.nodes[addr] = member
}

// Send implements membership.Network. It applies the configured drop
// probability, then schedules delivery for the next tick (or a
// jittered later tick), never delivering synchronously within the
// caller's own Tick.
func (e *Emulator) Send(from, to membership.Address, frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dropProbability > 0 && e.rng.Float64() < e.dropProbability {
		return nil
	}

	delay := 0
	if e.maxJitterTicks > 0 {
		delay = e.rng.Intn(e.maxJitterTicks + 1)
	}
	e.pending = append(e.pending, pendingDelivery{
		deliverAtTick: e.clock.Now() + 1 + int64(delay),
		to:            to,
		frame:         frame,
	})
	return nil
}

// Tick advances the logical clock by one, flushes any pending
// deliveries whose tick has arrived, then calls Tick on every
// registered node exactly once, in stable registration order. A node
// that has marked itself failed (membership.Node.Failed) is skipped —
// Tick and Deliver are already no-ops on a failed node, so skipping
// here is purely an optimization, not a correctness requirement.
func (e *Emulator) Tick() {
	e.mu.Lock()
	e.clock.Advance()
	e.flushDeliveries()
	addrs := append([]membership.Address(nil), e.order...)
	e.mu.Unlock()

	for _, addr := range addrs {
		e.mu.Lock()
		n, ok := e.nodes[addr]
		e.mu.Unlock()
		if !ok || n.Failed() {
			continue
		}
		n.Tick()
	}
}

// flushDeliveries must be called with mu held.
func (e *Emulator) flushDeliveries() {
	remaining := e.pending[:0]
	for _, d := range e.pending {
		if d.deliverAtTick > e.clock.Now() {
			remaining = append(remaining, d)
			continue
		}
		if n, ok := e.nodes[d.to]; ok && !n.Failed() {
			n.Deliver(d.frame)
		}
	}
	e.pending = remaining
}

// Kill simulates a crash by calling Stop on the node: it stops being
// ticked (Tick becomes a no-op), stops receiving deliveries, and its
// in-memory state is discarded, matching spec §4.6's "peers that crash
// stop heartbeating" — from every other node's point of view a killed
// peer is simply silent until T_REMOVE ticks have passed.
func (e *Emulator) Kill(addr membership.Address) {
	e.mu.Lock()
	n, ok := e.nodes[addr]
	e.mu.Unlock()
	if ok {
		n.Stop()
	}
}

// Revive rejoins a previously-killed node as a fresh process via
// introducerAddr, modeling spec §4.6's partition-heal behavior: the
// revived node's id reappears at its peers as a new insertion, not a
// restored entry.
func (e *Emulator) Revive(addr, introducerAddr membership.Address) error {
	e.mu.Lock()
	n, ok := e.nodes[addr]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return n.Start(introducerAddr)
}

// Members returns the addresses of every registered node, in stable
// registration order.
func (e *Emulator) Members() []membership.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]membership.Address(nil), e.order...)
}
