// Package membership implements the per-node gossip membership state
// machine: join bootstrapping, the liveness table, the gossip round, and
// failure detection. It is deliberately ignorant of how messages
// actually travel (Network), how time advances (Clock), and where
// events are recorded (Log) — those are injected, per spec §6.
package membership

import "errors"

// Node is one per-process membership actor. It is not safe for
// concurrent use: the emulator (or, for a real process, the serve
// command's lock around Deliver, Tick and Stop) guarantees Tick is never
// called reentrantly and never overlaps with Deliver (spec §5).
type Node struct {
	addr     Address
	protocol Protocol

	net     Network
	clock   Clock
	log     Log
	metrics Metrics

	inited  bool
	bFailed bool
	inGroup bool

	heartbeat   int64
	pingCounter int64

	inbox []Frame
	table *Table
}

// NewNode constructs a Node bound to addr. The node is uninitialized
// until Start is called.
func NewNode(addr Address, protocol Protocol, net Network, clock Clock, log Log, metrics Metrics) *Node {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Node{
		addr:     addr,
		protocol: protocol,
		net:      net,
		clock:    clock,
		log:      log,
		metrics:  metrics,
	}
}

// Addr returns the node's own address.
func (n *Node) Addr() Address { return n.addr }

// InGroup reports whether the node has been admitted to the cluster
// (immediately for the introducer, on first JOINREP for everyone else).
func (n *Node) InGroup() bool { return n.inGroup }

// Failed reports whether the node has been marked failed (crashed).
func (n *Node) Failed() bool { return n.bFailed }

// Table exposes the live membership table for read-only inspection
// (status endpoints, tests). Mutating it outside the node's own Tick
// would violate the single-writer invariant in spec §5.
func (n *Node) Table() *Table { return n.table }

// Start bootstraps the node: resets all lifecycle state, installs a
// fresh table containing only self, and attempts to join via
// introducerAddr. It fails with InitError only if addr is unusable
// (the null address can never join a real cluster).
func (n *Node) Start(introducerAddr Address) error {
	if n.addr.IsNull() {
		return &InitError{Reason: "own address is the null address"}
	}

	n.bFailed = false
	n.inited = true
	n.inGroup = false
	n.heartbeat = 0
	n.pingCounter = n.protocol.TFail
	n.inbox = nil
	n.table = NewTable(
		func(e Entry) { n.log.LogNodeAdd(n.addr, e.Addr()) },
		func(e Entry) { n.log.LogNodeRemove(n.addr, e.Addr()) },
	)
	n.table.Insert(n.addr.ID, n.addr.Port, n.heartbeat, n.now())

	n.introduceSelf(introducerAddr)
	return nil
}

// introduceSelf either declares the node the group booter (its own
// address equals the introducer's) or emits a JOINREQ and returns
// immediately — it never blocks for a reply. in_group flips to true
// only when a JOINREP is later processed by the receive handler.
func (n *Node) introduceSelf(introducerAddr Address) {
	if n.addr == introducerAddr {
		n.inGroup = true
		n.log.LogDebug(n.addr, "starting up group as introducer")
		return
	}

	n.log.LogDebug(n.addr, "joining via introducer %s", introducerAddr)
	frame := EncodeJoinReq(JoinReq{Addr: n.addr, Heartbeat: n.heartbeat})
	n.send(introducerAddr, frame)
}

// Stop clears all lifecycle state. It is idempotent.
func (n *Node) Stop() {
	n.bFailed = true
	n.inGroup = false
	n.inited = false
	n.inbox = nil
	n.table = nil
}

// Deliver enqueues a raw frame received from the network. Called by the
// Network adapter outside of Tick; the emulator guarantees this never
// races with a Tick in progress (spec §5).
func (n *Node) Deliver(raw []byte) {
	if n.bFailed {
		return
	}
	frame, err := DecodeFrame(raw)
	if err != nil {
		n.metrics.CodecError(n.addr, classifyCodecErr(err))
		n.log.LogDebug(n.addr, "dropping malformed frame: %v", err)
		return
	}
	n.inbox = append(n.inbox, frame)
}

// Tick runs one full cooperative step: a no-op if the node has failed,
// otherwise drain the inbox (spec §4.4) and, if in the group, run the
// periodic operator (spec §4.5).
func (n *Node) Tick() {
	if n.bFailed {
		return
	}

	n.drainInbox()

	if !n.inGroup {
		return
	}
	n.runPeriodic()
}

func (n *Node) now() int64 {
	return n.clock.Now()
}

func (n *Node) send(to Address, frame []byte) {
	if err := n.net.Send(n.addr, to, frame); err != nil {
		se := &SendError{To: to, Err: err}
		n.log.LogDebug(n.addr, "%v", se)
	}
}

func classifyCodecErr(err error) string {
	switch {
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrBadTag):
		return "bad_tag"
	case errors.Is(err, ErrBadField):
		return "bad_field"
	default:
		return "unknown"
	}
}
