package membership

// runPeriodic is the per-tick periodic operator (spec §4.5), run once
// per Tick while the node is in the group:
//
//  1. bump the local heartbeat and refresh self's table entry;
//  2. prune any non-self entry silent for more than TRemove ticks;
//  3. every TGossip ticks, send the current digest to every known
//     non-self peer.
//
// The self-heartbeat bump happens before pruning and before gossip
// emission so outgoing gossip always carries the freshest self
// heartbeat, and self can never be pruned by its own tick.
func (n *Node) runPeriodic() {
	now := n.now()

	n.heartbeat++
	n.table.SelfHeartbeatBump(n.addr.ID, n.heartbeat, now)

	n.pruneExpired(now)

	if n.pingCounter == 0 {
		n.emitGossip()
		n.pingCounter = n.protocol.TGossip
	} else {
		n.pingCounter--
	}
}

// pruneExpired removes every non-self entry whose local timestamp is
// older than TRemove ticks. The scan snapshots first so removal during
// iteration can't skip an entry.
func (n *Node) pruneExpired(now int64) {
	for _, e := range n.table.Snapshot() {
		if e.ID == n.addr.ID {
			continue
		}
		if now-e.Timestamp > n.protocol.TRemove {
			n.table.Remove(e.ID, now)
			n.metrics.PeerRemoved(n.addr)
		}
	}
}

// emitGossip sends the current digest to every non-self peer known
// after pruning, so an already-removed peer receives nothing (spec
// §4.5's "tie-break" note). Targets are iterated in table order, and
// sends within this Tick happen in that same order (spec §5).
func (n *Node) emitGossip() {
	entries := n.table.Snapshot()
	digest := EncodeGossip(entries)
	for _, e := range entries {
		if e.ID == n.addr.ID {
			continue
		}
		n.send(e.Addr(), digest)
		n.metrics.GossipSent(n.addr)
	}
}
