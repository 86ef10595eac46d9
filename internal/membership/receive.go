package membership

// drainInbox processes every frame queued since the last Tick, in FIFO
// order (spec §5), then clears the inbox. Each frame is dispatched by
// type per spec §4.4.
func (n *Node) drainInbox() {
	if len(n.inbox) == 0 {
		return
	}
	pending := n.inbox
	n.inbox = nil

	for _, frame := range pending {
		switch frame.Type {
		case MsgJoinReq:
			n.handleJoinReq(frame.JoinReq)
		case MsgJoinRep:
			n.handleJoinRep(frame.Digest)
		case MsgGossip:
			n.handleGossip(frame.Digest)
		}
	}
}

// handleJoinReq admits the newcomer (if unknown) before replying, so
// the JOINREP digest the introducer sends back already includes the
// newcomer (spec §4.4, "introducer admits before reply").
func (n *Node) handleJoinReq(req JoinReq) {
	now := n.now()
	if _, ok := n.table.Find(req.Addr.ID); !ok {
		n.table.Insert(req.Addr.ID, req.Addr.Port, req.Heartbeat, now)
	}

	reply := EncodeJoinRep(n.table.Snapshot())
	n.send(req.Addr, reply)
	n.metrics.TableSize(n.addr, n.table.Len())
}

func (n *Node) handleJoinRep(digest []Entry) {
	n.inGroup = true
	n.mergeDigest(digest)
}

func (n *Node) handleGossip(digest []Entry) {
	n.mergeDigest(digest)
}

// mergeDigest applies the monotone merge rule (spec §4.4) record by
// record. The incoming timestamp is informational only: local
// timestamps always reflect local observation time, so failure
// detection measures local staleness.
func (n *Node) mergeDigest(digest []Entry) {
	now := n.now()
	for _, rec := range digest {
		n.table.Merge(n.addr.ID, rec, now)
	}
	n.metrics.TableSize(n.addr, n.table.Len())
}
