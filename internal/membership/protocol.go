package membership

// Protocol bundles the tunable constants from spec §3. Canonical
// defaults match the source: DefaultProtocol below.
type Protocol struct {
	// TFail is also used as the initial ping_counter value (spec §4.1),
	// even though failure detection itself only checks TRemove (spec §9's
	// "Ambiguous TREMOVE vs TFAIL" note — the single-threshold policy is
	// kept, see DESIGN.md).
	TFail int64
	// TRemove is the number of ticks of local silence after which a
	// non-self entry is pruned from the table.
	TRemove int64
	// TGossip is the number of ticks between gossip emissions.
	TGossip int64
}

// DefaultProtocol returns the canonical constants from spec §3:
// TFail and TGossip default to 5 ticks; TRemove defaults to TFail plus
// a small suspicion window (spec §3's "e.g. T_FAIL + small suspicion
// window") so a single missed gossip round can't prune a live peer.
func DefaultProtocol() Protocol {
	return Protocol{TFail: 5, TRemove: 10, TGossip: 5}
}
