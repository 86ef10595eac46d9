package membership

import "sync"

// Entry is one row of a node's membership table: one per known peer,
// including self.
type Entry struct {
	ID        uint32
	Port      uint16
	Heartbeat int64
	Timestamp int64
}

// Addr reconstructs the peer's Address from the entry's id/port fields.
func (e Entry) Addr() Address {
	return Address{ID: e.ID, Port: e.Port}
}

// Table stores one Entry per known peer, keyed by id. It enforces the
// invariants from spec §4.3: id uniqueness, strictly-monotonic heartbeat
// updates, and a local (not peer-reported) timestamp on every refresh.
//
// The mutating methods (Insert, UpdateHeartbeat, Remove, SelfHeartbeatBump,
// Merge) are only ever called from the node's Start (which inserts self)
// or from within a single node's Tick, which the emulator guarantees is
// never reentrant (spec §5). The read methods
// (Find, Len, Iter, Snapshot) are additionally called from a status
// server's own goroutine in the "serve" path, concurrently with Tick, so
// every method takes mu to keep the map's single-writer invariant from
// becoming a concurrent map read/write.
type Table struct {
	mu       sync.RWMutex
	entries  map[uint32]*Entry
	order    []uint32
	onAdd    func(Entry)
	onRemove func(Entry)
}

// NewTable creates an empty table. onAdd/onRemove are invoked whenever
// Insert/Remove mutate the table, giving the caller a hook to emit the
// "node added"/"node removed" log events described in spec §4.3 without
// the table importing a logger itself.
func NewTable(onAdd, onRemove func(Entry)) *Table {
	if onAdd == nil {
		onAdd = func(Entry) {}
	}
	if onRemove == nil {
		onRemove = func(Entry) {}
	}
	return &Table{
		entries:  map[uint32]*Entry{},
		onAdd:    onAdd,
		onRemove: onRemove,
	}
}

// Insert appends a new entry. The caller guarantees id is not already
// present.
func (t *Table) Insert(id uint32, port uint16, heartbeat, now int64) {
	t.mu.Lock()
	e := &Entry{ID: id, Port: port, Heartbeat: heartbeat, Timestamp: now}
	t.entries[id] = e
	t.order = append(t.order, id)
	t.mu.Unlock()
	t.onAdd(*e)
}

// Find returns the entry for id, if present.
func (t *Table) Find(id uint32) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// UpdateHeartbeat overwrites the stored heartbeat and resets the local
// timestamp only if newHB is strictly greater than the current value.
// Equal values are ignored so a repeated refresh can't mask staleness.
func (t *Table) UpdateHeartbeat(id uint32, newHB, now int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return false
	}
	if newHB > e.Heartbeat {
		e.Heartbeat = newHB
		e.Timestamp = now
		return true
	}
	return false
}

// Remove deletes the entry for id, if present, and fires onRemove.
func (t *Table) Remove(id uint32, now int64) {
	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.entries, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	t.onRemove(*e)
}

// SelfHeartbeatBump sets self's stored heartbeat to selfHB. It is a
// no-op if self (id) is not yet present.
func (t *Table) SelfHeartbeatBump(id uint32, selfHB, now int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return
	}
	e.Heartbeat = selfHB
	e.Timestamp = now
}

// Len reports the number of entries currently stored.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Iter calls fn once per entry, in stable insertion order (spec §4.3:
// "order is unspecified but stable within a single tick"). fn is called
// on a snapshot with mu released, so it may call back into t.
func (t *Table) Iter(fn func(Entry)) {
	t.mu.RLock()
	snapshot := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		if e, ok := t.entries[id]; ok {
			snapshot = append(snapshot, *e)
		}
	}
	t.mu.RUnlock()
	for _, e := range snapshot {
		fn(e)
	}
}

// Snapshot returns a copy of every entry, in the same stable order as
// Iter. Used to build outgoing digests and JSON status views.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, 0, t.Len())
	t.Iter(func(e Entry) { out = append(out, e) })
	return out
}

// Merge applies the monotone merge rule from spec §4.4 for one incoming
// record: insert if unknown, overwrite-and-refresh if strictly newer,
// otherwise ignore. selfID records are never overridden — self's
// heartbeat is authoritative locally regardless of what a digest claims.
func (t *Table) Merge(selfID uint32, rec Entry, now int64) {
	if rec.ID == selfID {
		return
	}
	t.mu.RLock()
	_, known := t.entries[rec.ID]
	t.mu.RUnlock()
	if !known {
		t.Insert(rec.ID, rec.Port, rec.Heartbeat, now)
		return
	}
	t.UpdateHeartbeat(rec.ID, rec.Heartbeat, now)
}
