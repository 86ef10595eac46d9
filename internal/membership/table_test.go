package membership

import "testing"

func TestTableInsertFindRemove(t *testing.T) {
	table := NewTable(nil, nil)

	table.Insert(1, 100, 0, 10)
	e, ok := table.Find(1)
	if !ok {
		t.Fatal("expected entry 1 to be found after insert")
	}
	if e.Port != 100 || e.Heartbeat != 0 || e.Timestamp != 10 {
		t.Fatalf("unexpected entry: %+v", e)
	}

	table.Remove(1, 20)
	if _, ok := table.Find(1); ok {
		t.Fatal("expected entry 1 to be absent after remove")
	}
}

func TestTableUpdateHeartbeatIsStrictlyMonotonic(t *testing.T) {
	table := NewTable(nil, nil)
	table.Insert(1, 100, 5, 0)

	if table.UpdateHeartbeat(1, 5, 10) {
		t.Fatal("equal heartbeat should be ignored")
	}
	e, _ := table.Find(1)
	if e.Heartbeat != 5 || e.Timestamp != 0 {
		t.Fatalf("equal update should not change state: %+v", e)
	}

	if !table.UpdateHeartbeat(1, 6, 10) {
		t.Fatal("strictly greater heartbeat should update")
	}
	e, _ = table.Find(1)
	if e.Heartbeat != 6 || e.Timestamp != 10 {
		t.Fatalf("unexpected entry after update: %+v", e)
	}

	if table.UpdateHeartbeat(1, 3, 20) {
		t.Fatal("smaller heartbeat should be ignored")
	}
	e, _ = table.Find(1)
	if e.Heartbeat != 6 {
		t.Fatalf("heartbeat should not have regressed: %+v", e)
	}
}

func TestTableSelfHeartbeatBumpNoopWhenMissing(t *testing.T) {
	table := NewTable(nil, nil)
	table.SelfHeartbeatBump(1, 99, 1)
	if _, ok := table.Find(1); ok {
		t.Fatal("bump should not create an entry")
	}
}

func TestTableIterStableOrder(t *testing.T) {
	table := NewTable(nil, nil)
	table.Insert(3, 0, 0, 0)
	table.Insert(1, 0, 0, 0)
	table.Insert(2, 0, 0, 0)

	var order []uint32
	table.Iter(func(e Entry) { order = append(order, e.ID) })

	want := []uint32{3, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v, want %v", order, want)
		}
	}
}

func TestTableMergeSelfImmunity(t *testing.T) {
	table := NewTable(nil, nil)
	table.Insert(1, 0, 42, 0)

	table.Merge(1, Entry{ID: 1, Port: 0, Heartbeat: 0, Timestamp: 999}, 5)

	e, _ := table.Find(1)
	if e.Heartbeat != 42 {
		t.Fatalf("self heartbeat should be immune to merge, got %d", e.Heartbeat)
	}
}

func TestTableMergeInsertsUnknownPeer(t *testing.T) {
	table := NewTable(nil, nil)
	table.Merge(1, Entry{ID: 2, Port: 100, Heartbeat: 7, Timestamp: 3}, 9)

	e, ok := table.Find(2)
	if !ok {
		t.Fatal("expected unknown peer to be inserted")
	}
	// Local timestamp always reflects local observation time, not the
	// record's reported timestamp.
	if e.Timestamp != 9 {
		t.Fatalf("expected local timestamp, got %d", e.Timestamp)
	}
}

func TestTableMergeIdempotence(t *testing.T) {
	table := NewTable(nil, nil)
	table.Insert(1, 0, 0, 0)
	rec := Entry{ID: 2, Port: 0, Heartbeat: 10, Timestamp: 0}

	table.Merge(1, rec, 5)
	first, _ := table.Find(2)

	table.Merge(1, rec, 5)
	second, _ := table.Find(2)

	if first != second {
		t.Fatalf("merging the same digest twice changed state: %+v vs %+v", first, second)
	}
}

func TestTableMergeMonotonicity(t *testing.T) {
	table := NewTable(nil, nil)
	table.Insert(1, 0, 0, 0)

	table.Merge(1, Entry{ID: 2, Port: 0, Heartbeat: 10, Timestamp: 0}, 1)
	table.Merge(1, Entry{ID: 2, Port: 0, Heartbeat: 5, Timestamp: 0}, 2)

	e, _ := table.Find(2)
	if e.Heartbeat != 10 {
		t.Fatalf("heartbeat should remain at the larger value, got %d", e.Heartbeat)
	}
}

func TestTableOnAddOnRemoveHooks(t *testing.T) {
	var added, removed []uint32
	table := NewTable(
		func(e Entry) { added = append(added, e.ID) },
		func(e Entry) { removed = append(removed, e.ID) },
	)

	table.Insert(7, 0, 0, 0)
	table.Remove(7, 1)

	if len(added) != 1 || added[0] != 7 {
		t.Fatalf("expected onAdd hook to fire once for id 7: %v", added)
	}
	if len(removed) != 1 || removed[0] != 7 {
		t.Fatalf("expected onRemove hook to fire once for id 7: %v", removed)
	}
}
