package membership

import (
	"errors"
	"testing"
)

func TestJoinReqRoundTrip(t *testing.T) {
	req := JoinReq{Addr: Address{ID: 2, Port: 0}, Heartbeat: 17}
	frame := EncodeJoinReq(req)

	decoded, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Type != MsgJoinReq {
		t.Fatalf("unexpected type: %v", decoded.Type)
	}
	if decoded.JoinReq != req {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded.JoinReq, req)
	}
}

func TestDigestRoundTrip(t *testing.T) {
	entries := []Entry{
		{ID: 1, Port: 0, Heartbeat: 0, Timestamp: 0},
		{ID: 2, Port: 0, Heartbeat: 3, Timestamp: 12},
	}

	frame := EncodeGossip(entries)
	decoded, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Type != MsgGossip {
		t.Fatalf("unexpected type: %v", decoded.Type)
	}
	assertEntriesEqualAsMultiset(t, decoded.Digest, entries)
}

func TestJoinRepDigestMatchesLiteralScenario(t *testing.T) {
	// Scenario from spec §8.1: A=(1,0), B=(2,0), both heartbeat 0.
	entries := []Entry{
		{ID: 1, Port: 0, Heartbeat: 0, Timestamp: 0},
		{ID: 2, Port: 0, Heartbeat: 0, Timestamp: 7},
	}
	got := string(EncodeDigest(entries))
	want := "1.0.0.0>2.0.0.7>"
	if got != want {
		t.Fatalf("digest mismatch: got %q, want %q", got, want)
	}
}

func TestDecodeDigestTrailingNUL(t *testing.T) {
	raw := append([]byte("1.0.0.0>"), 0)
	entries, err := DecodeDigest(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != 1 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestDecodeDigestBadField(t *testing.T) {
	_, err := DecodeDigest([]byte("1.0.x.0>"))
	if !errors.Is(err, ErrBadField) {
		t.Fatalf("expected ErrBadField, got %v", err)
	}
}

func TestDecodeFrameBadTag(t *testing.T) {
	_, err := DecodeFrame([]byte{99, 0, 0})
	if !errors.Is(err, ErrBadTag) {
		t.Fatalf("expected ErrBadTag, got %v", err)
	}
}

func TestDecodeFrameTruncated(t *testing.T) {
	_, err := DecodeFrame(nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	_, err = DecodeFrame([]byte{byte(MsgJoinReq), 1, 2})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated on short JOINREQ body, got %v", err)
	}
}

func assertEntriesEqualAsMultiset(t *testing.T, got, want []Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	remaining := append([]Entry(nil), want...)
	for _, g := range got {
		found := -1
		for i, w := range remaining {
			if g == w {
				found = i
				break
			}
		}
		if found == -1 {
			t.Fatalf("entry %+v not found in expected set %+v", g, want)
		}
		remaining = append(remaining[:found], remaining[found+1:]...)
	}
}
