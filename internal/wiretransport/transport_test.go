package wiretransport

import (
	"testing"
	"time"

	"github.com/mcastellin/clustermemb/internal/membership"
)

func TestFrameRoundTripOverLoopback(t *testing.T) {
	received := make(chan []byte, 1)
	ln, err := Listen("127.0.0.1:0", func(frame []byte) {
		received <- frame
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go ln.Serve()

	addrA := membership.Address{ID: 1, Port: 0}
	addrB := membership.Address{ID: 2, Port: 0}
	book := NewAddrBook(map[membership.Address]string{
		addrB: ln.Addr().String(),
	})
	tr := NewTransport(book, nil)

	want := []byte("hello, frame")
	if err := tr.Send(addrA, addrB, want); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestSendToUnknownAddressFails(t *testing.T) {
	book := NewAddrBook(nil)
	tr := NewTransport(book, nil)

	err := tr.Send(membership.Address{ID: 1}, membership.Address{ID: 99}, []byte("x"))
	if err == nil {
		t.Fatal("expected error sending to an address with no known endpoint")
	}
}

func TestAddrBookSetAndLookup(t *testing.T) {
	book := NewAddrBook(nil)
	addr := membership.Address{ID: 3, Port: 0}

	if _, ok := book.Lookup(addr); ok {
		t.Fatal("expected unknown address to miss")
	}
	book.Set(addr, "127.0.0.1:9999")
	endpoint, ok := book.Lookup(addr)
	if !ok || endpoint != "127.0.0.1:9999" {
		t.Fatalf("got %q, %v", endpoint, ok)
	}
}
