package wiretransport

import (
	"fmt"
	"sync"

	"github.com/mcastellin/clustermemb/internal/membership"
)

// AddrBook maps a membership.Address to the "host:port" TCP endpoint to
// dial when sending to it. It is seeded once at startup from the serve
// command's --peer list; Set records or replaces an endpoint. Digests
// carry only id and port, so a peer learned by gossip has no endpoint
// here unless Set adds one.
type AddrBook struct {
	mu   sync.RWMutex
	book map[membership.Address]string
}

// NewAddrBook creates an AddrBook seeded with the given entries.
func NewAddrBook(seed map[membership.Address]string) *AddrBook {
	book := make(map[membership.Address]string, len(seed))
	for k, v := range seed {
		book[k] = v
	}
	return &AddrBook{book: book}
}

// Set records or updates the endpoint for addr.
func (b *AddrBook) Set(addr membership.Address, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.book[addr] = endpoint
}

// Lookup returns the endpoint for addr, if known.
func (b *AddrBook) Lookup(addr membership.Address) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	endpoint, ok := b.book[addr]
	return endpoint, ok
}

// SendLogger receives a notification whenever a send could not be
// delivered, so the caller can log it without the core ever seeing the
// error (matching membership.Network's fire-and-forget contract).
type SendLogger interface {
	LogDebug(self membership.Address, format string, args ...any)
}

// Transport implements membership.Network over real TCP connections. It
// never blocks the caller: every Send dials and writes on its own
// goroutine, consistent with the core's requirement that Tick never
// blocks.
type Transport struct {
	book *AddrBook
	log  SendLogger
}

// NewTransport creates a Transport backed by book. log may be nil, in
// which case send failures are discarded.
func NewTransport(book *AddrBook, log SendLogger) *Transport {
	return &Transport{book: book, log: log}
}

// Send implements membership.Network. The dial+write happens on a new
// goroutine so the caller (the node's own Tick) never blocks on network
// I/O; any error is swallowed after being reported to log.
func (t *Transport) Send(from, to membership.Address, frame []byte) error {
	endpoint, ok := t.book.Lookup(to)
	if !ok {
		return fmt.Errorf("wiretransport: no known endpoint for %s", to)
	}

	go func() {
		if err := dialAndSend("tcp", endpoint, frame); err != nil && t.log != nil {
			t.log.LogDebug(from, "wiretransport: send to %s failed: %v", to, err)
		}
	}()
	return nil
}
