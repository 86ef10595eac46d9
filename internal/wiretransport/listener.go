package wiretransport

import (
	"errors"
	"fmt"
	"net"
)

// Sink receives every frame the Listener accepts, already stripped of
// its length prefix. The listener doesn't know or care which
// membership.Node a frame belongs to — by construction there is
// exactly one node per process in the serve path — so Sink is almost
// always membership.Node.Deliver.
type Sink func(frame []byte)

// Listener accepts inbound TCP connections, reads exactly one
// length-prefixed frame per connection, passes it to Sink, and closes
// the connection. Each send from a peer is a new, short-lived
// connection: there is no persistent session to track.
type Listener struct {
	ln   net.Listener
	sink Sink
}

// Listen binds addr and returns a Listener ready to Serve.
func Listen(addr string, sink Sink) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wiretransport: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln, sink: sink}, nil
}

// Addr returns the bound address, useful when addr was passed as
// "host:0" to let the OS pick a port.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Serve accepts connections until Close is called, handling each one on
// its own goroutine. It returns nil when the listener is closed, any
// other error otherwise.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("wiretransport: accept: %w", err)
		}
		go l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()

	frame, err := readFrame(conn)
	if err != nil {
		return
	}
	l.sink(frame)
}

// Close stops accepting new connections. In-flight handlers run to
// completion.
func (l *Listener) Close() error {
	return l.ln.Close()
}
