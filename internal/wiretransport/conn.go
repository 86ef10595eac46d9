// Package wiretransport implements membership.Network over real TCP
// connections, for the "serve" process that runs one node against real
// peers instead of the in-memory netsim.Emulator. Every send opens a
// short-lived connection, writes one length-prefixed frame, and closes
// — matching the fire-and-forget, connectionless semantics the core
// already assumes.
package wiretransport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const maxFrameSize = 1 << 20 // 1 MiB; generous upper bound on a gossip digest

// writeFrame writes a 4-byte big-endian length prefix followed by
// frame's bytes.
func writeFrame(w io.Writer, frame []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(frame)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame from r.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(hdr[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame size %d exceeds limit %d", size, maxFrameSize)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// dialAndSend opens a new TCP connection to addr, writes frame, and
// closes the connection. It never retries or reconnects: the caller is
// expected to keep trying on its own schedule, same as a dropped UDP
// datagram would be.
func dialAndSend(network, addr string, frame []byte) error {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	return writeFrame(conn, frame)
}
