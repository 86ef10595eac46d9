package membership

import (
	"encoding/binary"
	"fmt"
)

// AddrSize is the wire size of an Address: a 32-bit id followed by a
// 16-bit port, laid out as raw little-endian bytes.
const AddrSize = 6

// Address is a 6-byte peer identifier, conceptually (id uint32, port
// uint16) laid out in that order. Two addresses are equal iff their
// underlying bytes match.
type Address struct {
	ID   uint32
	Port uint16
}

// NullAddress is the sentinel "no address" value: all six bytes zero.
var NullAddress = Address{}

// Introducer is the well-known, fixed bootstrap address every node in a
// run must agree on.
var Introducer = Address{ID: 1, Port: 0}

// IsNull reports whether addr is the sentinel null address.
func (a Address) IsNull() bool {
	return a == NullAddress
}

// String renders the address as "id:port", the form used in log output
// and metric labels. Digest records use their own dot-separated form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%d", a.ID, a.Port)
}

// Encode serializes the address to its canonical 6-byte wire form.
func (a Address) Encode() [AddrSize]byte {
	var buf [AddrSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], a.ID)
	binary.LittleEndian.PutUint16(buf[4:6], a.Port)
	return buf
}

// DecodeAddress parses a 6-byte wire address. It returns ErrBadField if
// fewer than AddrSize bytes are supplied.
func DecodeAddress(b []byte) (Address, error) {
	if len(b) < AddrSize {
		return Address{}, fmt.Errorf("decode address: %w", ErrBadField)
	}
	return Address{
		ID:   binary.LittleEndian.Uint32(b[0:4]),
		Port: binary.LittleEndian.Uint16(b[4:6]),
	}, nil
}
