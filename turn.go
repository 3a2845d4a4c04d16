// Package turn implements a client-side engine for the NAT traversal
// protocols STUN (RFC 5389) and TURN (RFC 5766).
//
// The package contains the binary message codec, the XOR address
// transform used by XOR-MAPPED-ADDRESS and its TURN siblings, the
// long-term credential authenticator, and a blocking session driver
// (Client) that performs the Allocate and CreatePermission exchanges
// against a relay server.
//
// The codec, transform and authenticator are pure computations; only
// the Client touches the network, one round trip at a time.
package turn

import "encoding/binary"

// bin is shorthand to binary.BigEndian.
var bin = binary.BigEndian

// DefaultPort is IANA assigned port for "stun" and "turn" protocols.
const DefaultPort = 3478

const (
	// magicCookie is fixed value that aids in distinguishing STUN packets
	// from packets of other protocols when STUN is multiplexed with those
	// other protocols on the same port.
	//
	// The magic cookie field MUST contain the fixed value 0x2112A442 in
	// network byte order.
	//
	// Defined in "STUN Message Structure", section 6.
	magicCookie         = 0x2112A442
	attributeHeaderSize = 4
	messageHeaderSize   = 20
)

// TransactionIDSize is length of transaction id in bytes (96 bits).
const TransactionIDSize = 12

// MaxPacketSize is maximum size of UDP packet that is processable in
// this package.
const MaxPacketSize = 2048

// IsMessage returns true if b looks like STUN message: the two most
// significant bits of the first byte are zeroes and the magic cookie is
// in place. Useful for multiplexing. IsMessage does not guarantee that
// decoding will be successful.
func IsMessage(b []byte) bool {
	return len(b) >= messageHeaderSize &&
		b[0]&0xC0 == 0 &&
		bin.Uint32(b[4:8]) == magicCookie
}
