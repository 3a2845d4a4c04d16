package turn

import (
	"io"
	"net"
	"strconv"

	"github.com/pion/transport/v3/utils/xor"
)

// XorAddress is the obfuscated transport address form shared by
// XOR-MAPPED-ADDRESS, XOR-PEER-ADDRESS and XOR-RELAYED-ADDRESS.
//
// The port is XOR'd with the most significant 16 bits of the magic
// cookie; an IPv4 address is XOR'd with the magic cookie and an IPv6
// address with the concatenation of the magic cookie and the
// transaction id.
//
// RFC 5389 Section 15.2.
type XorAddress struct {
	IP   net.IP
	Port int
}

func (a XorAddress) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}

// xorKey writes the 16-byte XOR key material (magic cookie followed by
// transaction id) for m into dst.
func xorKey(dst []byte, m *Message) {
	bin.PutUint32(dst[0:4], magicCookie)
	copy(dst[4:], m.TransactionID[:])
}

// AddToAs adds the XOR-obfuscated form of a to m as t attribute.
func (a XorAddress) AddToAs(m *Message, t AttrType) error {
	ip, family, err := ipFamily(a.IP)
	if err != nil {
		return err
	}
	value := make([]byte, 4+len(ip))
	xorValue := make([]byte, 4+TransactionIDSize)
	xorKey(xorValue, m)
	// First 8 bits of the value are zeroes.
	bin.PutUint16(value[0:2], family)
	bin.PutUint16(value[2:4], uint16(a.Port^magicCookie>>16))
	xor.XorBytes(value[4:], ip, xorValue)
	m.Add(t, value)
	return nil
}

// GetFromAs decodes the XOR-obfuscated t attribute value in m into a.
// Returns ErrAddressFamilyUnknown for a family byte this package does
// not recognize; the attribute should then be treated as absent, not
// as a malformed message.
func (a *XorAddress) GetFromAs(m *Message, t AttrType) error {
	v, err := m.Get(t)
	if err != nil {
		return err
	}
	if len(v) <= 4 {
		return io.ErrUnexpectedEOF
	}
	family := bin.Uint16(v[0:2])
	if family != familyIPv4 && family != familyIPv6 {
		return ErrAddressFamilyUnknown
	}
	ipLen := net.IPv4len
	if family == familyIPv6 {
		ipLen = net.IPv6len
	}
	if err := CheckSize(t, len(v[4:]), ipLen); err != nil {
		return err
	}
	xorValue := make([]byte, 4+TransactionIDSize)
	xorKey(xorValue, m)
	a.Port = int(bin.Uint16(v[2:4])) ^ (magicCookie >> 16)
	a.IP = make(net.IP, ipLen)
	xor.XorBytes(a.IP, v[4:], xorValue)
	return nil
}

// XorMappedAddress implements XOR-MAPPED-ADDRESS attribute, the
// reflexive transport address as seen by the server.
//
// RFC 5389 Section 15.2.
type XorMappedAddress struct {
	XorAddress
}

// AddTo adds XOR-MAPPED-ADDRESS to m.
func (a XorMappedAddress) AddTo(m *Message) error {
	return a.AddToAs(m, AttrXORMappedAddress)
}

// GetFrom decodes XOR-MAPPED-ADDRESS from m.
func (a *XorMappedAddress) GetFrom(m *Message) error {
	return a.GetFromAs(m, AttrXORMappedAddress)
}

// XorPeerAddress implements XOR-PEER-ADDRESS attribute, the peer
// address as seen from the TURN server. It is encoded in the same way
// as XOR-MAPPED-ADDRESS.
//
// RFC 5766 Section 14.3.
type XorPeerAddress struct {
	XorAddress
}

// AddTo adds XOR-PEER-ADDRESS to m.
func (a XorPeerAddress) AddTo(m *Message) error {
	return a.AddToAs(m, AttrXORPeerAddress)
}

// GetFrom decodes XOR-PEER-ADDRESS from m.
func (a *XorPeerAddress) GetFrom(m *Message) error {
	return a.GetFromAs(m, AttrXORPeerAddress)
}

// XorRelayedAddress implements XOR-RELAYED-ADDRESS attribute, present
// in Allocate responses: the address and port that the server
// allocated to the client. It is encoded in the same way as
// XOR-MAPPED-ADDRESS.
//
// RFC 5766 Section 14.5.
type XorRelayedAddress struct {
	XorAddress
}

// AddTo adds XOR-RELAYED-ADDRESS to m.
func (a XorRelayedAddress) AddTo(m *Message) error {
	return a.AddToAs(m, AttrXORRelayedAddress)
}

// GetFrom decodes XOR-RELAYED-ADDRESS from m.
func (a *XorRelayedAddress) GetFrom(m *Message) error {
	return a.GetFromAs(m, AttrXORRelayedAddress)
}
