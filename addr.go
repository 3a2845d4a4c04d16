package turn

import (
	"io"
	"net"
	"strconv"
)

// Address family values from RFC 5389 section 15.1.
const (
	familyIPv4 uint16 = 0x01
	familyIPv6 uint16 = 0x02
)

// ErrAddressFamilyUnknown means that address attribute carries a family
// byte this package does not recognize. Address attributes are
// optional, so callers should treat such attribute as absent; it is
// distinct from DecodeErr, which means the message itself is malformed.
const ErrAddressFamilyUnknown Error = "unknown address family"

// ErrBadIPLength means that len(IP) is not net.{IPv6len,IPv4len}.
const ErrBadIPLength Error = "invalid length of IP value"

// Is p all zeros? Clipped from net.IP.
func isZeros(p net.IP) bool {
	for i := 0; i < len(p); i++ {
		if p[i] != 0 {
			return false
		}
	}
	return true
}

// isIPv4 returns true if ip with len of net.IPv6len seems to be IPv4.
// Optimized for performance, copied from net.IP.To4.
func isIPv4(ip net.IP) bool {
	return isZeros(ip[0:10]) && ip[10] == 0xff && ip[11] == 0xff
}

// ipFamily normalizes ip to its 4-byte form when it is an IPv4 address
// and reports the wire family value.
func ipFamily(ip net.IP) (net.IP, uint16, error) {
	family := familyIPv4
	if len(ip) == net.IPv6len {
		if isIPv4(ip) {
			ip = ip[12:16] // like in ip.To4()
		} else {
			family = familyIPv6
		}
	} else if len(ip) != net.IPv4len {
		return nil, 0, ErrBadIPLength
	}
	return ip, family, nil
}

// MappedAddress represents MAPPED-ADDRESS attribute which, unlike the
// XOR-* address attributes, is not obfuscated with the XOR transform.
//
// The plain and the XOR decode paths are deliberately separate types:
// a boolean "xor or not" flag is too easy to pass incorrectly at call
// sites, and a transform mix-up produces addresses that look valid but
// are wrong.
//
// RFC 5389 Section 15.1.
type MappedAddress struct {
	IP   net.IP
	Port int
}

func (a MappedAddress) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}

// AddToAs adds MAPPED-ADDRESS value to m as t attribute.
func (a MappedAddress) AddToAs(m *Message, t AttrType) error {
	ip, family, err := ipFamily(a.IP)
	if err != nil {
		return err
	}
	value := make([]byte, 4+len(ip))
	// First 8 bits of the value are zeroes.
	bin.PutUint16(value[0:2], family)
	bin.PutUint16(value[2:4], uint16(a.Port))
	copy(value[4:], ip)
	m.Add(t, value)
	return nil
}

// GetFromAs decodes MAPPED-ADDRESS value in m getting it as t
// attribute. Returns ErrAddressFamilyUnknown for a family byte this
// package does not recognize; the attribute should then be treated as
// absent.
func (a *MappedAddress) GetFromAs(m *Message, t AttrType) error {
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
	a.Port = int(bin.Uint16(v[2:4]))
	a.IP = make(net.IP, ipLen)
	copy(a.IP, v[4:])
	return nil
}

// AddTo adds MAPPED-ADDRESS to m.
func (a MappedAddress) AddTo(m *Message) error {
	return a.AddToAs(m, AttrMappedAddress)
}

// GetFrom decodes MAPPED-ADDRESS from m.
func (a *MappedAddress) GetFrom(m *Message) error {
	return a.GetFromAs(m, AttrMappedAddress)
}
