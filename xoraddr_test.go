package turn

import (
	"encoding/hex"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorAddress_GetFrom(t *testing.T) {
	// Known-answer vector: family IPv4, port and address obfuscated
	// with the magic cookie.
	m := New()
	addrValue, err := hex.DecodeString("0001c386e149559a")
	assert.NoError(t, err)
	m.Add(AttrXORRelayedAddress, addrValue)
	addr := new(XorRelayedAddress)
	assert.NoError(t, addr.GetFrom(m))
	assert.True(t, addr.IP.Equal(net.ParseIP("192.91.241.216")), "got %s", addr.IP)
	assert.Equal(t, 58004, addr.Port)
}

func TestXorAddress_RoundTripIPv4(t *testing.T) {
	m := New()
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	in := XorMappedAddress{XorAddress{
		IP:   net.ParseIP("213.141.156.236"),
		Port: 48583,
	}}
	assert.NoError(t, in.AddTo(m))
	out := new(XorMappedAddress)
	assert.NoError(t, out.GetFrom(m))
	assert.True(t, out.IP.Equal(in.IP), "got %s, want %s", out.IP, in.IP)
	assert.Equal(t, in.Port, out.Port)
	// On the wire neither port nor address appear in clear.
	v, err := m.Get(AttrXORMappedAddress)
	assert.NoError(t, err)
	assert.NotEqual(t, uint16(in.Port), bin.Uint16(v[2:4]))
	assert.False(t, net.IP(v[4:8]).Equal(in.IP.To4()))
}

func TestXorAddress_RoundTripIPv6(t *testing.T) {
	// For IPv6 the transaction id participates in the key, so decoding
	// must happen against the same message header.
	m := New()
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	in := XorRelayedAddress{XorAddress{
		IP:   net.ParseIP("2001:db8::68"),
		Port: 21254,
	}}
	assert.NoError(t, in.AddTo(m))
	out := new(XorRelayedAddress)
	assert.NoError(t, out.GetFrom(m))
	assert.True(t, out.IP.Equal(in.IP), "got %s, want %s", out.IP, in.IP)
	assert.Equal(t, in.Port, out.Port)

	// A different transaction id yields garbage, not an error.
	other := New()
	other.TransactionID = NewTransactionID()
	other.WriteHeader()
	v, err := m.Get(AttrXORRelayedAddress)
	assert.NoError(t, err)
	other.Add(AttrXORRelayedAddress, v)
	mangled := new(XorRelayedAddress)
	assert.NoError(t, mangled.GetFrom(other))
	assert.False(t, mangled.IP.Equal(in.IP))
}

func TestXorAddress_UnknownFamily(t *testing.T) {
	m := New()
	m.Add(AttrXORMappedAddress, []byte{0x00, 0x03, 0x21, 0x12, 0x01, 0x02, 0x03, 0x04})
	addr := new(XorMappedAddress)
	assert.ErrorIs(t, addr.GetFrom(m), ErrAddressFamilyUnknown)
}

func TestXorAddress_BadLength(t *testing.T) {
	m := New()
	// IPv6 family with only 4 address bytes.
	m.Add(AttrXORMappedAddress, []byte{0x00, 0x02, 0x21, 0x12, 0x01, 0x02, 0x03, 0x04})
	addr := new(XorMappedAddress)
	err := addr.GetFrom(m)
	if _, ok := err.(*AttrLengthErr); !ok {
		t.Error(err, "should be *AttrLengthErr")
	}
}

func TestXorAddress_NotFound(t *testing.T) {
	m := New()
	addr := new(XorPeerAddress)
	assert.ErrorIs(t, addr.GetFrom(m), ErrAttributeNotFound)
}

func TestXorPeerAddress_AddTo(t *testing.T) {
	m := New()
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	peer := XorPeerAddress{XorAddress{
		IP:   net.ParseIP("10.0.0.7"),
		Port: 1234,
	}}
	assert.NoError(t, peer.AddTo(m))
	out := new(XorPeerAddress)
	assert.NoError(t, out.GetFrom(m))
	assert.True(t, out.IP.Equal(peer.IP))
	assert.Equal(t, peer.Port, out.Port)
}

func BenchmarkXorMappedAddress_AddTo(b *testing.B) {
	m := New()
	b.ReportAllocs()
	ip := net.ParseIP("192.168.1.32")
	for i := 0; i < b.N; i++ {
		addr := XorMappedAddress{XorAddress{IP: ip, Port: 3654}}
		addr.AddTo(m) //nolint:errcheck,gosec
		m.Reset()
	}
}
