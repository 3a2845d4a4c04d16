package turn

import "testing"

func TestAttrType_String(t *testing.T) {
	tests := []struct {
		in  AttrType
		out string
	}{
		{AttrMappedAddress, "MAPPED-ADDRESS"},
		{AttrXORMappedAddress, "XOR-MAPPED-ADDRESS"},
		{AttrXORRelayedAddress, "XOR-RELAYED-ADDRESS"},
		{AttrXORPeerAddress, "XOR-PEER-ADDRESS"},
		{AttrRequestedTransport, "REQUESTED-TRANSPORT"},
		{AttrLifetime, "LIFETIME"},
		{AttrMessageIntegrity, "MESSAGE-INTEGRITY"},
		{AttrErrorCode, "ERROR-CODE"},
		{AttrRealm, "REALM"},
		{AttrNonce, "NONCE"},
		{AttrType(0x7fff), "0x7fff"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.out {
			t.Errorf("%#x.String() = %q, want %q", uint16(tt.in), got, tt.out)
		}
	}
}

func TestRawAttribute_Equal(t *testing.T) {
	a := RawAttribute{Type: AttrSoftware, Length: 2, Value: []byte{1, 2}}
	tests := []struct {
		b     RawAttribute
		equal bool
	}{
		{RawAttribute{Type: AttrSoftware, Length: 2, Value: []byte{1, 2}}, true},
		{RawAttribute{Type: AttrNonce, Length: 2, Value: []byte{1, 2}}, false},
		{RawAttribute{Type: AttrSoftware, Length: 3, Value: []byte{1, 2}}, false},
		{RawAttribute{Type: AttrSoftware, Length: 2, Value: []byte{1, 3}}, false},
	}
	for _, tt := range tests {
		if got := a.Equal(tt.b); got != tt.equal {
			t.Errorf("%s.Equal(%s) = %v, want %v", a, tt.b, got, tt.equal)
		}
	}
}

func TestAttributes_Get(t *testing.T) {
	m := New()
	m.Add(AttrSoftware, []byte("x"))
	if _, ok := m.Attributes.Get(AttrSoftware); !ok {
		t.Error("attribute should be found")
	}
	if _, ok := m.Attributes.Get(AttrNonce); ok {
		t.Error("attribute should not be found")
	}
}
