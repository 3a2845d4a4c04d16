package turn

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
)

func bUint16(v uint16) string {
	return fmt.Sprintf("0b%016s", strconv.FormatUint(uint64(v), 2))
}

func TestMessageBuffer(t *testing.T) {
	m := New()
	m.Type = MessageType{Method: MethodBinding, Class: ClassRequest}
	m.TransactionID = NewTransactionID()
	m.Add(AttrErrorCode, []byte{0xff, 0xfe, 0xfa})
	m.WriteHeader()
	mDecoded := New()
	if _, err := mDecoded.ReadFrom(bytes.NewReader(m.Raw)); err != nil {
		t.Error(err)
	}
	if !mDecoded.Equal(m) {
		t.Error(mDecoded, "!", m)
	}
}

func TestMessageType_Value(t *testing.T) {
	tests := []struct {
		in  MessageType
		out uint16
	}{
		{MessageType{Method: MethodBinding, Class: ClassRequest}, 0x0001},
		{MessageType{Method: MethodBinding, Class: ClassSuccessResponse}, 0x0101},
		{MessageType{Method: MethodBinding, Class: ClassErrorResponse}, 0x0111},
		{MessageType{Method: MethodAllocate, Class: ClassRequest}, 0x0003},
		{MessageType{Method: MethodAllocate, Class: ClassSuccessResponse}, 0x0103},
		{MessageType{Method: MethodAllocate, Class: ClassErrorResponse}, 0x0113},
		{MessageType{Method: MethodCreatePermission, Class: ClassRequest}, 0x0008},
		{MessageType{Method: MethodCreatePermission, Class: ClassSuccessResponse}, 0x0108},
		{MessageType{Method: 0xb6d, Class: 0x3}, 0x2ddd},
	}
	for _, tt := range tests {
		b := tt.in.Value()
		if b != tt.out {
			t.Errorf("Value(%s) -> %s, want %s", tt.in, bUint16(b), bUint16(tt.out))
		}
	}
}

func TestMessageType_ReadValue(t *testing.T) {
	tests := []struct {
		in  uint16
		out MessageType
	}{
		{0x0001, MessageType{Method: MethodBinding, Class: ClassRequest}},
		{0x0101, MessageType{Method: MethodBinding, Class: ClassSuccessResponse}},
		{0x0111, MessageType{Method: MethodBinding, Class: ClassErrorResponse}},
		{0x0113, MessageType{Method: MethodAllocate, Class: ClassErrorResponse}},
		{0x0108, MessageType{Method: MethodCreatePermission, Class: ClassSuccessResponse}},
	}
	for _, tt := range tests {
		m := MessageType{}
		m.ReadValue(tt.in)
		if m != tt.out {
			t.Errorf("ReadValue(%s) -> %s, want %s", bUint16(tt.in), m, tt.out)
		}
	}
}

func TestMessageType_ReadWriteValue(t *testing.T) {
	tests := []MessageType{
		{Method: MethodBinding, Class: ClassRequest},
		{Method: MethodBinding, Class: ClassSuccessResponse},
		{Method: MethodBinding, Class: ClassErrorResponse},
		{Method: MethodAllocate, Class: ClassRequest},
		{Method: MethodCreatePermission, Class: ClassRequest},
		{Method: 0x12, Class: ClassErrorResponse},
	}
	for _, tt := range tests {
		m := MessageType{}
		v := tt.Value()
		m.ReadValue(v)
		if m != tt {
			t.Errorf("ReadValue(%s -> %s) = %s, should be %s", tt, bUint16(v), m, tt)
		}
	}
}

func TestMessage_PaddedLength(t *testing.T) {
	// Value of 3 bytes is padded to 4 on the wire, and the declared
	// attribute length stays unpadded.
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.Add(AttrErrorCode, []byte{0x01, 0x02, 0x03})
	m.WriteHeader()
	if m.Length != attributeHeaderSize+4 {
		t.Errorf("m.Length = %d, want %d", m.Length, attributeHeaderSize+4)
	}
	a, ok := m.Attributes.Get(AttrErrorCode)
	if !ok {
		t.Fatal("attribute not found")
	}
	if a.Length != 3 {
		t.Errorf("a.Length = %d, want 3", a.Length)
	}
	// Padding bytes are zero.
	if m.Raw[len(m.Raw)-1] != 0 {
		t.Error("padding byte is not zero")
	}
	decoded := New()
	if _, err := decoded.Write(m.Raw); err != nil {
		t.Error(err)
	}
	if !decoded.Equal(m) {
		t.Error(decoded, "!", m)
	}
}

func TestMessage_Decode_HeaderEOF(t *testing.T) {
	m := New()
	m.Raw = []byte{1, 2, 3}
	if err := m.Decode(); err != ErrUnexpectedHeaderEOF {
		t.Error(err, "should be", ErrUnexpectedHeaderEOF)
	}
}

func TestMessage_Decode_BadCookie(t *testing.T) {
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	bin.PutUint32(m.Raw[4:8], 0x21124442) // corrupt one cookie byte
	decoded := New()
	_, err := decoded.Write(m.Raw)
	dErr, ok := err.(DecodeErr)
	if !ok {
		t.Fatal(err, "should be DecodeErr")
	}
	if !dErr.IsPlace(DecodeErrPlace{Parent: "message", Children: "cookie"}) {
		t.Error("bad decode err place", dErr.Place)
	}
}

func TestMessage_Decode_ReservedBits(t *testing.T) {
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	m.Raw[0] |= 0xC0
	decoded := New()
	if _, err := decoded.Write(m.Raw); err == nil {
		t.Error("should error on non-zero most significant bits")
	}
}

func TestMessage_Decode_AttrOverflow(t *testing.T) {
	m := New()
	m.Type = AllocateRequest
	m.TransactionID = NewTransactionID()
	m.Add(AttrSoftware, []byte("test"))
	m.WriteHeader()
	// Declared attribute length now reads past the end of the message.
	bin.PutUint16(m.Raw[messageHeaderSize+2:], 1000)
	decoded := New()
	if _, err := decoded.Write(m.Raw); err == nil {
		t.Error("should error on value overflow")
	}
}

func TestMessage_UnknownAttrRetained(t *testing.T) {
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.Add(AttrType(0x7f00), []byte{1, 2, 3, 4})
	m.WriteHeader()
	decoded := New()
	if _, err := decoded.Write(m.Raw); err != nil {
		t.Fatal(err)
	}
	v, err := decoded.Get(AttrType(0x7f00))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(v, []byte{1, 2, 3, 4}) {
		t.Error("unknown attribute value mangled:", v)
	}
}

func TestMessage_Get(t *testing.T) {
	m := New()
	m.WriteHeader()
	if _, err := m.Get(AttrSoftware); err != ErrAttributeNotFound {
		t.Error(err, "should be", ErrAttributeNotFound)
	}
}

func TestIsMessage(t *testing.T) {
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.WriteHeader()

	tests := []struct {
		name string
		in   []byte
		out  bool
	}{
		{"good", m.Raw, true},
		{"short", m.Raw[:messageHeaderSize-1], false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMessage(tt.in); got != tt.out {
				t.Errorf("IsMessage() = %v, want %v", got, tt.out)
			}
		})
	}
	t.Run("bad cookie", func(t *testing.T) {
		raw := append([]byte(nil), m.Raw...)
		raw[4] = 0x42
		if IsMessage(raw) {
			t.Error("IsMessage() should be false for bad cookie")
		}
	})
}

func TestMessage_WriteTo(t *testing.T) {
	m := New()
	m.Type = BindingRequest
	m.TransactionID = NewTransactionID()
	m.Add(AttrSoftware, []byte("software"))
	m.WriteHeader()
	buf := new(bytes.Buffer)
	if _, err := m.WriteTo(buf); err != nil {
		t.Fatal(err)
	}
	mDecoded := New()
	if _, err := mDecoded.ReadFrom(buf); err != nil {
		t.Error(err)
	}
	if !mDecoded.Equal(m) {
		t.Error(mDecoded, "!", m)
	}
}

func TestAllocateRequestEncoding(t *testing.T) {
	// A minimal unauthenticated allocate request with a fixed
	// transaction id, checked byte for byte against the wire layout.
	txID, err := hex.DecodeString("a1b2c3d4e5f60718191a1b1c")
	if err != nil {
		t.Fatal(err)
	}
	var id [TransactionIDSize]byte
	copy(id[:], txID)
	m := MustBuild(
		AllocateRequest,
		NewTransactionIDSetter(id),
		RequestedTransport{Protocol: ProtocolUDP},
	)
	expected, err := hex.DecodeString(
		"0003" + "0008" + // type, length
			"2112a442" + // magic cookie
			"a1b2c3d4e5f60718191a1b1c" + // transaction id
			"0019" + "0004" + "11000000", // REQUESTED-TRANSPORT, UDP
	)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(m.Raw, expected) {
		t.Errorf("encoded request\n %x\nwant\n %x", m.Raw, expected)
	}
}

func BenchmarkMessage_Write(b *testing.B) {
	b.ReportAllocs()
	attributeValue := []byte{0xff, 0x11, 0x12, 0x34}
	b.SetBytes(int64(len(attributeValue) + messageHeaderSize +
		attributeHeaderSize))
	transactionID := NewTransactionID()
	m := New()
	for i := 0; i < b.N; i++ {
		m.Add(AttrErrorCode, attributeValue)
		m.TransactionID = transactionID
		m.Type = BindingRequest
		m.WriteHeader()
		m.Reset()
	}
}

func BenchmarkMessage_Decode(b *testing.B) {
	m := New()
	m.Type = AllocateRequest
	m.TransactionID = NewTransactionID()
	m.Add(AttrSoftware, []byte("benchmark"))
	m.WriteHeader()
	b.ReportAllocs()
	b.SetBytes(int64(len(m.Raw)))
	decoded := New()
	for i := 0; i < b.N; i++ {
		decoded.Raw = append(decoded.Raw[:0], m.Raw...)
		if err := decoded.Decode(); err != nil {
			b.Fatal(err)
		}
	}
}
