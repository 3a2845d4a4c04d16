package turn

// ProtocolNumber is IANA assigned protocol number, carried in the
// Protocol field of REQUESTED-TRANSPORT.
type ProtocolNumber byte

// Assigned protocol numbers. RFC 5766 only allows UDP between server
// and peer; TCP is listed for RFC 6062 servers.
const (
	ProtocolTCP ProtocolNumber = 6
	ProtocolUDP ProtocolNumber = 17
)

const requestedTransportSize = 4

// RequestedTransport represents REQUESTED-TRANSPORT attribute, used by
// the client to request a specific transport protocol for the
// allocated transport address. The value is 4 bytes: the protocol
// number followed by three RFFU bytes that MUST be zero on
// transmission and ignored on reception.
//
// RFC 5766 Section 14.7.
type RequestedTransport struct {
	Protocol ProtocolNumber
}

// AddTo adds REQUESTED-TRANSPORT to message.
func (t RequestedTransport) AddTo(m *Message) error {
	v := make([]byte, requestedTransportSize)
	v[0] = byte(t.Protocol)
	// RFFU bytes stay zero.
	m.Add(AttrRequestedTransport, v)
	return nil
}

// GetFrom decodes REQUESTED-TRANSPORT from message.
func (t *RequestedTransport) GetFrom(m *Message) error {
	v, err := m.Get(AttrRequestedTransport)
	if err != nil {
		return err
	}
	if err := CheckSize(AttrRequestedTransport, len(v), requestedTransportSize); err != nil {
		return err
	}
	t.Protocol = ProtocolNumber(v[0])
	return nil
}
