package turn

import "time"

// Lifetime represents LIFETIME attribute: the duration for which the
// server will maintain an allocation in the absence of a refresh. On
// the wire it is a 32-bit unsigned number of seconds.
//
// RFC 5766 Section 14.2.
type Lifetime struct {
	time.Duration
}

// lifetimeSize is length of LIFETIME attribute value.
const lifetimeSize = 4 // 4 bytes, 32 bits

// AddTo adds LIFETIME to message.
func (l Lifetime) AddTo(m *Message) error {
	v := make([]byte, lifetimeSize)
	bin.PutUint32(v, uint32(l.Seconds()))
	m.Add(AttrLifetime, v)
	return nil
}

// GetFrom decodes LIFETIME from message.
func (l *Lifetime) GetFrom(m *Message) error {
	v, err := m.Get(AttrLifetime)
	if err != nil {
		return err
	}
	if err := CheckSize(AttrLifetime, len(v), lifetimeSize); err != nil {
		return err
	}
	seconds := bin.Uint32(v)
	l.Duration = time.Second * time.Duration(seconds)
	return nil
}
