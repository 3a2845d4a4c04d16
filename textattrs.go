package turn

const (
	maxUsernameB = 513
	maxRealmB    = 763
	maxSoftwareB = 763
	maxNonceB    = 763
)

// Username represents USERNAME attribute.
//
// RFC 5389 Section 15.3.
type Username []byte

// NewUsername returns Username with provided value.
func NewUsername(username string) Username {
	return Username(username)
}

func (u Username) String() string {
	return string(u)
}

// AddTo adds USERNAME attribute to message.
func (u Username) AddTo(m *Message) error {
	return TextAttribute(u).AddToAs(m, AttrUsername, maxUsernameB)
}

// GetFrom gets USERNAME from message.
func (u *Username) GetFrom(m *Message) error {
	return (*TextAttribute)(u).GetFromAs(m, AttrUsername)
}

// Realm represents REALM attribute. The value is supplied by the
// server in an authentication challenge and echoed back opaque.
//
// RFC 5389 Section 15.7.
type Realm []byte

// NewRealm returns Realm with provided value.
// Must be SASL-prepared.
func NewRealm(realm string) Realm {
	return Realm(realm)
}

func (n Realm) String() string {
	return string(n)
}

// AddTo adds REALM attribute to message.
func (n Realm) AddTo(m *Message) error {
	return TextAttribute(n).AddToAs(m, AttrRealm, maxRealmB)
}

// GetFrom gets REALM from message.
func (n *Realm) GetFrom(m *Message) error {
	return (*TextAttribute)(n).GetFromAs(m, AttrRealm)
}

// Nonce represents NONCE attribute. Like REALM, the value is an opaque
// server-supplied challenge parameter and has no client-side
// validation beyond the size limit.
//
// RFC 5389 Section 15.8.
type Nonce []byte

// NewNonce returns new Nonce from string.
func NewNonce(nonce string) Nonce {
	return Nonce(nonce)
}

func (n Nonce) String() string {
	return string(n)
}

// AddTo adds NONCE attribute to message.
func (n Nonce) AddTo(m *Message) error {
	return TextAttribute(n).AddToAs(m, AttrNonce, maxNonceB)
}

// GetFrom gets NONCE from message.
func (n *Nonce) GetFrom(m *Message) error {
	return (*TextAttribute)(n).GetFromAs(m, AttrNonce)
}

// Software is SOFTWARE attribute.
//
// RFC 5389 Section 15.10.
type Software []byte

func (s Software) String() string {
	return string(s)
}

// NewSoftware returns Software from string.
func NewSoftware(software string) Software {
	return Software(software)
}

// AddTo adds SOFTWARE attribute to message.
func (s Software) AddTo(m *Message) error {
	return TextAttribute(s).AddToAs(m, AttrSoftware, maxSoftwareB)
}

// GetFrom gets SOFTWARE from message.
func (s *Software) GetFrom(m *Message) error {
	return (*TextAttribute)(s).GetFromAs(m, AttrSoftware)
}

// TextAttribute is helper for adding and getting text attributes.
type TextAttribute []byte

// AddToAs adds attribute with type t to m, checking maximum length. If
// maxLen is less than 0, no check is performed.
func (v TextAttribute) AddToAs(m *Message, t AttrType, maxLen int) error {
	if err := CheckOverflow(t, len(v), maxLen); err != nil {
		return err
	}
	m.Add(t, v)
	return nil
}

// GetFromAs gets t attribute from m as text.
func (v *TextAttribute) GetFromAs(m *Message, t AttrType) error {
	a, err := m.Get(t)
	if err != nil {
		return err
	}
	*v = a
	return nil
}
