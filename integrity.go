package turn

import (
	"crypto/md5" //nolint:gosec
	"fmt"
	"strings"

	"github.com/cydev/turn/internal/hmac"
)

// separator for credentials.
const credentialsSep = ":"

// NewLongTermIntegrity returns new MessageIntegrity with key derived
// from long-term credentials:
//
//	key = MD5(username ":" realm ":" password)
//
// MD5 here is purely the key-derivation step mandated by RFC 5389
// section 15.4, not a security hash; substituting another digest
// breaks interoperability. Username, realm and password must be
// SASL-prepared.
func NewLongTermIntegrity(username, realm, password string) MessageIntegrity {
	k := strings.Join([]string{username, realm, password}, credentialsSep)
	h := md5.New() //nolint:gosec
	fmt.Fprint(h, k)
	return MessageIntegrity(h.Sum(nil))
}

// MessageIntegrity represents MESSAGE-INTEGRITY attribute. The value
// is the HMAC-SHA1 key used for signing and verification.
//
// AddTo and Check use the pooled zero-allocation HMAC from
// internal/hmac.
//
// RFC 5389 Section 15.4.
type MessageIntegrity []byte

func (i MessageIntegrity) String() string {
	return fmt.Sprintf("KEY: 0x%x", []byte(i))
}

const messageIntegritySize = 20

// sumHMAC returns HMAC-SHA1 of message under key.
func sumHMAC(key, message []byte) []byte {
	mac := hmac.AcquireSHA1(key)
	defer hmac.PutSHA1(mac)
	mac.Write(message) //nolint:errcheck // hash.Hash never errors
	return mac.Sum(nil)
}

// signAdjusted computes the MESSAGE-INTEGRITY value over raw: a copy of
// raw is made with the header length field rewritten to account for the
// MESSAGE-INTEGRITY TLV that will follow, and the copy is HMAC'd.
//
// The input to HMAC is the message from the start of the header through
// the end of the attribute preceding MESSAGE-INTEGRITY, but with a
// length that already includes the integrity attribute itself. The
// adjust-then-hash-then-append sequence lives in this one function on
// purpose: inlining it at call sites is the classic way to corrupt the
// canonical message or hash the wrong length.
func signAdjusted(key, raw []byte) []byte {
	adjusted := make([]byte, len(raw))
	copy(adjusted, raw)
	adjustedLength := len(raw) - messageHeaderSize +
		attributeHeaderSize + messageIntegritySize
	bin.PutUint16(adjusted[2:4], uint16(adjustedLength))
	return sumHMAC(key, adjusted)
}

// ErrFingerprintBeforeIntegrity means that FINGERPRINT attribute is
// already in message, so MESSAGE-INTEGRITY attribute cannot be added.
const ErrFingerprintBeforeIntegrity Error = "FINGERPRINT before MESSAGE-INTEGRITY attribute"

// AddTo adds MESSAGE-INTEGRITY attribute to m, signing everything that
// is currently in the message. MESSAGE-INTEGRITY must be the last
// attribute added (FINGERPRINT excepted). The message bytes are never
// mutated while signing.
//
// CPU costly, see BenchmarkMessageIntegrity_AddTo.
func (i MessageIntegrity) AddTo(m *Message) error {
	for _, a := range m.Attributes {
		if a.Type == AttrFingerprint {
			return ErrFingerprintBeforeIntegrity
		}
	}
	v := signAdjusted(i, m.Raw)
	m.Add(AttrMessageIntegrity, v)
	return nil
}

// ErrIntegrityMismatch means that computed HMAC differs from expected.
const ErrIntegrityMismatch Error = "integrity check failed"

// Check checks MESSAGE-INTEGRITY attribute of m.
//
// CPU costly, see BenchmarkMessageIntegrity_Check.
func (i MessageIntegrity) Check(m *Message) error {
	v, err := m.Get(AttrMessageIntegrity)
	if err != nil {
		return err
	}
	if err := CheckSize(AttrMessageIntegrity, len(v), messageIntegritySize); err != nil {
		return err
	}

	// Bytes after the MESSAGE-INTEGRITY attribute (e.g. FINGERPRINT)
	// are not covered by the HMAC and must be excluded from the
	// declared length too.
	var (
		afterIntegrity = false
		sizeReduced    int
	)
	for _, a := range m.Attributes {
		if afterIntegrity {
			sizeReduced += nearestPaddedValueLength(int(a.Length))
			sizeReduced += attributeHeaderSize
		}
		if a.Type == AttrMessageIntegrity {
			afterIntegrity = true
		}
	}
	length := int(m.Length) - sizeReduced
	// start is the first byte of the MESSAGE-INTEGRITY attribute
	// header.
	start := messageHeaderSize + length - attributeHeaderSize - messageIntegritySize
	if start < messageHeaderSize || start > len(m.Raw) {
		return newAttrDecodeErr("message-integrity", fmt.Sprintf(
			"invalid start of integrity attribute %d", start,
		))
	}
	expected := signAdjusted(i, m.Raw[:start])
	if !hmac.Equal(v, expected) {
		return ErrIntegrityMismatch
	}
	return nil
}
