package turn

import (
	"crypto/rand"
	"io"
)

// transactionIDSetter sets m.TransactionID from an entropy source.
type transactionIDSetter struct {
	r io.Reader
}

func (s transactionIDSetter) AddTo(m *Message) error {
	_, err := io.ReadFull(s.r, m.TransactionID[:])
	if err == nil {
		m.WriteTransactionID()
	}
	return err
}

// TransactionIDFrom returns Setter that sets m.TransactionID to a fresh
// 96-bit value read from r. The source must be cryptographically
// secure: predictable transaction ids let an off-path attacker forge
// responses that would pass correlation.
func TransactionIDFrom(r io.Reader) Setter {
	return transactionIDSetter{r: r}
}

// TransactionID is Setter for m.TransactionID using crypto/rand as
// source.
var TransactionID Setter = transactionIDSetter{r: rand.Reader}

type transactionIDValueSetter [TransactionIDSize]byte

func (t transactionIDValueSetter) AddTo(m *Message) error {
	m.TransactionID = [TransactionIDSize]byte(t)
	m.WriteTransactionID()
	return nil
}

// NewTransactionIDSetter returns new Setter that sets message
// transaction id to provided value. Responses echo the request id
// this way.
func NewTransactionIDSetter(value [TransactionIDSize]byte) Setter {
	return transactionIDValueSetter(value)
}
