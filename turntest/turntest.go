// Package turntest contains helpers for testing STUN and TURN clients
// against an in-process message-level server.
package turntest

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cydev/turn"
)

// Handler builds a response for a decoded request. Returning a nil
// message drops the request, which is how tests emulate a silent
// server.
type Handler func(req *turn.Message) (*turn.Message, error)

// NewServer starts a UDP server on the loopback interface that
// decodes each incoming packet and answers with whatever the handler
// returns. It returns the server address and a cleanup function.
func NewServer(t *testing.T, handler Handler) (string, func()) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, turn.MaxPacketSize)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			if !turn.IsMessage(buf[:n]) {
				continue
			}
			req := new(turn.Message)
			if _, err := req.Write(buf[:n]); err != nil {
				continue
			}
			res, err := handler(req)
			if err != nil || res == nil {
				continue
			}
			if _, err := conn.WriteTo(res.Raw, addr); err != nil {
				return
			}
		}
	}()

	return conn.LocalAddr().String(), func() {
		assert.NoError(t, conn.Close())
		<-done
	}
}

// Respond builds a response to req with the given type and attributes,
// echoing the request transaction id.
func Respond(req *turn.Message, t turn.MessageType, setters ...turn.Setter) (*turn.Message, error) {
	s := make([]turn.Setter, 0, len(setters)+2)
	s = append(s, t, turn.NewTransactionIDSetter(req.TransactionID))
	s = append(s, setters...)
	return turn.Build(s...)
}
