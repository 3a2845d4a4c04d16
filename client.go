package turn

import (
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is used for logging formatted messages.
type Logger interface {
	// Printf must have the same semantics as log.Printf.
	Printf(format string, args ...interface{})
}

var defaultLogger = logrus.New()

const defaultSoftware = "cydev/turn"

// Credentials are long-term credentials for the challenge-response
// authentication mechanism. Realm and Nonce are supplied by the server
// in a challenge response; they are opaque and must be echoed back
// unchanged.
type Credentials struct {
	Username string
	Password string
	Realm    string
	Nonce    string
}

// challenged reports whether c already carries server challenge
// parameters and can be used for an authenticated request.
func (c Credentials) challenged() bool {
	return c.Realm != "" && c.Nonce != ""
}

// Challenge is the realm/nonce pair demanded by the server in a 401 or
// 438 error response.
type Challenge struct {
	Realm string
	Nonce string
	Stale bool // issued for code 438, the previous nonce must be discarded
}

// Credentials combines the challenge with username and password into
// credentials for the authenticated retry.
func (ch Challenge) Credentials(username, password string) Credentials {
	return Credentials{
		Username: username,
		Password: password,
		Realm:    ch.Realm,
		Nonce:    ch.Nonce,
	}
}

// Allocation is the relayed transport address granted by the server,
// along with the reflexive address and lifetime reported in the same
// response. The driver performs no refresh; the allocation expires
// server-side after Lifetime.
type Allocation struct {
	Relayed   TransportAddr
	Reflexive TransportAddr // zero when the server omitted XOR-MAPPED-ADDRESS
	Lifetime  time.Duration
}

// Permission is a granted authorization for a peer address to exchange
// data through an allocation. It is a transient result, not a tracked
// resource.
type Permission struct {
	Peer TransportAddr
}

// AllocateResult is the outcome of a single Allocate round trip.
// Exactly one group of fields is set: Allocation when the relay was
// granted, Challenge when the server demands authentication, ErrorCode
// and Reason when the server rejected the request. Transport and
// protocol failures are returned as errors instead.
type AllocateResult struct {
	Allocation *Allocation
	Challenge  *Challenge
	ErrorCode  ErrorCode
	Reason     string
}

// Granted reports whether the allocation was granted.
func (r *AllocateResult) Granted() bool { return r.Allocation != nil }

// PermissionResult is the outcome of a single CreatePermission round
// trip: either Permission is set or ErrorCode and Reason carry the
// server rejection verbatim.
type PermissionResult struct {
	Permission *Permission
	ErrorCode  ErrorCode
	Reason     string
}

// Granted reports whether the permission was granted.
func (r *PermissionResult) Granted() bool { return r.Permission != nil }

type sessionState uint8

const (
	stateInit sessionState = iota
	stateAllocateSent
	stateChallengeReceived
	stateAuthAllocateSent
	stateAllocated
	statePermissionSent
	statePermissionGranted
	stateFailed
)

func (s sessionState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateAllocateSent:
		return "allocate sent"
	case stateChallengeReceived:
		return "challenge received"
	case stateAuthAllocateSent:
		return "authenticated allocate sent"
	case stateAllocated:
		return "allocated"
	case statePermissionSent:
		return "permission sent"
	case statePermissionGranted:
		return "permission granted"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	// ErrTransactionIDMismatch means that response transaction id is
	// not equal to request transaction id. Such response must not be
	// processed.
	ErrTransactionIDMismatch Error = "transaction ID mismatch"
	// ErrNoAllocation means that CreatePermission was called before a
	// successful Allocate. Returned locally, without any network I/O.
	ErrNoAllocation Error = "no active allocation in session"
	// ErrAllocationDone means that the session already finished its
	// allocation run; open a new session for another allocation.
	ErrAllocationDone Error = "allocation already completed on this session"
	// ErrSessionFailed means that the session reached the terminal
	// failed state and accepts no further operations.
	ErrSessionFailed Error = "session is in failed state"
	// ErrBadChallenge means that an authentication challenge response
	// is missing REALM or NONCE.
	ErrBadChallenge Error = "challenge response without REALM or NONCE"
	// ErrNoServerAddress means that ClientOptions has neither Server
	// nor Conn set.
	ErrNoServerAddress Error = "no server address set"
)

// ClientOptions are used to initialize Client.
type ClientOptions struct {
	Network  string        // "udp" or "tcp", defaults to "udp"
	Server   string        // server address as "host:port"
	Deadline time.Duration // bounds dial and each round trip (write plus read)
	Conn     net.Conn      // pre-established connection; Network and Server are ignored when set
	Logger   Logger        // defaults to logrus standard logger
	Rand     io.Reader     // entropy source for transaction ids, crypto/rand by default
	Software string        // SOFTWARE attribute value for outgoing requests
	Lifetime time.Duration // requested allocation lifetime, zero lets the server choose
}

// Client is a blocking STUN/TURN session driver. It owns exactly one
// transport handle and one allocation; it issues at most one
// outstanding request at a time and never retries on its own.
//
// Client is not safe for concurrent use: callers that need concurrent
// allocations open independent sessions.
type Client struct {
	conn     net.Conn
	streamed bool
	deadline time.Duration
	log      Logger
	rand     io.Reader
	software Software
	lifetime time.Duration

	state     sessionState
	creds     Credentials
	integrity MessageIntegrity
	alloc     *Allocation
}

// NewClient dials the server and returns a session in the initial
// state. The deadline covers connection setup here and every
// subsequent round trip as a whole, not per-substep.
func NewClient(o ClientOptions) (*Client, error) {
	if o.Network == "" {
		o.Network = "udp"
	}
	if o.Rand == nil {
		o.Rand = rand.Reader
	}
	if o.Logger == nil {
		o.Logger = defaultLogger
	}
	if o.Software == "" {
		o.Software = defaultSoftware
	}
	network := o.Network
	conn := o.Conn
	if conn == nil {
		if o.Server == "" {
			return nil, ErrNoServerAddress
		}
		d := net.Dialer{Timeout: o.Deadline}
		var err error
		if conn, err = d.Dial(o.Network, o.Server); err != nil {
			return nil, errors.Wrap(err, "failed to dial")
		}
	} else if addr := conn.RemoteAddr(); addr != nil {
		network = addr.Network()
	}
	return &Client{
		conn:     conn,
		streamed: strings.HasPrefix(network, "tcp"),
		deadline: o.Deadline,
		log:      o.Logger,
		rand:     o.Rand,
		software: NewSoftware(o.Software),
		lifetime: o.Lifetime,
		state:    stateInit,
	}, nil
}

// LocalAddr returns local address of the client.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close releases the transport handle.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Allocation returns the allocation granted on this session, or nil.
func (c *Client) Allocation() *Allocation {
	return c.alloc
}

// fail renders the session terminal and releases the transport handle.
func (c *Client) fail() {
	c.state = stateFailed
	c.conn.Close() //nolint:errcheck,gosec
}

// do performs one blocking round trip: write request, read response,
// decode and correlate it. The response is rejected unless its
// transaction id matches the request byte for byte.
func (c *Client) do(req *Message) (*Message, error) {
	if c.deadline > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.deadline)); err != nil {
			return nil, errors.Wrap(err, "failed to set deadline")
		}
	}
	if _, err := c.conn.Write(req.Raw); err != nil {
		return nil, errors.Wrap(err, "failed to write request")
	}
	buf := make([]byte, MaxPacketSize)
	var (
		n   int
		err error
	)
	if c.streamed {
		n, err = c.readStream(buf)
	} else {
		n, err = c.conn.Read(buf)
		if err != nil {
			err = errors.Wrap(err, "failed to read response")
		}
	}
	if err != nil {
		return nil, err
	}
	res := new(Message)
	if _, err := res.Write(buf[:n]); err != nil {
		return nil, err
	}
	if res.TransactionID != req.TransactionID {
		return nil, ErrTransactionIDMismatch
	}
	return res, nil
}

// readStream reads one message from a stream transport. TCP does not
// preserve datagram boundaries, so the message's own Length field is
// the only framing: the 20-byte header is read first and the body is
// then read to its declared size, however the peer segmented it.
func (c *Client) readStream(buf []byte) (int, error) {
	if _, err := io.ReadFull(c.conn, buf[:messageHeaderSize]); err != nil {
		return 0, errors.Wrap(err, "failed to read response header")
	}
	full := messageHeaderSize + int(bin.Uint16(buf[2:4]))
	if full > len(buf) {
		return 0, errors.Errorf("response of %d bytes exceeds buffer", full)
	}
	if _, err := io.ReadFull(c.conn, buf[messageHeaderSize:full]); err != nil {
		return 0, errors.Wrap(err, "failed to read response body")
	}
	return full, nil
}

// Bind performs a STUN Binding round trip and returns the reflexive
// transport address: the client's address and port as seen by the
// server. Falls back to the plain MAPPED-ADDRESS attribute for servers
// predating the XOR transform.
func (c *Client) Bind() (*TransportAddr, error) {
	req := new(Message)
	if err := req.Build(
		BindingRequest,
		TransactionIDFrom(c.rand),
		c.software,
	); err != nil {
		return nil, errors.Wrap(err, "failed to build binding request")
	}
	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch res.Type {
	case BindingSuccess:
		var mapped XorMappedAddress
		err := mapped.GetFrom(res)
		if err == nil {
			return &TransportAddr{IP: mapped.IP, Port: mapped.Port}, nil
		}
		if !optionalAttr(err) {
			return nil, err
		}
		var plain MappedAddress
		if err := plain.GetFrom(res); err != nil {
			return nil, errors.Wrap(err, "binding response without mapped address")
		}
		return &TransportAddr{IP: plain.IP, Port: plain.Port}, nil
	case BindingError:
		code := new(ErrorCodeAttribute)
		if err := code.GetFrom(res); err != nil {
			return nil, errors.Wrap(err, "error response without ERROR-CODE")
		}
		return nil, errors.Errorf("binding rejected: %s", code)
	default:
		return nil, unexpectedResponse(res)
	}
}

// Allocate requests a relayed transport address from the server.
//
// The first call is made without credentials; if the server demands
// authentication, the result carries a Challenge and the session moves
// to the challenge state. The caller then combines the challenge with
// username and password and calls Allocate again. A 438 (stale nonce)
// answer to an authenticated attempt yields a fresh Challenge the same
// way; the caller must retry with the new nonce, not the previous one.
// There is no silent retry.
func (c *Client) Allocate(transport ProtocolNumber, creds *Credentials) (*AllocateResult, error) {
	switch c.state {
	case stateInit, stateChallengeReceived:
	case stateFailed:
		return nil, ErrSessionFailed
	default:
		return nil, ErrAllocationDone
	}
	authed := creds != nil && creds.challenged()
	setters := []Setter{
		AllocateRequest,
		TransactionIDFrom(c.rand),
		c.software,
		RequestedTransport{Protocol: transport},
	}
	if c.lifetime > 0 {
		setters = append(setters, Lifetime{c.lifetime})
	}
	var integrity MessageIntegrity
	if authed {
		integrity = NewLongTermIntegrity(creds.Username, creds.Realm, creds.Password)
		setters = append(setters,
			NewUsername(creds.Username),
			NewRealm(creds.Realm),
			NewNonce(creds.Nonce),
			integrity,
		)
	}
	req := new(Message)
	if err := req.Build(setters...); err != nil {
		return nil, errors.Wrap(err, "failed to build allocate request")
	}
	if authed {
		c.state = stateAuthAllocateSent
	} else {
		c.state = stateAllocateSent
	}
	res, err := c.do(req)
	if err != nil {
		c.fail()
		return nil, err
	}
	switch res.Type {
	case AllocateSuccess:
		alloc, err := parseAllocation(res)
		if err != nil {
			c.fail()
			return nil, err
		}
		c.alloc = alloc
		c.state = stateAllocated
		if authed {
			c.creds = *creds
			c.integrity = integrity
		}
		c.log.Printf("allocate: relayed address %s, lifetime %s",
			alloc.Relayed, alloc.Lifetime,
		)
		return &AllocateResult{Allocation: alloc}, nil
	case AllocateError:
		return c.allocateError(res, authed)
	default:
		c.fail()
		return nil, unexpectedResponse(res)
	}
}

// allocateError maps an Allocate error response to a challenge or a
// rejection. The numeric code and reason phrase are surfaced verbatim.
func (c *Client) allocateError(res *Message, authed bool) (*AllocateResult, error) {
	code := new(ErrorCodeAttribute)
	if err := code.GetFrom(res); err != nil {
		c.fail()
		return nil, errors.Wrap(err, "error response without ERROR-CODE")
	}
	if (code.Code == CodeUnauthorised && !authed) || code.Code == CodeStaleNonce {
		ch, err := parseChallenge(res)
		if err != nil {
			c.fail()
			return nil, err
		}
		ch.Stale = code.Code == CodeStaleNonce
		c.state = stateChallengeReceived
		c.log.Printf("allocate: authentication required, realm %q", ch.Realm)
		return &AllocateResult{Challenge: ch}, nil
	}
	c.state = stateFailed
	c.log.Printf("allocate: rejected with %s", code)
	return &AllocateResult{
		ErrorCode: code.Code,
		Reason:    string(code.Reason),
	}, nil
}

// CreatePermission authorizes a peer address on the allocation of this
// session. It is valid only after a successful Allocate and is
// rejected locally otherwise, without any network I/O.
//
// The server authorizes permissions by peer IP only; the port is
// carried as supplied but is not currently enforced server-side.
func (c *Client) CreatePermission(peer TransportAddr) (*PermissionResult, error) {
	if c.state != stateAllocated {
		return nil, ErrNoAllocation
	}
	setters := []Setter{
		CreatePermissionRequest,
		TransactionIDFrom(c.rand),
		c.software,
		XorPeerAddress{XorAddress{IP: peer.IP, Port: peer.Port}},
	}
	if len(c.integrity) > 0 {
		setters = append(setters,
			NewUsername(c.creds.Username),
			NewRealm(c.creds.Realm),
			NewNonce(c.creds.Nonce),
			c.integrity,
		)
	}
	req := new(Message)
	if err := req.Build(setters...); err != nil {
		return nil, errors.Wrap(err, "failed to build create permission request")
	}
	c.state = statePermissionSent
	res, err := c.do(req)
	if err != nil {
		c.fail()
		return nil, err
	}
	switch res.Type {
	case CreatePermissionSuccess:
		c.state = statePermissionGranted
		c.log.Printf("permission granted for %s", peer)
		return &PermissionResult{Permission: &Permission{Peer: peer}}, nil
	case CreatePermissionError:
		code := new(ErrorCodeAttribute)
		if err := code.GetFrom(res); err != nil {
			c.fail()
			return nil, errors.Wrap(err, "error response without ERROR-CODE")
		}
		c.state = stateFailed
		c.log.Printf("create permission: rejected with %s", code)
		return &PermissionResult{
			ErrorCode: code.Code,
			Reason:    string(code.Reason),
		}, nil
	default:
		c.fail()
		return nil, unexpectedResponse(res)
	}
}

// parseAllocation populates allocation state from a successful
// Allocate response. The relayed address is mandatory; lifetime and
// reflexive address are used when present and decodable.
func parseAllocation(res *Message) (*Allocation, error) {
	var relayed XorRelayedAddress
	if err := relayed.GetFrom(res); err != nil {
		return nil, errors.Wrap(err, "allocate response without relayed address")
	}
	alloc := &Allocation{
		Relayed: TransportAddr{IP: relayed.IP, Port: relayed.Port},
	}
	var lifetime Lifetime
	switch err := lifetime.GetFrom(res); {
	case err == nil:
		alloc.Lifetime = lifetime.Duration
	case !optionalAttr(err):
		return nil, err
	}
	var reflexive XorMappedAddress
	switch err := reflexive.GetFrom(res); {
	case err == nil:
		alloc.Reflexive = TransportAddr{IP: reflexive.IP, Port: reflexive.Port}
	case !optionalAttr(err):
		return nil, err
	}
	return alloc, nil
}

// parseChallenge extracts REALM and NONCE from an authentication
// challenge error response. Both must be present.
func parseChallenge(res *Message) (*Challenge, error) {
	var (
		realm Realm
		nonce Nonce
	)
	if err := realm.GetFrom(res); err != nil {
		return nil, errors.Wrap(ErrBadChallenge, err.Error())
	}
	if err := nonce.GetFrom(res); err != nil {
		return nil, errors.Wrap(ErrBadChallenge, err.Error())
	}
	return &Challenge{
		Realm: realm.String(),
		Nonce: nonce.String(),
	}, nil
}

// optionalAttr reports whether err means that an optional attribute is
// absent or carries an unrecognized address family, as opposed to the
// message being malformed.
func optionalAttr(err error) bool {
	switch errors.Cause(err) {
	case ErrAttributeNotFound, ErrAddressFamilyUnknown:
		return true
	}
	return false
}

func unexpectedResponse(res *Message) error {
	return newDecodeErr("message", "type",
		fmt.Sprintf("unexpected response type %s", res.Type),
	)
}
