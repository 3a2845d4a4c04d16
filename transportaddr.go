package turn

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// TransportAddr is the combination of an IP address and a port number,
// the address form exchanged with the session driver: relayed and
// reflexive addresses it discovers, and peer addresses it authorizes.
type TransportAddr struct {
	IP   net.IP
	Port int
}

func netAddrIPPort(addr net.Addr) (net.IP, int, error) {
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, 0, err
	}
	return net.ParseIP(host), port, nil
}

// NewTransportAddr returns TransportAddr from net.Addr.
func NewTransportAddr(addr net.Addr) (*TransportAddr, error) {
	ip, port, err := netAddrIPPort(addr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse addr")
	}
	return &TransportAddr{
		IP:   ip,
		Port: port,
	}, nil
}

// ResolveTransportAddr resolves an address in "host:port" form for
// the given network.
func ResolveTransportAddr(network, address string) (*TransportAddr, error) {
	switch network {
	case "udp", "udp4", "udp6":
		addr, err := net.ResolveUDPAddr(network, address)
		if err != nil {
			return nil, errors.Wrap(err, "unable to resolve addr")
		}
		return &TransportAddr{IP: addr.IP, Port: addr.Port}, nil
	case "tcp", "tcp4", "tcp6":
		addr, err := net.ResolveTCPAddr(network, address)
		if err != nil {
			return nil, errors.Wrap(err, "unable to resolve addr")
		}
		return &TransportAddr{IP: addr.IP, Port: addr.Port}, nil
	default:
		return nil, errors.Errorf("unsupported network %q", network)
	}
}

// Equal returns true if b has the same IP and port.
func (a *TransportAddr) Equal(b *TransportAddr) bool {
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// Addr returns a as net.Addr (UDP).
func (a *TransportAddr) Addr() net.Addr {
	return &net.UDPAddr{
		IP:   a.IP,
		Port: a.Port,
	}
}

// IsZero reports whether a carries no address.
func (a TransportAddr) IsZero() bool {
	return len(a.IP) == 0 && a.Port == 0
}

func (a TransportAddr) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}
