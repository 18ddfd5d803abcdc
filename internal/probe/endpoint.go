package probe

import (
	"net"
	"strconv"
	"strings"
)

// DefaultPort is used when the descriptor has no port or an unparsable one.
const DefaultPort = 3306

// Endpoint is a host/port pair parsed from a single host[:port] string.
type Endpoint struct {
	Host string
	Port int
}

// ParseEndpoint splits raw on its last colon. The second return value is
// false when raw is empty, which means the endpoint is not configured.
func ParseEndpoint(raw string) (Endpoint, bool) {
	if raw == "" {
		return Endpoint{}, false
	}

	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return Endpoint{Host: raw, Port: DefaultPort}, true
	}

	port, err := strconv.Atoi(raw[i+1:])
	if err != nil {
		port = DefaultPort
	}
	return Endpoint{Host: raw[:i], Port: port}, true
}

// Address formats the endpoint for net.Dial, bracketing IPv6 hosts.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Address()
}
