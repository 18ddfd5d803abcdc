// Package probe implements the single-shot TCP reachability check used by
// the readiness endpoint. A probe only completes the TCP handshake and
// closes the connection; it never writes application data.
package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = 2 * time.Second

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Prober struct {
	timeout time.Duration
	dial    DialFunc
}

// NewProber returns a Prober using a plain net.Dialer. A non-positive
// timeout selects DefaultTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &net.Dialer{}
	return &Prober{timeout: timeout, dial: d.DialContext}
}

// WithDialer swaps the dial function, mainly for tests.
func (p *Prober) WithDialer(dial DialFunc) *Prober {
	cp := *p
	cp.dial = dial
	return &cp
}

func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Check reports whether a TCP connection to e can be established within the
// prober's timeout. Every failure collapses to false.
func (p *Prober) Check(ctx context.Context, e Endpoint) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", e.Address())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// CheckTCPConnect is the one-call form of Prober.Check.
func CheckTCPConnect(ctx context.Context, host string, port int, timeout time.Duration) bool {
	return NewProber(timeout).Check(ctx, Endpoint{Host: host, Port: port})
}

// CheckAddress probes a preformatted host:port address.
func CheckAddress(ctx context.Context, address string, timeout time.Duration) bool {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return CheckTCPConnect(ctx, host, port, timeout)
}
