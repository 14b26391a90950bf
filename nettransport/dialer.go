package nettransport

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/embeddedgo/httpclient"
)

// DialFunc must establish a connection to addr, a "host:port" string.
// It mirrors the teacher's DialFunc for the same connection-factory
// role (net.Dial's signature, abstracted out for testing and for
// TLS/proxy variants).
type DialFunc func(addr string) (net.Conn, error)

// Dialer implements httpclient.Dialer over DialFunc. At most one
// Connect is ever outstanding at a time, matching ConnectorImpl's own
// invariant; a second Connect call before the first resolves is a
// programming error on the caller's part and is not guarded against
// here.
type Dialer struct {
	// Dial establishes the raw connection. Defaults to net.Dial("tcp",
	// addr) when left nil.
	Dial DialFunc

	mu      sync.Mutex
	current *int32
}

// NewDialer builds a Dialer using dial, or plain net.Dial("tcp", ...)
// when dial is nil.
func NewDialer(dial DialFunc) *Dialer {
	if dial == nil {
		dial = func(addr string) (net.Conn, error) { return net.Dial("tcp", addr) }
	}
	return &Dialer{Dial: dial}
}

// Connect implements httpclient.Dialer.
func (d *Dialer) Connect(hostname string, port uint16, h httpclient.DialHandler) {
	cancelled := new(int32)
	d.mu.Lock()
	d.current = cancelled
	d.mu.Unlock()

	addr := net.JoinHostPort(hostname, strconv.FormatUint(uint64(port), 10))

	dial := d.Dial
	if dial == nil {
		dial = func(addr string) (net.Conn, error) { return net.Dial("tcp", addr) }
	}

	go func() {
		nc, err := dial(addr)

		if atomic.LoadInt32(cancelled) != 0 {
			if nc != nil {
				nc.Close()
			}
			return
		}
		if err != nil {
			h.ConnectionFailed(classifyDialError(err))
			return
		}

		conn := newConn(nc)
		h.ConnectionEstablished(conn)
		conn.start()
	}()
}

// CancelConnect implements httpclient.Dialer.
func (d *Dialer) CancelConnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		atomic.StoreInt32(d.current, 1)
		d.current = nil
	}
}

func classifyDialError(err error) httpclient.FailReason {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return httpclient.FailNameLookup
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return httpclient.FailRefused
	}
	return httpclient.FailAllocation
}
