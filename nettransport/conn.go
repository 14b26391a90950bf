// Package nettransport is a concrete, goroutine-driven implementation
// of the httpclient package's Conn/Dialer contracts over net.Conn. It
// exists so the core package is runnable end to end without a caller
// having to write their own transport first, the same role the
// teacher's Dial/DialFunc plays for fasthttp.Client.
//
// The core httpclient package assumes every callback it receives comes
// from a single logical thread; net.Conn is inherently concurrent (a
// blocked Read can only be unblocked by another goroutine closing the
// socket). nettransport is where that real concurrency is absorbed: one
// goroutine per connection owns the blocking Read loop and is the only
// goroutine that ever calls into the handler, so everything downstream
// of Connected sees the single-threaded model the core package expects.
package nettransport

import (
	"net"
	"sync"

	"github.com/embeddedgo/httpclient"
)

// Conn is a Conn implementation backed by a net.Conn. Construct one via
// Dialer.Connect, not directly.
type Conn struct {
	nc      net.Conn
	handler httpclient.ConnHandler

	mu      sync.Mutex
	pending []byte
	cur     *httpclient.BufferedRewindReader

	closeOnce sync.Once
	closed    bool
}

func newConn(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// start fires Connected and launches the read loop, unless the
// connection was already aborted before ever being handed to the
// application (e.g. a Factory declining synchronously via
// observerSink(nil) inside ConnectionEstablished) — in which case it
// fires ClosingConnection instead, so the handler always sees exactly
// one of the two and a slot owner's onClosed hook still runs. Called
// once, by the Dialer, after ConnectionEstablished has returned.
func (c *Conn) start() {
	c.mu.Lock()
	closed := c.closed
	handler := c.handler
	c.mu.Unlock()
	if closed {
		if handler != nil {
			handler.ClosingConnection()
		}
		return
	}
	if handler != nil {
		handler.Connected()
	}
	go c.readLoop()
}

// SetHandler implements httpclient.Conn.
func (c *Conn) SetHandler(h httpclient.ConnHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// RequestSendStream implements httpclient.Conn. net.Conn.Write can
// always accept bytes directly, so unlike a fully async transport this
// reply is synchronous; n is advisory only.
func (c *Conn) RequestSendStream(n int) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler.SendStreamAvailable(c.nc)
	}
}

// ReceiveStream implements httpclient.Conn.
func (c *Conn) ReceiveStream() httpclient.RewindReader {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = httpclient.NewBufferedRewindReader(c.pending)
	return c.cur
}

// AckReceived implements httpclient.Conn: it drops the prefix of
// pending bytes that the most recently handed-out RewindReader consumed.
func (c *Conn) AckReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return
	}
	c.pending = append(c.pending[:0], c.cur.Remaining()...)
	c.cur = nil
}

// CloseAndDestroy implements httpclient.Conn.
func (c *Conn) CloseAndDestroy() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.nc.Close()
	})
}

// AbortAndDestroy implements httpclient.Conn. On a TCP connection it
// additionally sets SO_LINGER to 0 so the socket resets rather than
// performing an orderly close, matching the "abandon immediately"
// intent of an abort versus a graceful close.
func (c *Conn) AbortAndDestroy() {
	if tc, ok := c.nc.(*net.TCPConn); ok {
		_ = tc.SetLinger(0)
	}
	c.CloseAndDestroy()
}

func (c *Conn) readLoop() {
	scratch := make([]byte, 4096)
	for {
		n, err := c.nc.Read(scratch)
		if n > 0 {
			c.mu.Lock()
			c.pending = append(c.pending, scratch[:n]...)
			c.cur = nil
			handler := c.handler
			c.mu.Unlock()
			if handler != nil {
				handler.DataReceived()
			}
		}
		if err != nil {
			c.CloseAndDestroy()
			c.mu.Lock()
			handler := c.handler
			c.mu.Unlock()
			if handler != nil {
				handler.ClosingConnection()
			}
			return
		}
	}
}
