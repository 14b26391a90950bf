package httpclient

import "github.com/valyala/bytebufferpool"

// Dialer is the transport-level collaborator a ConnectorImpl drives to
// open new connections. It sits one level above Conn/ConnHandler: a
// Dialer turns a hostname/port into a live Conn, the way ConnHandler
// turns a live Conn into request/response events.
type Dialer interface {
	// Connect begins establishing a connection to hostname:port. The
	// dialer reports the outcome exactly once via h.
	Connect(hostname string, port uint16, h DialHandler)
	// CancelConnect aborts the most recent Connect call if it has not
	// yet reported an outcome. A no-op if none is outstanding.
	CancelConnect()
}

// DialHandler receives the outcome of a Dialer.Connect call.
type DialHandler interface {
	ConnectionEstablished(conn Conn)
	ConnectionFailed(reason FailReason)
}

// ConnectorImpl multiplexes any number of pending Factory requests onto
// a single reusable connection slot: at most one transport connect is
// ever in flight, and at most one ClientImpl is ever alive, at any
// given time. Requests that arrive while the slot is busy wait in FIFO
// order.
//
// ConnectorImpl holds no internal lock; like ClientImpl, it is driven
// synchronously from Dialer/Conn callbacks and from direct calls made
// by the owning goroutine (see the package doc comment).
type ConnectorImpl struct {
	dialer           Dialer
	headerBufferSize int

	// Logger receives one line per slot acquisition/release. Defaults
	// to a stderr log.Logger.
	Logger Logger

	pendingQueue   []Factory
	currentFactory Factory

	slotOccupied bool
	slotBuf      *bytebufferpool.ByteBuffer
}

// NewConnectorImpl builds a connector that dials through dialer and
// gives each connection's ClientImpl a header buffer of headerBufferSize
// bytes of capacity, pooled across successive connections.
func NewConnectorImpl(dialer Dialer, headerBufferSize int) *ConnectorImpl {
	return &ConnectorImpl{dialer: dialer, headerBufferSize: headerBufferSize}
}

func (c *ConnectorImpl) logger() Logger { return loggerOrDefault(c.Logger) }

// Connect enqueues factory's connection request, servicing it
// immediately if the connector is idle.
func (c *ConnectorImpl) Connect(factory Factory) {
	c.pendingQueue = append(c.pendingQueue, factory)
	c.tryConnectWaiting()
}

// CancelConnect withdraws factory's request, whether it is still
// waiting in the queue or is the in-flight connect. A no-op if factory
// is neither.
func (c *ConnectorImpl) CancelConnect(factory Factory) {
	if c.currentFactory == factory {
		c.dialer.CancelConnect()
		c.currentFactory = nil
		c.tryConnectWaiting()
		return
	}
	for i, f := range c.pendingQueue {
		if f == factory {
			c.pendingQueue = append(c.pendingQueue[:i], c.pendingQueue[i+1:]...)
			break
		}
	}
	c.tryConnectWaiting()
}

func (c *ConnectorImpl) tryConnectWaiting() {
	if c.currentFactory != nil || c.slotOccupied || len(c.pendingQueue) == 0 {
		return
	}
	factory := c.pendingQueue[0]
	c.pendingQueue = c.pendingQueue[1:]
	c.currentFactory = factory
	c.dialer.Connect(factory.Hostname(), factory.Port(), c)
}

// ConnectionEstablished implements DialHandler. It occupies the client
// slot, builds a ClientImpl bound to conn, and asks the waiting factory
// for an observer to attach.
func (c *ConnectorImpl) ConnectionEstablished(conn Conn) {
	factory := c.currentFactory
	c.currentFactory = nil

	buf := bytebufferpool.Get()
	if cap(buf.B) < c.headerBufferSize {
		buf.B = make([]byte, c.headerBufferSize)
	}
	c.slotBuf = buf
	c.slotOccupied = true
	c.logger().Printf("httpclient: connection established to %s:%d, slot occupied", factory.Hostname(), factory.Port())

	client := NewClientImpl(conn, factory.Hostname(), buf.B[:c.headerBufferSize:c.headerBufferSize])
	client.onClosed = c.releaseSlot

	factory.ConnectionEstablished(func(observer Observer) {
		if observer == nil {
			conn.AbortAndDestroy()
			return
		}
		client.AttachObserver(observer)
	})
}

// ConnectionFailed implements DialHandler.
func (c *ConnectorImpl) ConnectionFailed(reason FailReason) {
	factory := c.currentFactory
	c.currentFactory = nil
	c.logger().Printf("httpclient: connection to %s:%d failed: %s", factory.Hostname(), factory.Port(), reason)
	factory.ConnectionFailed(reason)
	c.tryConnectWaiting()
}

func (c *ConnectorImpl) releaseSlot() {
	if !c.slotOccupied {
		return
	}
	bytebufferpool.Put(c.slotBuf)
	c.slotBuf = nil
	c.slotOccupied = false
	c.logger().Printf("httpclient: slot released")
	c.tryConnectWaiting()
}
