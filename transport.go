package httpclient

import "io"

// RewindReader is a byte reader that can rewind to an earlier position
// recorded with SaveMarker. Implementations represent whatever portion
// of the connection's inbound byte stream is currently buffered; a
// Read past the buffered bytes returns io.EOF rather than blocking for
// more network data — new data arrives via another DataReceived event
// and a fresh call to Conn.ReceiveStream.
type RewindReader interface {
	io.Reader

	// SaveMarker returns the number of bytes read from this reader
	// instance so far. It is a position, not a token: pass it straight
	// to Rewind.
	SaveMarker() int

	// Rewind resets the read cursor to the absolute position marker,
	// previously obtained from SaveMarker on the same reader instance.
	Rewind(marker int)

	// Available returns the number of unread bytes currently buffered.
	Available() int
}

// ConnHandler receives lifecycle and data events from a Conn. ClientImpl
// implements this interface and is installed via Conn.SetHandler.
type ConnHandler interface {
	// Connected is called once, after the transport has established the
	// connection and installed this handler.
	Connected()

	// SendStreamAvailable is called after a RequestSendStream(n) request
	// completes; w accepts up to the requested number of bytes.
	SendStreamAvailable(w io.Writer)

	// DataReceived is called whenever more inbound bytes are buffered.
	// The handler must call Conn.ReceiveStream to access them.
	DataReceived()

	// ClosingConnection is called once, before the transport tears the
	// connection down, whether due to a remote close, a local
	// CloseAndDestroy/AbortAndDestroy, or a transport-level error.
	ClosingConnection()
}

// Conn is the transport abstraction ClientImpl is driven by. It is
// consumed, never implemented, by this package; see the nettransport
// subpackage for a concrete implementation over net.Conn.
type Conn interface {
	// SetHandler installs the handler that receives this connection's
	// lifecycle and data events. Called once, before any other method.
	SetHandler(h ConnHandler)

	// RequestSendStream asks the transport for a writable buffer of at
	// least n bytes. The transport replies asynchronously by invoking
	// ConnHandler.SendStreamAvailable.
	RequestSendStream(n int)

	// ReceiveStream returns a RewindReader over the bytes currently
	// buffered for this connection. Valid until the next AckReceived or
	// DataReceived call.
	ReceiveStream() RewindReader

	// AckReceived acknowledges that previously returned ReceiveStream
	// bytes have been consumed and may be discarded by the transport.
	AckReceived()

	// CloseAndDestroy closes the connection gracefully.
	CloseAndDestroy()

	// AbortAndDestroy closes the connection immediately, e.g. after a
	// protocol error.
	AbortAndDestroy()
}

// Factory is supplied to ConnectorImpl.Connect. It carries the
// destination of one pending connection attempt and is notified of its
// outcome.
type Factory interface {
	// Hostname is the name to resolve and to place in the Host header.
	Hostname() string

	// Port is the destination TCP port.
	Port() uint16

	// ConnectionEstablished is called once a connection has been made
	// and a ClientImpl allocated for it. The factory must call
	// observerSink with the Observer that should be attached, or with
	// nil to decline the connection (in which case the client slot is
	// released unused).
	ConnectionEstablished(observerSink func(Observer))

	// ConnectionFailed is called when the connection attempt did not
	// succeed.
	ConnectionFailed(reason FailReason)
}
