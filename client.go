package httpclient

import (
	"bytes"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

// Observer receives events for one HTTP exchange on a ClientImpl. A
// client and its observer hold a cycle of references to each other
// (owner→observer strong, observer→client implicit via the *ClientImpl
// handed to Attach); Attach/Detach bracket that relationship explicitly
// instead of relying on weak pointers, which Go has no equivalent for.
type Observer interface {
	// Attach is called once, when the observer is installed on client.
	Attach(client *ClientImpl)
	// Detach is called once, when the underlying connection closes.
	Detach()
	// Connected is called once the transport connection is usable.
	Connected()
	// ClosingConnection is called once, before teardown; no further
	// client methods may be called afterwards.
	ClosingConnection()
	// StatusAvailable is called once per exchange, before any
	// HeaderAvailable call.
	StatusAvailable(statusCode int)
	// HeaderAvailable is called once per response header other than
	// Content-Length, in wire order, after StatusAvailable and before
	// any BodyAvailable call.
	HeaderAvailable(h Header)
	// BodyAvailable delivers the next chunk of response body. The
	// observer must read what it wants, then call ClientImpl.AckReceived
	// to release the chunk and let the transport proceed (this is the Go
	// realization of "dropping" the body reader).
	BodyAvailable(r io.Reader)
	// BodyComplete is called once the full body (or, for a bodyless
	// response, the empty body) has been delivered.
	BodyComplete()
}

type clientState int

const (
	stateIdle clientState = iota
	stateAttached
	stateReady
	stateSending
	stateAwaitingResponse
	stateStreaming
	stateClosed
)

// ClientImpl is the per-connection HTTP/1.1 client state machine. It is
// bound to exactly one Conn for its whole lifetime: ConnectorImpl builds
// a fresh ClientImpl for each connection, reusing only the pooled header
// buffer.
//
// ClientImpl holds no internal lock: every method is expected to run on
// the single logical thread the owning Conn drives its callbacks from
// (see the package doc comment).
type ClientImpl struct {
	conn         Conn
	hostname     string
	headerBuffer []byte
	observer     Observer

	// Logger receives one line when a request is issued, one when its
	// body completes, and one per terminal transition (abort, close).
	// Defaults to a stderr log.Logger.
	Logger Logger
	// Clock is used to timestamp request start/end for log lines only;
	// it never gates a state transition. Defaults to a real clock.
	Clock clockwork.Clock
	// IDGenerator mints the correlation id logged with each request.
	// Defaults to a random UUIDv4.
	IDGenerator IDGenerator
	// AcceptEncoding, when true, makes the client transparently
	// decompress a gzip- or br-encoded response body before delivering
	// it to the observer. Because full decompression needs a real EOF,
	// enabling this trades the normal round-by-round streaming delivery
	// for a single BodyAvailable call once the whole body has arrived.
	// Off by default, which preserves the raw pass-through streaming
	// behaviour.
	AcceptEncoding bool

	state clientState

	request  *RequestFormatter
	response *ResponseParser

	bodyReader      *BodyReader
	bodyAccum       bytes.Buffer
	encodingPending string

	currentRequestID string
	requestStart     time.Time
	closed           bool
	lastError        error

	// onClosed, if set, is called once ClosingConnection has finished
	// notifying the observer. ConnectorImpl uses this to free the
	// client slot and service the next pending factory; it is nil for a
	// ClientImpl built directly by a caller that owns the slot itself.
	onClosed func()
}

// NewClientImpl constructs a client bound to conn, for requests destined
// to hostname. headerBuffer is lent to the response parser for the
// lifetime of each response; its capacity bounds the longest status or
// header line the client can accept.
func NewClientImpl(conn Conn, hostname string, headerBuffer []byte) *ClientImpl {
	c := &ClientImpl{
		conn:         conn,
		hostname:     hostname,
		headerBuffer: headerBuffer,
		state:        stateIdle,
	}
	conn.SetHandler(c)
	return c
}

func (c *ClientImpl) logger() Logger          { return loggerOrDefault(c.Logger) }
func (c *ClientImpl) clock() clockwork.Clock   { return clockOrDefault(c.Clock) }
func (c *ClientImpl) idGenerator() IDGenerator { return idGeneratorOrDefault(c.IDGenerator) }

// AttachObserver installs observer on the client and notifies it via
// Attach. It is the Idle -> Attached transition; ConnectorImpl calls
// this once per connection, before the transport's Connected callback
// fires.
func (c *ClientImpl) AttachObserver(observer Observer) {
	c.observer = observer
	c.state = stateAttached
	observer.Attach(c)
}

// Connected implements ConnHandler. Attached -> Ready.
func (c *ClientImpl) Connected() {
	c.state = stateReady
	c.observer.Connected()
}

// ClosingConnection implements ConnHandler. Any state -> Closed.
func (c *ClientImpl) ClosingConnection() {
	c.closed = true
	c.state = stateClosed
	c.logger().Printf("httpclient[%s]: connection closing", c.currentRequestID)
	if c.observer != nil {
		c.observer.ClosingConnection()
		c.observer.Detach()
	}
	if c.onClosed != nil {
		c.onClosed()
	}
}

// Get issues a GET request for target.
func (c *ClientImpl) Get(target string, headers HeaderList) error {
	return c.executeRequest(VerbGet, target, headers)
}

// Head issues a HEAD request for target.
func (c *ClientImpl) Head(target string, headers HeaderList) error {
	return c.executeRequest(VerbHead, target, headers)
}

// Connect issues a CONNECT request for target.
func (c *ClientImpl) Connect(target string, headers HeaderList) error {
	return c.executeRequest(VerbConnect, target, headers)
}

// Options issues an OPTIONS request for target.
func (c *ClientImpl) Options(target string, headers HeaderList) error {
	return c.executeRequest(VerbOptions, target, headers)
}

// Post issues a POST request for target carrying content.
func (c *ClientImpl) Post(target, content string, headers HeaderList) error {
	return c.executeRequestWithContent(VerbPost, target, content, headers)
}

// Put issues a PUT request for target carrying content.
func (c *ClientImpl) Put(target, content string, headers HeaderList) error {
	return c.executeRequestWithContent(VerbPut, target, content, headers)
}

// Patch issues a PATCH request for target carrying content.
func (c *ClientImpl) Patch(target, content string, headers HeaderList) error {
	return c.executeRequestWithContent(VerbPatch, target, content, headers)
}

// Delete issues a DELETE request for target carrying content.
func (c *ClientImpl) Delete(target, content string, headers HeaderList) error {
	return c.executeRequestWithContent(VerbDelete, target, content, headers)
}

func (c *ClientImpl) executeRequest(verb Verb, target string, headers HeaderList) error {
	return c.executeRequestWithContent(verb, target, "", headers)
}

func (c *ClientImpl) executeRequestWithContent(verb Verb, target, content string, headers HeaderList) error {
	if c.closed {
		return ErrClientClosed
	}
	if c.state != stateReady {
		return ErrOverlappingRequest
	}

	f, err := newRequestFormatter(verb, c.hostname, target, content, headers)
	if err != nil {
		return err
	}

	c.request = f
	c.currentRequestID = c.idGenerator()()
	c.requestStart = c.clock().Now()
	c.lastError = nil
	c.logger().Printf("httpclient[%s]: %s %s", c.currentRequestID, verb, target)

	c.state = stateSending
	c.conn.RequestSendStream(f.Size())
	return nil
}

// SendStreamAvailable implements ConnHandler. Sending -> AwaitingResponse.
func (c *ClientImpl) SendStreamAvailable(w io.Writer) {
	_ = c.request.Write(w)
	c.request = nil
	c.response = NewResponseParser(c.observer, c.headerBuffer)
	c.state = stateAwaitingResponse
}

// DataReceived implements ConnHandler.
func (c *ClientImpl) DataReceived() {
	if c.state == stateStreaming {
		c.deliverBody()
		return
	}

	if c.response == nil {
		c.lastError = ErrNoActiveResponse
		c.logger().Printf("httpclient[%s]: %v, aborting", c.currentRequestID, c.lastError)
		c.conn.AbortAndDestroy()
		return
	}

	c.handleData()
}

func (c *ClientImpl) handleData() {
	if !c.response.Done() {
		r := c.conn.ReceiveStream()
		c.response.DataReceived(r)
		if c.closed {
			return
		}
		c.conn.AckReceived()
	}

	if !c.response.Done() {
		return
	}

	if c.response.Error() {
		c.lastError = c.response.Err()
		c.logger().Printf("httpclient[%s]: malformed response: %v, aborting", c.currentRequestID, c.lastError)
		c.conn.AbortAndDestroy()
		return
	}

	c.bodyReceived()
}

func (c *ClientImpl) bodyReceived() {
	contentLength := c.response.ContentLength()
	if contentLength == 0 {
		c.bodyComplete()
		return
	}

	c.bodyReader = newBodyReader(c.conn.ReceiveStream(), contentLength)
	c.state = stateStreaming

	if c.AcceptEncoding {
		if enc := c.response.ContentEncoding(); enc != "" && !isIdentityEncoding(enc) {
			c.encodingPending = enc
		}
	}

	c.deliverBody()
}

func isIdentityEncoding(enc string) bool {
	return enc == "" || enc == "identity"
}

func (c *ClientImpl) deliverBody() {
	if c.encodingPending != "" {
		c.drainEncodedRound()
		return
	}

	// Rebind to the current connection receive stream: the reader
	// handed out earlier is only valid through the last DataReceived or
	// AckReceived call (transport.go), so each round gets a fresh one
	// while the running totals on bodyReader stay untouched.
	c.bodyReader.r = c.conn.ReceiveStream()
	c.observer.BodyAvailable(c.bodyReader)
}

func (c *ClientImpl) drainEncodedRound() {
	c.bodyReader.r = c.conn.ReceiveStream()
	done, _ := drainAvailable(&c.bodyAccum, c.bodyReader)
	c.conn.AckReceived()
	if !done && c.bodyReader.Remaining() > 0 {
		return
	}

	decoded, err := decodeContentEncoding(c.encodingPending, c.bodyAccum.Bytes())
	if err != nil {
		c.lastError = err
		c.logger().Printf("httpclient[%s]: content-decoding failed: %v", c.currentRequestID, err)
		c.conn.AbortAndDestroy()
		return
	}

	c.bodyAccum.Reset()
	c.encodingPending = ""
	c.observer.BodyAvailable(bytes.NewReader(decoded))
	// The observer's AckReceived inside BodyAvailable may already have
	// completed the exchange.
	if c.state == stateStreaming {
		c.bodyComplete()
	}
}

// AckReceived is called by the observer to release the chunk most
// recently delivered via BodyAvailable, acknowledging its bytes to the
// transport and, once the response's full Content-Length has been
// consumed, completing the exchange. This is the Go realization of
// "the observer drops the body reader" from the design notes: Go has no
// deterministic destructors, so the ack is an explicit call instead.
func (c *ClientImpl) AckReceived() error {
	if c.closed {
		return ErrClientClosed
	}

	c.conn.AckReceived()

	if c.state != stateStreaming || c.bodyReader == nil {
		return nil
	}
	if c.bodyReader.Remaining() == 0 {
		c.bodyComplete()
	}
	return nil
}

func (c *ClientImpl) bodyComplete() {
	c.response = nil
	c.bodyReader = nil
	c.encodingPending = ""
	c.state = stateReady
	c.logger().Printf("httpclient[%s]: body complete in %s", c.currentRequestID, c.clock().Now().Sub(c.requestStart))
	c.observer.BodyComplete()
}

// Close closes the underlying connection.
func (c *ClientImpl) Close() error {
	if c.closed {
		return ErrClientClosed
	}
	c.conn.CloseAndDestroy()
	return nil
}

// Err returns the error describing why the most recent exchange was
// aborted, or nil if the last exchange completed normally or none has
// happened yet. For a malformed response, an unsupported
// Content-Encoding, or DataReceived arriving with no request in flight
// it is one of the package's sentinels, to be matched with errors.Is;
// for a corrupt gzip or br body it is the decoder's own error.
func (c *ClientImpl) Err() error { return c.lastError }
