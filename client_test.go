package httpclient

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is a hand-driven Conn test double: the test calls ClientImpl's
// ConnHandler methods directly instead of running a real transport.
type fakeConn struct {
	handler ConnHandler

	sendRequested int
	pending       []byte
	cur           *BufferedRewindReader

	closed  bool
	aborted bool
}

func (c *fakeConn) SetHandler(h ConnHandler) { c.handler = h }
func (c *fakeConn) RequestSendStream(n int)  { c.sendRequested = n }
func (c *fakeConn) ReceiveStream() RewindReader {
	c.cur = NewBufferedRewindReader(c.pending)
	return c.cur
}
func (c *fakeConn) AckReceived() {
	if c.cur == nil {
		return
	}
	c.pending = append([]byte(nil), c.cur.Remaining()...)
	c.cur = nil
}
func (c *fakeConn) CloseAndDestroy() { c.closed = true }
func (c *fakeConn) AbortAndDestroy() { c.aborted = true }

// testObserver is a hand-driven Observer: BodyAvailable acks
// immediately, the way a simple consumer would.
type testObserver struct {
	client *ClientImpl

	connectedCount int
	closingCount   int
	detachCount    int
	statuses       []int
	headers        []Header
	bodyChunks     []string
	bodyDoneCount  int
}

func (o *testObserver) Attach(c *ClientImpl) { o.client = c }
func (o *testObserver) Detach()              { o.detachCount++ }
func (o *testObserver) Connected()           { o.connectedCount++ }
func (o *testObserver) ClosingConnection()   { o.closingCount++ }
func (o *testObserver) StatusAvailable(code int) {
	o.statuses = append(o.statuses, code)
}
func (o *testObserver) HeaderAvailable(h Header) {
	o.headers = append(o.headers, h)
}
func (o *testObserver) BodyAvailable(r io.Reader) {
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	o.bodyChunks = append(o.bodyChunks, string(buf[:n]))
	_ = o.client.AckReceived()
}
func (o *testObserver) BodyComplete() { o.bodyDoneCount++ }

func newAttachedClient() (*ClientImpl, *fakeConn, *testObserver) {
	conn := &fakeConn{}
	client := NewClientImpl(conn, "example.com", make([]byte, 256))
	obs := &testObserver{}
	client.AttachObserver(obs)
	client.Connected()
	return client, conn, obs
}

func TestClientImplFullExchangeSingleRound(t *testing.T) {
	client, conn, obs := newAttachedClient()
	assert.Equal(t, 1, obs.connectedCount)

	require.NoError(t, client.Get("/widgets", nil))
	assert.Greater(t, conn.sendRequested, 0)

	var sent bytes.Buffer
	client.SendStreamAvailable(&sent)
	assert.Contains(t, sent.String(), "GET /widgets HTTP/1.1\r\n")
	assert.Contains(t, sent.String(), "Host: example.com\r\n")

	conn.pending = []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
	client.DataReceived()

	assert.Equal(t, []int{200}, obs.statuses)
	assert.Equal(t, []string{"hello"}, obs.bodyChunks)
	assert.Equal(t, 1, obs.bodyDoneCount)
	assert.NoError(t, client.Err())
}

func TestClientImplBodySplitAcrossRounds(t *testing.T) {
	client, conn, obs := newAttachedClient()
	require.NoError(t, client.Get("/widgets", nil))

	var sent bytes.Buffer
	client.SendStreamAvailable(&sent)

	conn.pending = []byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhe")
	client.DataReceived()
	assert.Equal(t, []string{"he"}, obs.bodyChunks)
	assert.Equal(t, 0, obs.bodyDoneCount)

	conn.pending = append(conn.pending, "llo"...)
	client.DataReceived()
	assert.Equal(t, []string{"he", "llo"}, obs.bodyChunks)
	assert.Equal(t, 1, obs.bodyDoneCount)
}

func TestClientImplBodylessResponseCompletesImmediately(t *testing.T) {
	client, conn, obs := newAttachedClient()
	require.NoError(t, client.Head("/widgets", nil))

	var sent bytes.Buffer
	client.SendStreamAvailable(&sent)

	conn.pending = []byte("HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n")
	client.DataReceived()

	assert.Equal(t, []int{204}, obs.statuses)
	assert.Equal(t, 1, obs.bodyDoneCount)
	assert.Empty(t, obs.bodyChunks)
}

func TestClientImplRejectsOverlappingRequest(t *testing.T) {
	client, _, _ := newAttachedClient()
	require.NoError(t, client.Get("/first", nil))
	err := client.Post("/second", "x", nil)
	assert.ErrorIs(t, err, ErrOverlappingRequest)
}

func TestClientImplMalformedResponseAborts(t *testing.T) {
	client, conn, _ := newAttachedClient()
	require.NoError(t, client.Get("/widgets", nil))

	var sent bytes.Buffer
	client.SendStreamAvailable(&sent)

	conn.pending = []byte("NOT A STATUS LINE\r\n\r\n")
	client.DataReceived()

	assert.True(t, conn.aborted)
	assert.ErrorIs(t, client.Err(), ErrMalformedStatusLine)
}

func TestClientImplDataReceivedWithNoActiveResponseAborts(t *testing.T) {
	client, conn, _ := newAttachedClient()
	client.DataReceived()
	assert.True(t, conn.aborted)
	assert.ErrorIs(t, client.Err(), ErrNoActiveResponse)
}

func TestClientImplClosingConnectionNotifiesAndClosesObserver(t *testing.T) {
	client, _, obs := newAttachedClient()
	client.ClosingConnection()
	assert.Equal(t, 1, obs.closingCount)
	assert.Equal(t, 1, obs.detachCount)

	err := client.Get("/after-close", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestClientImplUnsupportedContentEncodingAborts(t *testing.T) {
	client, conn, _ := newAttachedClient()
	client.AcceptEncoding = true
	require.NoError(t, client.Get("/widgets", nil))

	var sent bytes.Buffer
	client.SendStreamAvailable(&sent)

	conn.pending = []byte("HTTP/1.1 200 OK\r\nContent-Encoding: deflate\r\nContent-Length: 3\r\n\r\nabc")
	client.DataReceived()

	assert.True(t, conn.aborted)
	assert.ErrorIs(t, client.Err(), ErrUnsupportedContentEncoding)
}

func TestClientImplInvalidHeaderRejected(t *testing.T) {
	client, _, _ := newAttachedClient()
	err := client.Get("/widgets", HeaderList{{Field: "X-Bad\r\n", Value: "y"}})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}
