package httpclient

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver implements Observer, capturing every event so tests
// can assert on exact call sequences.
type recordingObserver struct {
	statuses []int
	headers  []Header
	bodies   []string
	bodyDone int
}

func (r *recordingObserver) Attach(*ClientImpl)   {}
func (r *recordingObserver) Detach()              {}
func (r *recordingObserver) Connected()           {}
func (r *recordingObserver) ClosingConnection()   {}
func (r *recordingObserver) StatusAvailable(code int) {
	r.statuses = append(r.statuses, code)
}
func (r *recordingObserver) HeaderAvailable(h Header) {
	r.headers = append(r.headers, h)
}
func (r *recordingObserver) BodyAvailable(rd io.Reader) {
	b, _ := io.ReadAll(rd)
	r.bodies = append(r.bodies, string(b))
}
func (r *recordingObserver) BodyComplete() { r.bodyDone++ }

// feedInRounds drives parser with full, split into chunkSize-byte
// arrivals, trimming consumed bytes between rounds the way
// ClientImpl.handleData + Conn.AckReceived do together in production.
func feedInRounds(parser *ResponseParser, full []byte, chunkSize int) {
	var pending []byte
	pos := 0
	for !parser.Done() {
		if pos < len(full) {
			end := pos + chunkSize
			if end > len(full) {
				end = len(full)
			}
			pending = append(pending, full[pos:end]...)
			pos = end
		} else if len(pending) == 0 {
			return
		}
		r := NewBufferedRewindReader(pending)
		parser.DataReceived(r)
		pending = append([]byte(nil), r.Remaining()...)
	}
}

func TestResponseParserWholeMessageAtOnce(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	require.False(t, parser.Error())
	assert.Equal(t, []int{200}, obs.statuses)
	assert.Equal(t, []Header{{Field: "Content-Type", Value: "text/plain"}}, obs.headers)
	assert.Equal(t, uint32(5), parser.ContentLength())
	assert.Equal(t, "", parser.ContentEncoding())
}

func TestResponseParserByteAtATime(t *testing.T) {
	raw := []byte("HTTP/1.1 404 Not Found\r\nX-A: 1\r\nX-B: 2\r\nContent-Length: 0\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, 1)

	require.True(t, parser.Done())
	require.False(t, parser.Error())
	assert.Equal(t, []int{404}, obs.statuses)
	assert.Equal(t, []Header{{Field: "X-A", Value: "1"}, {Field: "X-B", Value: "2"}}, obs.headers)
	assert.Equal(t, uint32(0), parser.ContentLength())
}

func TestResponseParserMissingContentLengthIsError(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nX-A: 1\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrMissingContentLength))
}

func TestResponseParserMalformedStatusLine(t *testing.T) {
	raw := []byte("GARBAGE\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrMalformedStatusLine))
	assert.Empty(t, obs.statuses)
}

func TestResponseParserUnsupportedVersion(t *testing.T) {
	raw := []byte("HTTP/2.0 200 OK\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrUnsupportedHTTPVersion))
}

func TestResponseParserHeaderLineTooLong(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nX-Long: " + string(make([]byte, 64)) + "\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 32))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrHeaderLineTooLong))
}

func TestResponseParserMalformedHeaderLine(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nX-No-Colon\r\nContent-Length: 0\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrMalformedHeaderLine))
}

func TestResponseParserMalformedContentLength(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Length: not-a-number\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, len(raw))

	require.True(t, parser.Done())
	assert.True(t, parser.Error())
	assert.True(t, errors.Is(parser.Err(), ErrMalformedContentLength))
}

func TestResponseParserFullBufferExactCRLFBoundary(t *testing.T) {
	// The status line plus its terminating CRLF exactly fills the
	// header buffer: this must still be accepted (Open Question
	// decision in DESIGN.md), not treated as a too-long line. Tested
	// directly against parseStatusLine/fillFromReader so it is not
	// entangled with the separate missing-Content-Length rule.
	line := "HTTP/1.1 200 OK"
	raw := []byte(line + "\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, len(line)+2))

	r := NewBufferedRewindReader(raw)
	parser.parseStatusLine(r)

	assert.False(t, parser.errored)
	assert.True(t, parser.statusParsed)
	assert.Equal(t, []int{200}, obs.statuses)
}

func TestResponseParserDoesNotParseHeadersBeforeStatusLineCompletes(t *testing.T) {
	// Regression test: the first round delivers only a partial status
	// line ("HTTP/1.1 20", no CRLF yet). DataReceived must not fall
	// through to parseHeaders on that round, or it would try to parse
	// the still-incomplete status-line bytes as header lines.
	raw := []byte("HTTP/1.1 200 OK\r\nX-A: 1\r\nContent-Length: 0\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, 11) // "HTTP/1.1 20" first round, no CRLF

	require.True(t, parser.Done())
	require.False(t, parser.Error())
	assert.Equal(t, []int{200}, obs.statuses)
	assert.Equal(t, []Header{{Field: "X-A", Value: "1"}}, obs.headers)
}

func TestResponseParserContentEncodingCaptured(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Length: 0\r\n\r\n")
	obs := &recordingObserver{}
	parser := NewResponseParser(obs, make([]byte, 256))

	feedInRounds(parser, raw, 7)

	require.True(t, parser.Done())
	require.False(t, parser.Error())
	assert.Equal(t, "gzip", parser.ContentEncoding())
	// Content-Encoding is still forwarded to the observer like any other
	// header, only Content-Length is intercepted.
	assert.Equal(t, []Header{{Field: "Content-Encoding", Value: "gzip"}}, obs.headers)
}
