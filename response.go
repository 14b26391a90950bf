package httpclient

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// ResponseParser incrementally parses an HTTP/1.1 status line and
// header block from a RewindReader, emitting StatusAvailable and
// HeaderAvailable events to an observer as it goes. It borrows a
// fixed-capacity header buffer from its owner and allocates nothing
// itself; the buffer's capacity bounds the longest status or header
// line the parser can accept (ErrHeaderLineTooLong otherwise).
//
// DataReceived is safe to call repeatedly with fresh readers over the
// same logical byte stream: it always rewinds to exactly the position
// past the last fully-consumed CRLF before returning, so no byte is
// ever parsed twice and no byte is silently dropped.
type ResponseParser struct {
	observer     Observer
	headerBuffer []byte

	statusParsed bool
	done         bool
	errored      bool
	err          error

	hasContentLength bool
	contentLength    uint32

	contentEncoding string
}

// NewResponseParser creates a parser that reports events to observer and
// uses headerBuffer (whose capacity, not length, bounds each line) as
// scratch space for the duration of one response.
func NewResponseParser(observer Observer, headerBuffer []byte) *ResponseParser {
	return &ResponseParser{
		observer:     observer,
		headerBuffer: headerBuffer[:0],
	}
}

// DataReceived feeds newly available bytes to the parser. It may be
// called multiple times as more data arrives; it is a no-op once Done
// returns true.
func (p *ResponseParser) DataReceived(r RewindReader) {
	if !p.statusParsed {
		p.parseStatusLine(r)
	}
	if p.statusParsed && !p.errored {
		p.parseHeaders(r)
	}
}

// Done reports whether the header block has been fully parsed (with or
// without error).
func (p *ResponseParser) Done() bool { return p.done }

// Error reports whether parsing ended in a fatal error. Only meaningful
// once Done returns true.
func (p *ResponseParser) Error() bool { return p.errored }

// Err returns the sentinel describing why parsing failed, or nil if
// Error returns false. Callers should match it with errors.Is.
func (p *ResponseParser) Err() error { return p.err }

// ContentLength returns the parsed Content-Length. Only valid when Done
// is true and Error is false.
func (p *ResponseParser) ContentLength() uint32 { return p.contentLength }

// ContentEncoding returns the raw Content-Encoding header value, or ""
// if none was present. Used by the optional decompression layer in
// compress.go.
func (p *ResponseParser) ContentEncoding() string { return p.contentEncoding }

func (p *ResponseParser) setError(err error) {
	p.done = true
	p.errored = true
	p.err = err
}

// fillFromReader reads up to cap(p.headerBuffer) bytes, starting at r's
// current cursor, into p.headerBuffer, resized to however many bytes
// were actually available. It never blocks: RewindReader.Read returns
// io.EOF once its currently-buffered bytes are exhausted.
func (p *ResponseParser) fillFromReader(r RewindReader) []byte {
	n := r.Available()
	if c := cap(p.headerBuffer); n > c {
		n = c
	}
	buf := p.headerBuffer[:n]
	read, _ := io.ReadFull(r, buf)
	return buf[:read]
}

func (p *ResponseParser) parseStatusLine(r RewindReader) {
	start := r.SaveMarker()
	buf := p.fillFromReader(r)

	idx := bytes.Index(buf, strCRLF)
	if idx < 0 {
		if len(buf) == cap(p.headerBuffer) {
			p.setError(ErrHeaderLineTooLong)
		}
		// Not enough data yet for a full line. fillFromReader already
		// consumed these bytes from r; rewind back to start so the
		// caller's subsequent AckReceived sees them as still unacked,
		// instead of discarding them.
		r.Rewind(start)
		return
	}

	line := buf[:idx]
	r.Rewind(start + idx + len(strCRLF))
	p.statusParsed = true

	version, rest, ok := cutByte(line, ' ')
	if !ok || !bytes.HasPrefix(version, []byte("HTTP/")) {
		p.setError(ErrMalformedStatusLine)
		return
	}
	if !bytes.Equal(version, strHTTP10) && !bytes.Equal(version, strHTTP11) {
		p.setError(ErrUnsupportedHTTPVersion)
		return
	}

	code, _, _ := cutByte(rest, ' ')
	statusCode, ok := parseStatusCode(code)
	if !ok {
		p.setError(ErrMalformedStatusLine)
		return
	}

	p.observer.StatusAvailable(statusCode)
}

func parseStatusCode(tok []byte) (int, bool) {
	if len(tok) != 3 {
		return 0, false
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	if tok[0] < '1' || tok[0] > '5' {
		return 0, false
	}
	code, err := strconv.Atoi(string(tok))
	if err != nil {
		return 0, false
	}
	return code, true
}

// cutByte splits data at the first occurrence of sep, analogous to
// bytes.Cut but only ever used with a single-byte separator here.
func cutByte(data []byte, sep byte) (before, after []byte, found bool) {
	i := bytes.IndexByte(data, sep)
	if i < 0 {
		return data, nil, false
	}
	return data[:i], data[i+1:], true
}

func (p *ResponseParser) parseHeaders(r RewindReader) {
	for !p.done && r.Available() > 0 {
		start := r.SaveMarker()
		buf := p.fillFromReader(r)

		idx := bytes.Index(buf, strCRLF)
		if idx < 0 {
			if len(buf) == cap(p.headerBuffer) {
				p.setError(ErrHeaderLineTooLong)
			}
			// As in parseStatusLine: rewind so a not-yet-complete line
			// is not mistaken for consumed bytes by the caller's ack.
			r.Rewind(start)
			return
		}

		headerLine := buf[:idx]
		r.Rewind(start + idx + len(strCRLF))

		if len(headerLine) == 0 {
			if !p.hasContentLength {
				p.setError(ErrMissingContentLength)
				return
			}
			p.done = true
			return
		}

		field, value, ok := cutByte(headerLine, ':')
		if !ok {
			p.setError(ErrMalformedHeaderLine)
			return
		}
		value = bytes.TrimLeft(value, " ")

		fieldStr := string(field)
		valueStr := string(value)

		if strings.EqualFold(fieldStr, strContentLength) {
			n, err := strconv.ParseUint(valueStr, 10, 32)
			if err != nil {
				p.setError(ErrMalformedContentLength)
				return
			}
			p.hasContentLength = true
			p.contentLength = uint32(n)
			continue
		}

		if strings.EqualFold(fieldStr, strContentEncoding) {
			p.contentEncoding = valueStr
		}

		p.observer.HeaderAvailable(Header{Field: fieldStr, Value: valueStr})
	}
}
