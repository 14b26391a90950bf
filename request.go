package httpclient

import (
	"io"
	"strconv"
)

// RequestFormatter computes the exact wire size of an HTTP/1.1 request
// and then writes exactly that many bytes. Callers must call Size()
// before Write() and reserve that many bytes from the transport; Write
// never emits more than Size() reported.
//
// A RequestFormatter is immutable after construction. Content-Length is
// rendered into a fixed-size array; beyond the formatter itself, the
// only allocation is the short string copied from that array.
type RequestFormatter struct {
	verb          Verb
	requestTarget string
	content       string
	hostHeader    Header
	headers       HeaderList

	hasContentLength bool
	contentLengthBuf [20]byte
	contentLengthStr string
}

// NewRequestFormatter builds a formatter for a request with no body
// (GET, HEAD, CONNECT, OPTIONS, or any verb without content).
func NewRequestFormatter(verb Verb, hostname, requestTarget string, headers HeaderList) (*RequestFormatter, error) {
	return newRequestFormatter(verb, hostname, requestTarget, "", headers)
}

// NewRequestFormatterWithContent builds a formatter for a request
// carrying content (POST, PUT, PATCH, DELETE). A Content-Length header
// is synthesized from len(content).
func NewRequestFormatterWithContent(verb Verb, hostname, requestTarget, content string, headers HeaderList) (*RequestFormatter, error) {
	return newRequestFormatter(verb, hostname, requestTarget, content, headers)
}

func newRequestFormatter(verb Verb, hostname, requestTarget, content string, headers HeaderList) (*RequestFormatter, error) {
	hostHeader := Header{Field: string(strHost), Value: hostname}
	if !hostHeader.valid() || !headers.valid() {
		return nil, ErrInvalidHeader
	}

	f := &RequestFormatter{
		verb:          verb,
		requestTarget: requestTarget,
		content:       content,
		hostHeader:    hostHeader,
		headers:       headers,
	}

	if len(content) > 0 {
		f.hasContentLength = true
		n := strconv.AppendInt(f.contentLengthBuf[:0], int64(len(content)), 10)
		f.contentLengthStr = string(n)
	}

	return f, nil
}

func (f *RequestFormatter) contentLengthHeader() (Header, bool) {
	if !f.hasContentLength {
		return Header{}, false
	}
	return Header{Field: strContentLength, Value: f.contentLengthStr}, true
}

// Size returns exactly the number of bytes Write will emit.
func (f *RequestFormatter) Size() int {
	n := len(f.verb.String()) + len(strSP) + len(f.requestTarget) + len(strSP) + len(strHTTP11) + len(strCRLF)
	n += f.headers.size()
	n += f.hostHeader.size()
	if h, ok := f.contentLengthHeader(); ok {
		n += h.size()
	}
	n += len(strCRLF) // blank line terminating the header block
	n += len(f.content)
	return n
}

// Write emits the request onto w: request line, caller headers, the
// synthesized Host header, an optional Content-Length header, the blank
// line, and the raw content bytes. Write never transforms caller
// headers.
func (f *RequestFormatter) Write(w io.Writer) error {
	if _, err := io.WriteString(w, f.verb.String()); err != nil {
		return err
	}
	if err := writeAll(w, strSP, []byte(f.requestTarget), strSP, strHTTP11, strCRLF); err != nil {
		return err
	}

	for _, h := range f.headers {
		if err := writeHeaderLine(w, h); err != nil {
			return err
		}
	}
	if err := writeHeaderLine(w, f.hostHeader); err != nil {
		return err
	}
	if h, ok := f.contentLengthHeader(); ok {
		if err := writeHeaderLine(w, h); err != nil {
			return err
		}
	}

	if _, err := w.Write(strCRLF); err != nil {
		return err
	}
	if len(f.content) > 0 {
		if _, err := io.WriteString(w, f.content); err != nil {
			return err
		}
	}
	return nil
}

func writeHeaderLine(w io.Writer, h Header) error {
	return writeAll(w, []byte(h.Field), strColonSpace, []byte(h.Value), strCRLF)
}

func writeAll(w io.Writer, chunks ...[]byte) error {
	for _, c := range chunks {
		if _, err := w.Write(c); err != nil {
			return err
		}
	}
	return nil
}
