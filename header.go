package httpclient

import (
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Header is a single (field, value) pair of an HTTP message. Field
// comparisons for protocol semantics (e.g. recognizing "Content-Length")
// are ASCII case-insensitive; the byte form supplied here is preserved
// verbatim when writing outgoing headers.
type Header struct {
	Field string
	Value string
}

// EqualField reports whether h's field matches name, ASCII
// case-insensitively.
func (h Header) EqualField(name string) bool {
	return strings.EqualFold(h.Field, name)
}

func (h Header) valid() bool {
	return httpguts.ValidHeaderFieldName(h.Field) && httpguts.ValidHeaderFieldValue(h.Value)
}

// size returns the number of wire bytes a single "field: value\r\n" line
// occupies.
func (h Header) size() int {
	return len(h.Field) + len(strColonSpace) + len(h.Value) + len(strCRLF)
}

// HeaderList is an ordered sequence of headers. Duplicate fields are
// permitted; insertion order is the wire order.
type HeaderList []Header

// Get returns the value of the first header whose field matches name,
// ASCII case-insensitively, and whether one was found.
func (hl HeaderList) Get(name string) (string, bool) {
	for _, h := range hl {
		if h.EqualField(name) {
			return h.Value, true
		}
	}
	return "", false
}

func (hl HeaderList) valid() bool {
	for _, h := range hl {
		if !h.valid() {
			return false
		}
	}
	return true
}

// size returns the number of wire bytes hl contributes, including one
// CRLF per header but excluding the header block's terminating blank
// line.
func (hl HeaderList) size() int {
	n := 0
	for _, h := range hl {
		n += len(h.Field) + len(strColonSpace) + len(h.Value) + len(strCRLF)
	}
	return n
}

func (hl HeaderList) writeTo(b []byte) []byte {
	for _, h := range hl {
		b = append(b, h.Field...)
		b = append(b, strColonSpace...)
		b = append(b, h.Value...)
		b = append(b, strCRLF...)
	}
	return b
}
