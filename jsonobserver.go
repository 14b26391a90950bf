package httpclient

import (
	"bytes"
	"errors"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
)

// ErrUnexpectedContentType is reported by JSONObserver when a response
// claims a Content-Type other than application/json.
var ErrUnexpectedContentType = errors.New("httpclient: response content-type is not application/json")

// ErrUnexpectedStatus is reported by JSONObserver when a response's
// status code is not 200.
var ErrUnexpectedStatus = errors.New("httpclient: response status is not 200")

// JSONObserver is a ready-to-use Observer that GETs one path and decodes
// the response body as JSON into a caller-supplied target. It mirrors
// the teacher's JSON client: Connected kicks off the request,
// StatusAvailable/HeaderAvailable validate the response as it arrives,
// and the body is accumulated and decoded once complete.
//
// Unlike the teacher, which feeds bytes incrementally into a streaming
// JSON parser as they arrive, JSONObserver accumulates the whole body
// and decodes it once at BodyComplete: github.com/goccy/go-json, like
// the standard library decoder it replaces, is not designed to resume
// across a reader that returns (0, nil) for "nothing buffered yet" the
// way BodyReader does.
type JSONObserver struct {
	// Path is the request target passed to Get on Connected.
	Path string
	// Headers are additional request headers sent with the GET.
	Headers HeaderList
	// OnDone is called exactly once: with a nil error once target has
	// been populated from a successful response, or with a non-nil
	// error if the exchange failed (bad status, wrong content type,
	// malformed JSON, or the connection closing before completion).
	OnDone func(err error)

	target interface{}

	client    *ClientImpl
	body      bytes.Buffer
	failed    error
	completed bool
}

// NewJSONObserver builds a JSONObserver that requests path and decodes
// the response into target, which must be a pointer as accepted by
// json.Unmarshal.
func NewJSONObserver(path string, headers HeaderList, target interface{}, onDone func(err error)) *JSONObserver {
	return &JSONObserver{Path: path, Headers: headers, target: target, OnDone: onDone}
}

// Attach implements Observer.
func (o *JSONObserver) Attach(client *ClientImpl) { o.client = client }

// Detach implements Observer.
func (o *JSONObserver) Detach() { o.client = nil }

// Connected implements Observer: it issues the GET request.
func (o *JSONObserver) Connected() {
	if err := o.client.Get(o.Path, o.Headers); err != nil {
		o.fail(err)
	}
}

// ClosingConnection implements Observer.
func (o *JSONObserver) ClosingConnection() {
	if !o.completed {
		o.finish(o.failOrDefault())
	}
}

func (o *JSONObserver) failOrDefault() error {
	if o.failed != nil {
		return o.failed
	}
	return io.ErrUnexpectedEOF
}

// StatusAvailable implements Observer.
func (o *JSONObserver) StatusAvailable(statusCode int) {
	if statusCode != 200 {
		o.fail(ErrUnexpectedStatus)
	}
}

// HeaderAvailable implements Observer.
func (o *JSONObserver) HeaderAvailable(h Header) {
	if h.EqualField(strContentType) && !strings.Contains(strings.ToLower(h.Value), "application/json") {
		o.fail(ErrUnexpectedContentType)
	}
}

// BodyAvailable implements Observer: it drains whatever is currently
// available from r into the accumulator, then immediately acks so the
// client advances to the next round (or to BodyComplete).
func (o *JSONObserver) BodyAvailable(r io.Reader) {
	if o.failed == nil {
		drainRound(&o.body, r)
	}
	_ = o.client.AckReceived()
}

// BodyComplete implements Observer.
func (o *JSONObserver) BodyComplete() {
	if o.failed != nil {
		o.finish(o.failed)
		return
	}
	o.finish(gojson.Unmarshal(o.body.Bytes(), o.target))
}

func (o *JSONObserver) fail(err error) {
	if o.failed == nil {
		o.failed = err
	}
}

func (o *JSONObserver) finish(err error) {
	o.completed = true
	o.body.Reset()
	if o.OnDone != nil {
		o.OnDone(err)
	}
}

// drainRound copies everything currently available from r into dst,
// stopping at the first zero-byte read or error — never looping past a
// (0, nil) "nothing buffered yet" result, since r may be a BodyReader
// that reports exactly that instead of blocking for more network data.
func drainRound(dst *bytes.Buffer, r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			dst.Write(buf[:n])
		}
		if n == 0 || err != nil {
			return
		}
	}
}
