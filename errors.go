package httpclient

import "errors"

// Sentinel errors returned by the core parser, formatter and client.
// Callers should match on these with errors.Is rather than matching
// error strings.
var (
	// ErrMalformedStatusLine is returned when the status line cannot be
	// tokenized into an HTTP version and a three-digit status code.
	ErrMalformedStatusLine = errors.New("httpclient: malformed status line")

	// ErrUnsupportedHTTPVersion is returned when the status line names an
	// HTTP version other than HTTP/1.0 or HTTP/1.1.
	ErrUnsupportedHTTPVersion = errors.New("httpclient: unsupported HTTP version")

	// ErrHeaderLineTooLong is returned when a status or header line does
	// not fit in the caller-supplied header buffer.
	ErrHeaderLineTooLong = errors.New("httpclient: header line exceeds buffer capacity")

	// ErrMissingContentLength is returned when the header block completes
	// without a Content-Length header. Chunked transfer-encoding is out
	// of scope (see Non-goals); a response relying on it is rejected the
	// same way a response missing Content-Length entirely is rejected.
	ErrMissingContentLength = errors.New("httpclient: response is missing Content-Length")

	// ErrMalformedHeaderLine is returned when a header line has no ':'
	// separator.
	ErrMalformedHeaderLine = errors.New("httpclient: malformed header line")

	// ErrMalformedContentLength is returned when a Content-Length header
	// value is not a valid non-negative integer.
	ErrMalformedContentLength = errors.New("httpclient: malformed Content-Length value")

	// ErrNoActiveResponse is returned when the transport reports
	// DataReceived while no request/response exchange is in flight.
	ErrNoActiveResponse = errors.New("httpclient: data received with no active response")

	// ErrOverlappingRequest is returned when a verb method is called
	// while a previous request on the same client has not yet completed.
	ErrOverlappingRequest = errors.New("httpclient: request already in flight on this client")

	// ErrInvalidHeader is returned when a caller-supplied header field or
	// value contains bytes that are not permitted on the wire (control
	// characters, bare CR/LF).
	ErrInvalidHeader = errors.New("httpclient: invalid header field or value")

	// ErrClientClosed is returned when a verb, AckReceived or Close is
	// invoked on a client whose ClosingConnection callback has already
	// run. Calling Close, or the client aborting the connection, does not
	// by itself mark the client closed; that happens when the transport
	// delivers ClosingConnection.
	ErrClientClosed = errors.New("httpclient: client is closed")

	// ErrUnsupportedContentEncoding is returned by the optional
	// content-decoding layer when AcceptEncoding is enabled but the
	// response names an encoding other than gzip or br.
	ErrUnsupportedContentEncoding = errors.New("httpclient: unsupported Content-Encoding")
)

// FailReason enumerates the ways a connection attempt made on behalf of
// a queued Factory can fail, mirroring the transport-level reasons a
// Conn factory may report to the ConnectorImpl.
type FailReason int

const (
	// FailRefused means the remote host actively refused the connection.
	FailRefused FailReason = iota
	// FailAllocation means the transport could not allocate a connection
	// (e.g. all connection slots are in use).
	FailAllocation
	// FailNameLookup means hostname resolution failed.
	FailNameLookup
)

func (r FailReason) String() string {
	switch r {
	case FailRefused:
		return "refused"
	case FailAllocation:
		return "connectionAllocationFailed"
	case FailNameLookup:
		return "nameLookupFailed"
	default:
		return "unknown"
	}
}
