/*
Package httpclient provides an embedded-friendly HTTP/1.1 client core.

httpclient provides the following features:

	* A streaming request formatter that computes its own wire size
	  before writing a single byte, so the caller can reserve an exact
	  send buffer up front.
	* An incremental status-line and header parser that runs correctly
	  no matter how the underlying transport chops a response into
	  reads, re-entering across DataReceived calls without re-parsing
	  bytes it has already consumed.
	* A per-connection client state machine driven entirely by
	  transport callbacks and observer verbs, with no internal locking
	  and no background goroutines of its own.
	* A connector that queues pending client factories and multiplexes
	  them onto a single reusable connection slot, so only one connect
	  attempt and one client are ever active at a time.

The core package never dials a socket itself; it is driven by anything
implementing the Conn contract in transport.go. See the nettransport
subpackage for a concrete implementation over net.Conn, and cmd/httpprobe
for a runnable example.

httpclient deliberately does not support HTTP/2, chunked
transfer-encoding, response pipelining on a single client, request
bodies larger than one send buffer, or dynamic allocation of header
storage. All of these are explicit non-goals of the embedded target this
package was designed for.
*/
package httpclient
