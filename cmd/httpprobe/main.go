// Command httpprobe issues a single HTTP/1.1 request through the
// httpclient core over nettransport and prints the response status,
// headers, and body to stdout. It exists to exercise the library end to
// end without writing a Go program first, the same role a bundled
// curl-alike plays for a teacher HTTP package.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/embeddedgo/httpclient"
	"github.com/embeddedgo/httpclient/nettransport"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "httpprobe:", err)
		os.Exit(1)
	}
}

type probeOptions struct {
	host       string
	port       uint16
	path       string
	method     string
	body       string
	headers    []string
	decompress bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &probeOptions{}
	cmd := &cobra.Command{
		Use:   "httpprobe",
		Short: "Issue one HTTP/1.1 request and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "target hostname (required)")
	cmd.Flags().Uint16Var(&opts.port, "port", 80, "target port")
	cmd.Flags().StringVar(&opts.path, "path", "/", "request target")
	cmd.Flags().StringVar(&opts.method, "method", "GET", "HTTP method")
	cmd.Flags().StringVar(&opts.body, "data", "", "request body, for POST/PUT/PATCH/DELETE")
	cmd.Flags().StringArrayVar(&opts.headers, "header", nil, `additional "Field: Value" header, repeatable`)
	cmd.Flags().BoolVar(&opts.decompress, "decompress", false, "transparently decode a gzip or br response body")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "deadline for the whole exchange")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func runProbe(opts *probeOptions) error {
	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	observer := &probeObserver{
		verb:           strings.ToUpper(opts.method),
		path:           opts.path,
		body:           opts.body,
		headers:        headers,
		acceptEncoding: opts.decompress,
		done:           make(chan error, 1),
	}
	factory := &probeFactory{hostname: opts.host, port: opts.port, observer: observer}

	connector := httpclient.NewConnectorImpl(nettransport.NewDialer(nil), 4096)
	connector.Connect(factory)

	select {
	case err := <-observer.done:
		return err
	case <-time.After(opts.timeout):
		return fmt.Errorf("timed out after %s", opts.timeout)
	}
}

func parseHeaders(raw []string) (httpclient.HeaderList, error) {
	var hl httpclient.HeaderList
	for _, r := range raw {
		field, value, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf(`malformed --header %q, want "Field: Value"`, r)
		}
		hl = append(hl, httpclient.Header{Field: strings.TrimSpace(field), Value: strings.TrimSpace(value)})
	}
	return hl, nil
}

// probeFactory is a single-use httpclient.Factory: it always hands back
// the one probeObserver it was built with.
type probeFactory struct {
	hostname string
	port     uint16
	observer *probeObserver
}

func (f *probeFactory) Hostname() string { return f.hostname }
func (f *probeFactory) Port() uint16     { return f.port }

func (f *probeFactory) ConnectionEstablished(sink func(httpclient.Observer)) {
	sink(f.observer)
}

func (f *probeFactory) ConnectionFailed(reason httpclient.FailReason) {
	f.observer.signal(fmt.Errorf("connection failed: %s", reason))
}

// probeObserver drives one request/response exchange and prints the
// response as it arrives.
type probeObserver struct {
	verb           string
	path           string
	body           string
	headers        httpclient.HeaderList
	acceptEncoding bool

	client *httpclient.ClientImpl
	done   chan error
}

func (o *probeObserver) Attach(client *httpclient.ClientImpl) {
	o.client = client
	o.client.AcceptEncoding = o.acceptEncoding
}

func (o *probeObserver) Detach() { o.client = nil }

func (o *probeObserver) Connected() {
	var err error
	switch o.verb {
	case "GET":
		err = o.client.Get(o.path, o.headers)
	case "HEAD":
		err = o.client.Head(o.path, o.headers)
	case "CONNECT":
		err = o.client.Connect(o.path, o.headers)
	case "OPTIONS":
		err = o.client.Options(o.path, o.headers)
	case "POST":
		err = o.client.Post(o.path, o.body, o.headers)
	case "PUT":
		err = o.client.Put(o.path, o.body, o.headers)
	case "PATCH":
		err = o.client.Patch(o.path, o.body, o.headers)
	case "DELETE":
		err = o.client.Delete(o.path, o.body, o.headers)
	default:
		err = fmt.Errorf("unknown method %q", o.verb)
	}
	if err != nil {
		o.signal(err)
	}
}

func (o *probeObserver) ClosingConnection() {
	o.signal(nil)
}

func (o *probeObserver) StatusAvailable(statusCode int) {
	fmt.Printf("HTTP status: %d\n", statusCode)
}

func (o *probeObserver) HeaderAvailable(h httpclient.Header) {
	fmt.Printf("%s: %s\n", h.Field, h.Value)
}

func (o *probeObserver) BodyAvailable(r io.Reader) {
	fmt.Println()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if n == 0 || err != nil {
			break
		}
	}
	_ = o.client.AckReceived()
}

func (o *probeObserver) BodyComplete() {
	fmt.Println()
	o.signal(nil)
}

func (o *probeObserver) signal(err error) {
	select {
	case o.done <- err:
	default:
	}
}
