package httpclient

import "io"

// BodyReader is a length-limited, byte-counting wrapper around the
// connection's receive stream. It reports end-of-stream only once its
// Content-Length cap has been fully read; a transient lack of buffered
// bytes before that point yields (0, nil), not io.EOF, since more bytes
// may still arrive in a later DataReceived event.
type BodyReader struct {
	r         io.Reader
	remaining uint32
	totalRead uint32
}

func newBodyReader(r io.Reader, contentLength uint32) *BodyReader {
	return &BodyReader{r: r, remaining: contentLength}
}

// Read implements io.Reader. Reads are passed through to the underlying
// connection stream unchanged, capped so they never cross the
// Content-Length boundary.
func (b *BodyReader) Read(p []byte) (int, error) {
	if b.remaining == 0 {
		return 0, io.EOF
	}
	if uint32(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.totalRead += uint32(n)
	b.remaining -= uint32(n)
	if err == io.EOF {
		// The underlying reader only has this round's buffered bytes;
		// running out of those is not the same as the body being done.
		err = nil
	}
	return n, err
}

// TotalRead returns the number of bytes read since construction.
func (b *BodyReader) TotalRead() uint32 { return b.totalRead }

// Remaining returns the number of bytes left before end-of-stream.
func (b *BodyReader) Remaining() uint32 { return b.remaining }
