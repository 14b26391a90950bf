package httpclient

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// decodeContentEncoding fully decompresses data according to encoding
// ("gzip" or "br"). It is only ever called once a response body has
// been accumulated in full (see ClientImpl.AcceptEncoding), because
// both decoders expect a blocking reader that only signals io.EOF at
// the true end of the stream — a guarantee the round-by-round
// BodyReader cannot give while more network data may still be coming.
func decodeContentEncoding(encoding string, data []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	case "", "identity":
		return data, nil
	default:
		return nil, ErrUnsupportedContentEncoding
	}
}

// drainAvailable copies every byte currently available from r into dst,
// without blocking for more: it stops the moment r reports either true
// end-of-stream or a transient "nothing buffered right now" (n == 0,
// err == nil), which is exactly the contract BodyReader.Read provides.
func drainAvailable(dst *bytes.Buffer, r *BodyReader) (done bool, err error) {
	buf := make([]byte, 4096)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			dst.Write(buf[:n])
		}
		if rerr != nil {
			return true, nil
		}
		if n == 0 {
			return false, nil
		}
	}
}
