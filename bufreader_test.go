package httpclient

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedRewindReaderReadAndRewind(t *testing.T) {
	r := NewBufferedRewindReader([]byte("hello world"))

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	marker := r.SaveMarker()
	assert.Equal(t, 5, marker)

	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, " worl", string(buf[:n]))

	r.Rewind(marker)
	assert.Equal(t, []byte(" world"), r.Remaining())
}

func TestBufferedRewindReaderAvailableAndEOF(t *testing.T) {
	r := NewBufferedRewindReader([]byte("ab"))
	assert.Equal(t, 2, r.Available())

	buf := make([]byte, 2)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, r.Available())

	_, err = r.Read(buf)
	assert.Equal(t, io.EOF, err)
}
