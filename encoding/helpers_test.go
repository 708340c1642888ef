package encoding

import (
	"testing"

	"github.com/arloliu/ifsf/buffer"
	"github.com/stretchr/testify/require"
)

// newBuffer returns a buffer with tiny segments so that most fields straddle at
// least one boundary.
func newBuffer(t *testing.T, segmentSize int) *buffer.SegmentBuffer {
	t.Helper()

	buf, err := buffer.New(buffer.WithSegmentSize(segmentSize), buffer.WithCrossSegmentReads())
	require.NoError(t, err)
	t.Cleanup(buf.Release)

	return buf
}

func wireOf(t *testing.T, buf *buffer.SegmentBuffer) string {
	t.Helper()

	out, err := buf.Bytes()
	require.NoError(t, err)

	return string(out)
}

func readerOf(t *testing.T, buf *buffer.SegmentBuffer) *buffer.SegmentReader {
	t.Helper()

	require.NoError(t, buf.BeginRead())

	return buf.Reader()
}
