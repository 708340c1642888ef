package pool

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorWriter struct {
	err error
}

func (w *errorWriter) Write([]byte) (int, error) {
	return 0, w.err
}

// =============================================================================
// ByteBuffer Tests
// =============================================================================

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, cap(bb.B), "new buffer should have specified capacity")
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)

	n, err := bb.Write([]byte("1810"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	bb.MustWrite([]byte{0x02, 0x20})
	assert.Equal(t, []byte{'1', '8', '1', '0', 0x02, 0x20}, bb.Bytes())
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte("ab"))

	tail := bb.ExtendOrGrow(8)
	require.Len(t, tail, 8)
	copy(tail, "12345678")

	assert.Equal(t, "ab12345678", string(bb.Bytes()))
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)
	testData := []byte("frame data that must be preserved")
	bb.MustWrite(testData)

	bb.Grow(ArchiveBufferDefaultSize * 2)

	assert.Equal(t, testData, bb.B, "data should be preserved after growth")
	assert.GreaterOrEqual(t, cap(bb.B), len(testData)+ArchiveBufferDefaultSize*2)
}

func TestByteBuffer_Grow_SufficientCapacity(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)
	originalCap := cap(bb.B)

	bb.Grow(100)

	assert.Equal(t, originalCap, cap(bb.B), "should not reallocate when capacity is sufficient")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)
	bb.MustWrite([]byte("test data"))

	var buf bytes.Buffer
	n, err := bb.WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "test data", buf.String())
}

func TestByteBuffer_WriteTo_ErrorPropagation(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)
	bb.MustWrite([]byte("test"))

	n, err := bb.WriteTo(&errorWriter{err: io.ErrShortWrite})

	assert.Equal(t, io.ErrShortWrite, err)
	assert.Equal(t, int64(0), n)
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestGetArchiveBuffer(t *testing.T) {
	bb := GetArchiveBuffer()
	defer PutArchiveBuffer(bb)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "pooled buffer should be empty")
	assert.GreaterOrEqual(t, cap(bb.B), ArchiveBufferDefaultSize)
}

func TestPutArchiveBuffer_NilBuffer(t *testing.T) {
	assert.NotPanics(t, func() {
		PutArchiveBuffer(nil)
	})
}

func TestByteBufferPool_ResetsOnPut(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)
	bb := p.Get()
	bb.MustWrite([]byte("sensitive"))

	p.Put(bb)

	assert.Equal(t, 0, bb.Len(), "Put should reset the buffer")
}

func TestByteBufferPool_MaxThreshold_Discard(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10000)
	bb.MustWrite([]byte("x"))
	p.Put(bb)

	assert.Equal(t, 1, bb.Len(), "oversized buffer is dropped without reset")
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	const numGoroutines = 50
	const numIterations = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				bb := GetArchiveBuffer()
				bb.MustWrite([]byte("data"))
				assert.Equal(t, 4, bb.Len())
				PutArchiveBuffer(bb)
			}
		}()
	}

	wg.Wait()
}
