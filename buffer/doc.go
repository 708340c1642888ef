// Package buffer implements the segmented, pool-backed byte buffer that IFSF
// messages are written into and read back from, and the sequential cursors the
// field codec decodes from.
//
// # Segment Buffer
//
// A SegmentBuffer is a singly linked chain of fixed-capacity segments taken from
// a pool. Writers either request a contiguous span with WriteSpan, or fill a field
// piecewise with TryGetAvailable, which returns whatever room is left in the tail
// segment. A single field may therefore straddle two or more segments:
//
//	buf, _ := buffer.New(buffer.WithSegmentSize(64))
//	defer buf.Release()
//
//	for rest := []byte("000000041357"); len(rest) > 0; {
//	    span, _ := buf.TryGetAvailable(len(rest))
//	    rest = rest[copy(span, rest):]
//	}
//
// # Lifecycle
//
// A buffer moves through Empty, Writing, Reading and Released. BeginRead flips it
// into the read phase; any write afterwards fails with errs.ErrBufferState.
// Release returns every segment to its pool exactly once and is idempotent.
//
// # Cursors
//
// All decoders read through the Cursor interface, implemented by:
//   - SegmentReader: the read cursor over a SegmentBuffer chain
//   - SliceCursor: a cursor over a borrowed, contiguous byte slice
//   - LimitedCursor: a budget-bounded view of another cursor, used for nested
//     composites so their bytes are never copied out
//
// Scalar reads cross segment boundaries transparently. Borrowed byte runs
// (ReadBytes) on a SegmentReader fail with errs.ErrCrossSegment when they straddle
// a boundary, unless the buffer was created with WithCrossSegmentReads, in which
// case the run is copied out.
package buffer
