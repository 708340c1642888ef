package buffer

import (
	"fmt"
	"io"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/arloliu/ifsf/internal/pool"
)

// State is the lifecycle phase of a SegmentBuffer.
type State uint8

const (
	StateEmpty    State = iota // StateEmpty is a new or reset buffer with no segments.
	StateWriting               // StateWriting accepts appends only.
	StateReading               // StateReading accepts cursor reads only.
	StateReleased              // StateReleased has returned its segments to the pool.
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateWriting:
		return "Writing"
	case StateReading:
		return "Reading"
	case StateReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// Pool supplies segment storage. Get must return a block with len >= size and
// Put receives every block back exactly once.
type Pool interface {
	Get(size int) []byte
	Put(b []byte)
}

type segment struct {
	data []byte // full block, len(data) is the segment capacity
	n    int    // filled bytes
	next *segment
}

// SegmentBuffer is an append-only chain of pooled segments with an independent
// read cursor activated by BeginRead.
//
// A SegmentBuffer backs a single encode or decode pass and must not be used
// from multiple goroutines.
type SegmentBuffer struct {
	pool              Pool
	segmentSize       int
	crossSegmentReads bool

	head   *segment
	tail   *segment
	length int
	state  State
	reader SegmentReader
}

var (
	_ Writer        = (*SegmentBuffer)(nil)
	_ io.Writer     = (*SegmentBuffer)(nil)
	_ io.ByteWriter = (*SegmentBuffer)(nil)
	_ io.WriterTo   = (*SegmentBuffer)(nil)
)

// Option configures a SegmentBuffer.
type Option = options.Option[*SegmentBuffer]

// WithSegmentSize sets the minimum capacity of newly linked segments.
func WithSegmentSize(n int) Option {
	return options.New(func(b *SegmentBuffer) error {
		if n <= 0 {
			return fmt.Errorf("invalid segment size: %d", n)
		}
		b.segmentSize = n

		return nil
	})
}

// WithPool sets the pool segments are taken from and returned to.
func WithPool(p Pool) Option {
	return options.New(func(b *SegmentBuffer) error {
		if p == nil {
			return fmt.Errorf("nil segment pool")
		}
		b.pool = p

		return nil
	})
}

// WithCrossSegmentReads lets ReadBytes copy a run that straddles segments instead
// of failing with errs.ErrCrossSegment.
func WithCrossSegmentReads() Option {
	return options.NoError(func(b *SegmentBuffer) {
		b.crossSegmentReads = true
	})
}

// New creates an empty SegmentBuffer.
//
// Defaults: 64-byte segments from the process wide segment pool, and borrowed
// reads restricted to a single segment.
func New(opts ...Option) (*SegmentBuffer, error) {
	b := &SegmentBuffer{
		pool:        pool.DefaultSegments(),
		segmentSize: pool.DefaultSegmentSize,
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}
	b.reader.buf = b

	return b, nil
}

// State returns the current lifecycle phase.
func (b *SegmentBuffer) State() State {
	return b.state
}

// Len returns the number of bytes written.
func (b *SegmentBuffer) Len() int {
	return b.length
}

// Segments returns the number of segments in the chain.
func (b *SegmentBuffer) Segments() int {
	n := 0
	for s := b.head; s != nil; s = s.next {
		n++
	}

	return n
}

func (b *SegmentBuffer) beginWrite() error {
	switch b.state {
	case StateEmpty:
		b.state = StateWriting
		return nil
	case StateWriting:
		return nil
	default:
		return fmt.Errorf("%w: write in %s state", errs.ErrBufferState, b.state)
	}
}

func (b *SegmentBuffer) link(minSize int) {
	size := b.segmentSize
	if minSize > size {
		size = minSize
	}

	// the pool may round up to its size class; capacity is kept for Put
	seg := &segment{data: b.pool.Get(size)[:size]}
	if b.tail == nil {
		b.head = seg
	} else {
		b.tail.next = seg
	}
	b.tail = seg
}

// WriteSpan returns exactly n contiguous writable bytes, linking a new segment of
// at least max(segment size, n) bytes when the tail cannot hold them.
func (b *SegmentBuffer) WriteSpan(n int) ([]byte, error) {
	if err := b.beginWrite(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative span %d", errs.ErrBounds, n)
	}

	if b.tail == nil || len(b.tail.data)-b.tail.n < n {
		b.link(n)
	}

	start := b.tail.n
	b.tail.n += n
	b.length += n

	return b.tail.data[start:b.tail.n:b.tail.n], nil
}

// TryGetAvailable returns up to n writable bytes from the tail segment, linking a
// new segment first when the tail is full. The returned span is already counted
// as written.
func (b *SegmentBuffer) TryGetAvailable(n int) ([]byte, error) {
	if err := b.beginWrite(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	if b.tail == nil || b.tail.n == len(b.tail.data) {
		b.link(0)
	}

	avail := len(b.tail.data) - b.tail.n
	if n > avail {
		n = avail
	}

	start := b.tail.n
	b.tail.n += n
	b.length += n

	return b.tail.data[start:b.tail.n:b.tail.n], nil
}

// Write appends p, spreading it over as many segments as needed.
func (b *SegmentBuffer) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		span, err := b.TryGetAvailable(len(p) - written)
		if err != nil {
			return written, err
		}
		written += copy(span, p[written:])
	}

	return written, nil
}

// WriteByte appends a single byte.
func (b *SegmentBuffer) WriteByte(c byte) error {
	span, err := b.TryGetAvailable(1)
	if err != nil {
		return err
	}
	span[0] = c

	return nil
}

// Patch overwrites len(p) already written bytes starting at offset. It is the
// only operation that moves backwards over written data and is used to fill in
// length placeholders once the framed content size is known.
func (b *SegmentBuffer) Patch(offset int, p []byte) error {
	if b.state != StateWriting {
		return fmt.Errorf("%w: patch in %s state", errs.ErrBufferState, b.state)
	}
	if offset < 0 || offset+len(p) > b.length {
		return fmt.Errorf("%w: patch [%d, %d) beyond %d written bytes", errs.ErrBounds, offset, offset+len(p), b.length)
	}
	if len(p) == 0 {
		return nil
	}

	seg := b.head
	for offset >= seg.n {
		offset -= seg.n
		seg = seg.next
	}

	for len(p) > 0 {
		n := copy(seg.data[offset:seg.n], p)
		p = p[n:]
		offset = 0
		seg = seg.next
	}

	return nil
}

// BeginRead ends the write phase and positions the read cursor at the first byte.
// Calling it again while reading rewinds the cursor.
func (b *SegmentBuffer) BeginRead() error {
	switch b.state {
	case StateEmpty, StateWriting, StateReading:
		b.state = StateReading
		b.reader.seg = b.head
		b.reader.off = 0
		b.reader.pos = 0

		return nil
	default:
		return fmt.Errorf("%w: begin-read in %s state", errs.ErrBufferState, b.state)
	}
}

// Reader returns the buffer's read cursor. Reads fail with errs.ErrBounds until
// BeginRead has been called.
func (b *SegmentBuffer) Reader() *SegmentReader {
	return &b.reader
}

// Bytes returns a contiguous copy of everything written.
func (b *SegmentBuffer) Bytes() ([]byte, error) {
	if b.state == StateReleased {
		return nil, fmt.Errorf("%w: to-bytes on released buffer", errs.ErrBufferState)
	}

	out := make([]byte, 0, b.length)
	for s := b.head; s != nil; s = s.next {
		out = append(out, s.data[:s.n]...)
	}

	return out, nil
}

// WriteTo streams every segment to w without materializing the buffer.
func (b *SegmentBuffer) WriteTo(w io.Writer) (int64, error) {
	if b.state == StateReleased {
		return 0, fmt.Errorf("%w: write-to on released buffer", errs.ErrBufferState)
	}

	var total int64
	for s := b.head; s != nil; s = s.next {
		if s.n == 0 {
			continue
		}
		n, err := w.Write(s.data[:s.n])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Reset returns all segments to the pool and makes the buffer Empty again, ready
// for a new write phase.
func (b *SegmentBuffer) Reset() {
	if b.state == StateReleased {
		return
	}
	b.freeSegments()
	b.state = StateEmpty
}

// Release returns all segments to the pool. The buffer is unusable afterwards;
// further calls are no-ops.
func (b *SegmentBuffer) Release() {
	if b.state == StateReleased {
		return
	}
	b.freeSegments()
	b.state = StateReleased
}

func (b *SegmentBuffer) freeSegments() {
	seg := b.head
	b.head, b.tail = nil, nil
	b.length = 0
	b.reader.seg, b.reader.off, b.reader.pos = nil, 0, 0

	for seg != nil {
		next := seg.next
		b.pool.Put(seg.data)
		seg.data, seg.next = nil, nil
		seg = next
	}
}

// SegmentReader is the read cursor of a SegmentBuffer.
type SegmentReader struct {
	buf *SegmentBuffer
	seg *segment
	off int
	pos int
}

var _ Cursor = (*SegmentReader)(nil)

func (r *SegmentReader) ready() error {
	switch r.buf.state {
	case StateReading:
		return nil
	case StateReleased:
		return fmt.Errorf("%w: read on released buffer", errs.ErrBufferState)
	default:
		return fmt.Errorf("%w: begin-read not called", errs.ErrBounds)
	}
}

// settle skips exhausted segments so that r.seg, if not nil, has unread bytes.
func (r *SegmentReader) settle() {
	for r.seg != nil && r.off >= r.seg.n {
		r.seg = r.seg.next
		r.off = 0
	}
}

// ReadByte implements io.ByteReader, moving to the next segment as needed.
func (r *SegmentReader) ReadByte() (byte, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	r.settle()
	if r.seg == nil {
		return 0, boundsError(1, 0)
	}

	c := r.seg.data[r.off]
	r.off++
	r.pos++

	return c, nil
}

// PeekByte returns the next byte without consuming it.
func (r *SegmentReader) PeekByte() (byte, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	r.settle()
	if r.seg == nil {
		return 0, boundsError(1, 0)
	}

	return r.seg.data[r.off], nil
}

// ReadBytes consumes n bytes. The result aliases segment storage when the run lies
// in one segment. A run straddling segments fails with errs.ErrCrossSegment unless
// the buffer was created WithCrossSegmentReads, in which case it is copied.
func (r *SegmentReader) ReadBytes(n int) ([]byte, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if n < 0 || n > r.Remaining() {
		return nil, boundsError(n, r.Remaining())
	}
	if n == 0 {
		return []byte{}, nil
	}

	r.settle()
	if avail := r.seg.n - r.off; n <= avail {
		b := r.seg.data[r.off : r.off+n : r.off+n]
		r.off += n
		r.pos += n

		return b, nil
	}

	if !r.buf.crossSegmentReads {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, %d left in segment",
			errs.ErrCrossSegment, n, r.pos, r.seg.n-r.off)
	}

	out := make([]byte, n)
	for copied := 0; copied < n; {
		r.settle()
		c := copy(out[copied:], r.seg.data[r.off:r.seg.n])
		copied += c
		r.off += c
		r.pos += c
	}

	return out, nil
}

// Position returns the number of bytes consumed since BeginRead.
func (r *SegmentReader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *SegmentReader) Remaining() int {
	if r.buf.state != StateReading {
		return 0
	}

	return r.buf.length - r.pos
}
