package buffer

import (
	"fmt"
	"io"

	"github.com/arloliu/ifsf/errs"
)

// Cursor is a forward-only reader over a sequence of bytes.
type Cursor interface {
	io.ByteReader

	// PeekByte returns the next byte without consuming it.
	PeekByte() (byte, error)

	// ReadBytes consumes n bytes and returns them. The returned slice may alias
	// the cursor's storage and is only valid while that storage is.
	ReadBytes(n int) ([]byte, error)

	// Position returns the number of bytes consumed from the start of the
	// underlying storage.
	Position() int

	// Remaining returns the number of bytes left to read.
	Remaining() int
}

// Writer is the append-side view of a buffer used by the field encoders.
type Writer interface {
	// WriteSpan returns exactly n contiguous writable bytes.
	WriteSpan(n int) ([]byte, error)

	// TryGetAvailable returns between 1 and n writable bytes, whatever is left
	// contiguous in the current tail. Callers loop until their field is written.
	TryGetAvailable(n int) ([]byte, error)

	// Patch overwrites previously written bytes starting at offset.
	Patch(offset int, p []byte) error

	// Len returns the number of bytes written so far.
	Len() int
}

func boundsError(want, have int) error {
	return fmt.Errorf("%w: need %d bytes, %d remaining", errs.ErrBounds, want, have)
}

// SliceCursor reads from a borrowed byte slice.
type SliceCursor struct {
	data []byte
	pos  int
}

var _ Cursor = (*SliceCursor)(nil)

// NewSliceCursor creates a cursor positioned at the start of data.
func NewSliceCursor(data []byte) *SliceCursor {
	return &SliceCursor{data: data}
}

// ReadByte implements io.ByteReader.
func (c *SliceCursor) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, boundsError(1, 0)
	}
	b := c.data[c.pos]
	c.pos++

	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *SliceCursor) PeekByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, boundsError(1, 0)
	}

	return c.data[c.pos], nil
}

// ReadBytes consumes n bytes and returns a view into the underlying slice.
func (c *SliceCursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, boundsError(n, len(c.data)-c.pos)
	}
	b := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n

	return b, nil
}

// Position returns the number of bytes consumed.
func (c *SliceCursor) Position() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *SliceCursor) Remaining() int {
	return len(c.data) - c.pos
}

// IsEnd reports whether every byte has been consumed.
func (c *SliceCursor) IsEnd() bool {
	return c.pos >= len(c.data)
}

// LimitedCursor restricts another cursor to a fixed byte budget.
//
// Reads that would go past the budget fail with errs.ErrBounds even if the
// parent cursor has more data. Position reports the parent's position so error
// offsets stay absolute.
type LimitedCursor struct {
	parent Cursor
	left   int
}

var _ Cursor = (*LimitedCursor)(nil)

// Limit returns a cursor that reads at most n bytes from c.
func Limit(c Cursor, n int) (*LimitedCursor, error) {
	if n < 0 || n > c.Remaining() {
		return nil, boundsError(n, c.Remaining())
	}

	return &LimitedCursor{parent: c, left: n}, nil
}

// ReadByte implements io.ByteReader.
func (c *LimitedCursor) ReadByte() (byte, error) {
	if c.left <= 0 {
		return 0, boundsError(1, 0)
	}
	b, err := c.parent.ReadByte()
	if err != nil {
		return 0, err
	}
	c.left--

	return b, nil
}

// PeekByte returns the next byte within the budget without consuming it.
func (c *LimitedCursor) PeekByte() (byte, error) {
	if c.left <= 0 {
		return 0, boundsError(1, 0)
	}

	return c.parent.PeekByte()
}

// ReadBytes consumes n bytes within the budget.
func (c *LimitedCursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.left {
		return nil, boundsError(n, c.left)
	}
	b, err := c.parent.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	c.left -= n

	return b, nil
}

// Position returns the parent cursor's position.
func (c *LimitedCursor) Position() int {
	return c.parent.Position()
}

// Remaining returns the unread part of the budget.
func (c *LimitedCursor) Remaining() int {
	return c.left
}
