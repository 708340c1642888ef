package hostsim

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/schema"
)

// FrameHandler receives one complete body, positioned for reading.
//
// The buffer is reset when the handler returns and must not be retained.
type FrameHandler func(mti string, body *buffer.SegmentBuffer) error

// Framer splits a byte stream into message bodies.
//
// The length header and MTI are taken from the stream as they arrive and the
// body itself is written into a segment buffer, so a frame split over any
// number of reads is decoded without being joined first. A Framer is not safe
// for concurrent use.
type Framer struct {
	body   *buffer.SegmentBuffer
	header [message.HeaderLength]byte
	hn     int
	mti    [schema.MTILength]byte
	mn     int
	need   int // body bytes still to come once the header is complete
	frames int
}

// NewFramer returns a Framer whose body buffer uses a's segment settings.
func NewFramer(a *message.Assembler) (*Framer, error) {
	body, err := a.NewBuffer(buffer.WithCrossSegmentReads())
	if err != nil {
		return nil, err
	}

	return &Framer{body: body}, nil
}

// Feed consumes data, calling fn for every frame it completes.
//
// Errors from the header or from fn are returned as is; the stream position
// is lost afterwards and the connection should be closed.
func (f *Framer) Feed(data []byte, fn FrameHandler) error {
	for len(data) > 0 {
		if f.hn < len(f.header) {
			n := copy(f.header[f.hn:], data)
			f.hn += n
			data = data[n:]
			if f.hn < len(f.header) {
				return nil
			}
			if err := f.parseHeader(); err != nil {
				return err
			}

			continue
		}

		n := min(f.need, len(data))
		if f.mn < len(f.mti) {
			f.mn += copy(f.mti[f.mn:], data[:n])
		}
		if _, err := f.body.Write(data[:n]); err != nil {
			return err
		}
		f.need -= n
		data = data[n:]

		if f.need == 0 {
			if err := f.emit(fn); err != nil {
				return err
			}
		}
	}

	return nil
}

func (f *Framer) parseHeader() error {
	n, err := encoding.ReadFixedNumeric(buffer.NewSliceCursor(f.header[:]), message.HeaderLength)
	if err != nil {
		return errs.WrapField("header", 0, f.header[:], err)
	}
	if n < schema.MTILength {
		return errs.WrapField("header", 0, f.header[:],
			fmt.Errorf("%w: frame of %d bytes cannot hold an MTI", errs.ErrFormat, n))
	}
	f.need = int(n)

	return nil
}

func (f *Framer) emit(fn FrameHandler) error {
	defer f.reset()

	if err := f.body.BeginRead(); err != nil {
		return err
	}
	f.frames++

	return fn(string(f.mti[:]), f.body)
}

func (f *Framer) reset() {
	f.body.Reset()
	f.hn, f.mn, f.need = 0, 0, 0
}

// Pending returns the number of buffered bytes of the incomplete frame.
func (f *Framer) Pending() int {
	if f.hn < len(f.header) {
		return f.hn
	}

	return f.hn + f.body.Len()
}

// Frames returns the number of frames completed so far.
func (f *Framer) Frames() int {
	return f.frames
}

// Release returns the body segments to their pool. The Framer is unusable
// afterwards.
func (f *Framer) Release() {
	f.body.Release()
}
