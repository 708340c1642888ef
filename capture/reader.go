package capture

import (
	"fmt"
	"iter"
	"os"
	"time"

	"github.com/arloliu/ifsf/compress"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/internal/hash"
	"github.com/arloliu/ifsf/section"
)

// Reader gives access to the frames of an archive.
type Reader struct {
	header  section.CaptureHeader
	entries []section.FrameIndexEntry
	payload []byte
}

// Open parses an archive, decompresses its payload and verifies every frame
// checksum.
//
// Parameters:
//   - data: the archive bytes
//
// Returns:
//   - *Reader: the opened archive
//   - error: errs.ErrInvalidCapture, errs.ErrInvalidMagic or errs.ErrChecksumMismatch
func Open(data []byte) (*Reader, error) {
	h, err := section.ParseCaptureHeader(data)
	if err != nil {
		return nil, err
	}

	end := int(h.PayloadOffset) + int(h.PayloadSize)
	if len(data) != end {
		return nil, fmt.Errorf("%w: archive is %d bytes, header describes %d", errs.ErrInvalidCapture, len(data), end)
	}

	engine := h.Flag.GetEndianEngine()
	entries, err := section.ParseFrameIndex(data[section.HeaderSize:h.PayloadOffset], int(h.FrameCount), int(h.RawSize), engine)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.Flag.CompressionType())
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(data[h.PayloadOffset:end])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCapture, err)
	}
	if len(payload) != int(h.RawSize) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidCapture, len(payload), h.RawSize)
	}

	for i, e := range entries {
		if sum := hash.Sum(payload[e.Offset:e.End()]); sum != e.Checksum {
			return nil, fmt.Errorf("%w: frame %d: got %016x, want %016x", errs.ErrChecksumMismatch, i, sum, e.Checksum)
		}
	}

	return &Reader{header: h, entries: entries, payload: payload}, nil
}

// ReadFile opens the archive stored at path.
func ReadFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Open(data)
}

// Len returns the number of frames.
func (r *Reader) Len() int {
	return len(r.entries)
}

// StartTime returns the time of the first frame.
func (r *Reader) StartTime() time.Time {
	return r.header.StartTimeAsTime()
}

// Compression returns the payload compression of the archive.
func (r *Reader) Compression() format.CompressionType {
	return r.header.Flag.CompressionType()
}

// Frame returns frame i. Its Bytes alias the reader's payload and must not be
// modified.
func (r *Reader) Frame(i int) (Frame, error) {
	if i < 0 || i >= len(r.entries) {
		return Frame{}, fmt.Errorf("%w: frame %d of %d", errs.ErrBounds, i, len(r.entries))
	}

	return r.frame(i), nil
}

func (r *Reader) frame(i int) Frame {
	e := r.entries[i]

	return Frame{
		Time:      time.UnixMicro(r.header.StartTime + e.TimeOffset),
		Direction: e.Direction,
		Bytes:     r.payload[e.Offset:e.End():e.End()],
	}
}

// All iterates over the frames in recording order.
func (r *Reader) All() iter.Seq2[int, Frame] {
	return func(yield func(int, Frame) bool) {
		for i := range r.entries {
			if !yield(i, r.frame(i)) {
				return
			}
		}
	}
}

// Filter iterates over the frames sent in direction d.
func (r *Reader) Filter(d Direction) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for i, e := range r.entries {
			if e.Direction != d {
				continue
			}
			if !yield(r.frame(i)) {
				return
			}
		}
	}
}
