package section

import (
	"fmt"
	"time"

	"github.com/arloliu/ifsf/errs"
)

// CaptureHeader is the fixed-size header at the start of a capture archive.
type CaptureHeader struct {
	// StartTime is the time of the first frame in Unix microseconds.
	StartTime int64 // byte offset 4-11
	// FrameCount is the number of recorded frames.
	FrameCount uint32 // byte offset 12-15
	// IndexOffset is the byte offset of the frame index, always HeaderSize.
	IndexOffset uint32 // byte offset 16-19
	// PayloadOffset is the byte offset of the compressed payload, right after
	// the index.
	PayloadOffset uint32 // byte offset 20-23
	// PayloadSize is the compressed payload length.
	PayloadSize uint32 // byte offset 24-27
	// RawSize is the decompressed payload length.
	RawSize uint32 // byte offset 28-31

	Flag CaptureFlag // byte offset 0-3
}

// NewCaptureHeader creates a header starting at startTime. Counts and offsets
// are filled in when the archive is finished.
func NewCaptureHeader(startTime time.Time) *CaptureHeader {
	return &CaptureHeader{
		StartTime:   startTime.UnixMicro(),
		Flag:        NewCaptureFlag(),
		IndexOffset: IndexOffsetOffset,
	}
}

// Parse parses the header from exactly HeaderSize bytes.
func (h *CaptureHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", errs.ErrInvalidCapture, len(data), HeaderSize)
	}

	// Options is little-endian regardless of the byte order it selects.
	h.Flag.Options = uint16(data[0]) | uint16(data[1])<<8
	h.Flag.Compression = data[2]
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.StartTime = int64(engine.Uint64(data[4:12])) //nolint: gosec
	h.FrameCount = engine.Uint32(data[12:16])
	h.IndexOffset = engine.Uint32(data[16:20])
	h.PayloadOffset = engine.Uint32(data[20:24])
	h.PayloadSize = engine.Uint32(data[24:28])
	h.RawSize = engine.Uint32(data[28:32])

	return h.validateOffsets()
}

func (h *CaptureHeader) validateOffsets() error {
	if h.IndexOffset != IndexOffsetOffset {
		return fmt.Errorf("%w: index offset %d", errs.ErrInvalidCapture, h.IndexOffset)
	}
	want := uint64(IndexOffsetOffset) + uint64(h.FrameCount)*FrameIndexEntrySize
	if uint64(h.PayloadOffset) != want {
		return fmt.Errorf("%w: payload offset %d, index ends at %d", errs.ErrInvalidCapture, h.PayloadOffset, want)
	}

	return nil
}

// Bytes serializes the header.
func (h *CaptureHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.Compression
	engine.PutUint64(b[4:12], uint64(h.StartTime)) //nolint: gosec
	engine.PutUint32(b[12:16], h.FrameCount)
	engine.PutUint32(b[16:20], h.IndexOffset)
	engine.PutUint32(b[20:24], h.PayloadOffset)
	engine.PutUint32(b[24:28], h.PayloadSize)
	engine.PutUint32(b[28:32], h.RawSize)

	return b
}

// StartTimeAsTime returns StartTime as a time.Time.
func (h *CaptureHeader) StartTimeAsTime() time.Time {
	return time.UnixMicro(h.StartTime)
}

// ParseCaptureHeader parses a header from the start of data.
//
// Parameters:
//   - data: archive bytes, at least HeaderSize long
//
// Returns:
//   - CaptureHeader: parsed header
//   - error: errs.ErrInvalidCapture or errs.ErrInvalidMagic
func ParseCaptureHeader(data []byte) (CaptureHeader, error) {
	if len(data) < HeaderSize {
		return CaptureHeader{}, fmt.Errorf("%w: %d bytes is shorter than the header", errs.ErrInvalidCapture, len(data))
	}

	h := CaptureHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return CaptureHeader{}, err
	}

	return h, nil
}
