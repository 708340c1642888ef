package section

import (
	"fmt"

	"github.com/arloliu/ifsf/endian"
	"github.com/arloliu/ifsf/errs"
)

// Direction tells which side of the host link sent a frame.
type Direction uint8

const (
	DirectionOutbound Direction = 1 // terminal to host
	DirectionInbound  Direction = 2 // host to terminal
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "out"
	case DirectionInbound:
		return "in"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionInbound
}

// FrameIndexEntry locates one recorded frame in the decompressed payload.
type FrameIndexEntry struct {
	// Checksum is the xxHash64 of the frame bytes.
	//
	// Offset: 0, Size: 8 bytes
	Checksum uint64

	// TimeOffset is the receive time in microseconds after the header StartTime.
	//
	// Offset: 8, Size: 8 bytes
	TimeOffset int64

	// Offset is the frame position within the decompressed payload.
	//
	// Offset: 16, Size: 4 bytes
	Offset uint32

	// Length is the frame length in bytes, header included.
	//
	// Offset: 20, Size: 2 bytes
	Length uint16

	// Offset: 22, Size: 1 byte
	Direction Direction
}

// WriteToSlice writes the entry at data[offset:] and returns the next offset.
func (e *FrameIndexEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint64(data[offset:offset+8], e.Checksum)
	engine.PutUint64(data[offset+8:offset+16], uint64(e.TimeOffset)) //nolint: gosec
	engine.PutUint32(data[offset+16:offset+20], e.Offset)
	engine.PutUint16(data[offset+20:offset+22], e.Length)
	data[offset+22] = byte(e.Direction)
	data[offset+23] = 0

	return offset + FrameIndexEntrySize
}

// Bytes returns the serialized entry.
func (e *FrameIndexEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, FrameIndexEntrySize)
	e.WriteToSlice(b, 0, engine)

	return b
}

// End returns the payload offset just past the frame.
func (e FrameIndexEntry) End() int {
	return int(e.Offset) + int(e.Length)
}

// ParseFrameIndexEntry parses one entry.
func ParseFrameIndexEntry(data []byte, engine endian.EndianEngine) (FrameIndexEntry, error) {
	if len(data) < FrameIndexEntrySize {
		return FrameIndexEntry{}, fmt.Errorf("%w: index entry is %d bytes, want %d", errs.ErrInvalidCapture, len(data), FrameIndexEntrySize)
	}

	e := FrameIndexEntry{
		Checksum:   engine.Uint64(data[0:8]),
		TimeOffset: int64(engine.Uint64(data[8:16])), //nolint: gosec
		Offset:     engine.Uint32(data[16:20]),
		Length:     engine.Uint16(data[20:22]),
		Direction:  Direction(data[22]),
	}
	if !e.Direction.Valid() {
		return FrameIndexEntry{}, fmt.Errorf("%w: direction %d", errs.ErrInvalidCapture, data[22])
	}

	return e, nil
}

// ParseFrameIndex parses count consecutive entries and checks that each frame
// lies within a payload of rawSize bytes.
func ParseFrameIndex(data []byte, count int, rawSize int, engine endian.EndianEngine) ([]FrameIndexEntry, error) {
	if len(data) < count*FrameIndexEntrySize {
		return nil, fmt.Errorf("%w: index of %d entries truncated to %d bytes", errs.ErrInvalidCapture, count, len(data))
	}

	entries := make([]FrameIndexEntry, count)
	for i := range entries {
		off := i * FrameIndexEntrySize
		e, err := ParseFrameIndexEntry(data[off:off+FrameIndexEntrySize], engine)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if e.End() > rawSize {
			return nil, fmt.Errorf("%w: frame %d ends at %d beyond payload of %d bytes", errs.ErrInvalidCapture, i, e.End(), rawSize)
		}
		entries[i] = e
	}

	return entries, nil
}
