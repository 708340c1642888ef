package section

import (
	"fmt"

	"github.com/arloliu/ifsf/endian"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
)

// CaptureFlag is the packed first word of a capture header.
type CaptureFlag struct {
	// Options holds the magic number in bits 4-15 and the endianness in bit 0,
	// 0 for little-endian and 1 for big-endian. Bits 1-3 must be zero.
	Options uint16

	// Compression is the format.CompressionType of the payload.
	Compression uint8
}

var validCompressions = map[uint8]struct{}{
	CompressionNone: {},
	CompressionZstd: {},
	CompressionS2:   {},
	CompressionLZ4:  {},
}

// NewCaptureFlag returns a little-endian, Zstd-compressed flag.
func NewCaptureFlag() CaptureFlag {
	return CaptureFlag{
		Options:     MagicCaptureV1,
		Compression: CompressionZstd,
	}
}

// IsLittleEndian returns whether the archive is little-endian.
func (f CaptureFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the archive is big-endian.
func (f CaptureFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *CaptureFlag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *CaptureFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// MagicNumber returns the magic number bits of Options.
func (f CaptureFlag) MagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// CompressionType returns the payload compression.
func (f CaptureFlag) CompressionType() format.CompressionType {
	return format.CompressionType(f.Compression)
}

// SetCompression sets the payload compression.
func (f *CaptureFlag) SetCompression(c format.CompressionType) {
	f.Compression = uint8(c)
}

// Validate checks the magic number, the reserved bits and the compression.
func (f CaptureFlag) Validate() error {
	if f.MagicNumber() != MagicCaptureV1 {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagic, f.MagicNumber())
	}
	if f.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved option bits set", errs.ErrInvalidCapture)
	}
	if _, ok := validCompressions[f.Compression]; !ok {
		return fmt.Errorf("%w: compression 0x%02X", errs.ErrInvalidCapture, f.Compression)
	}

	return nil
}

// GetEndianEngine returns the engine for the flag's byte order.
func (f CaptureFlag) GetEndianEngine() endian.EndianEngine {
	return endian.Select(f.IsBigEndian())
}
