package section

import "github.com/arloliu/ifsf/format"

const (
	// Bit masks of CaptureFlag.Options
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicCaptureV1 is the version 1 magic number of capture archives.
	MagicCaptureV1 = 0xEC10

	CompressionNone = uint8(format.CompressionNone)
	CompressionZstd = uint8(format.CompressionZstd)
	CompressionS2   = uint8(format.CompressionS2)
	CompressionLZ4  = uint8(format.CompressionLZ4)
)

// offsets and section sizes in the capture file
const (
	HeaderSize          = 32         // fixed header size in bytes
	FrameIndexEntrySize = 24         // fixed index entry size in bytes
	IndexOffsetOffset   = HeaderSize // byte offset where the index section starts
	MaxFrameLength      = 0xFFFF     // largest frame an index entry can describe
)
