// Package endian provides the byte order engines used for the binary parts of
// the wire and capture formats.
//
// IFSF presence bitmaps are big-endian: reading the 8 bitmap bytes with
// GetBigEndianEngine yields an integer in which field f is bit 64-f. Capture
// archive headers and index entries are little-endian unless their flag says
// otherwise:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, frameCount)
//
// # Thread Safety
//
// The returned EndianEngine instances are immutable and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface, satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Select returns the big-endian engine when bigEndian is set, little-endian otherwise.
func Select(bigEndian bool) EndianEngine {
	if bigEndian {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}
