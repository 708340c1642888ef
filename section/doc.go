// Package section defines the binary sections of a capture archive.
//
// # Layout
//
//	+----------------------+  0
//	| CaptureHeader (32B)  |
//	+----------------------+  32
//	| FrameIndexEntry (24B)|  one per frame
//	| ...                  |
//	+----------------------+  PayloadOffset
//	| compressed payload   |  PayloadSize bytes
//	+----------------------+
//
// The payload is the concatenation of every recorded frame, compressed as a
// single block. Index entries locate each frame inside the decompressed
// payload and carry its xxHash64 checksum.
//
// # Header
//
//	Offset  Size  Field
//	0       2     Options (magic number and endianness, always little-endian)
//	2       1     Compression
//	3       1     Reserved
//	4       8     StartTime, Unix microseconds
//	12      4     FrameCount
//	16      4     IndexOffset
//	20      4     PayloadOffset
//	24      4     PayloadSize (compressed)
//	28      4     RawSize (decompressed)
//
// # Frame Index Entry
//
//	Offset  Size  Field
//	0       8     Checksum, xxHash64 of the frame bytes
//	8       8     TimeOffset, microseconds since StartTime
//	16      4     Offset in the decompressed payload
//	20      2     Length
//	22      1     Direction
//	23      1     Reserved
//
// All multi-byte fields after Options use the byte order selected by the flag.
package section
