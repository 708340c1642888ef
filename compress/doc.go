// Package compress provides the payload codecs used by capture archives.
//
// A capture archive stores recorded IFSF frames back to back and compresses
// the whole run with one of the codecs below. Frames are short and highly
// repetitive (fixed-width numerics, the same acquirer and terminal IDs in
// every message), so even the fast codecs shrink a capture considerably.
//
// # Supported Algorithms
//
//   - format.CompressionNone: payload is stored as is
//   - format.CompressionZstd: best ratio, for fixtures kept in the repository
//   - format.CompressionS2: fast, for captures recorded on a busy host link
//   - format.CompressionLZ4: fastest to decode, for replay
//
// Zstd uses klauspost/compress by default. Building with the nobuild tag
// switches it to the cgo valyala/gozstd binding.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// All codecs are stateless values and safe for concurrent use.
package compress
