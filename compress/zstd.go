package compress

// ZstdCompressor is the Zstandard codec. Its implementation is selected by
// build tag; see zstd_pure.go and zstd_cgo.go.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor returns the Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
