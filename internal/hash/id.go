package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum computes the xxHash64 of b. Capture archives use it as the per-frame
// checksum.
func Sum(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Fingerprint hashes parts in order, each followed by a NUL separator so that
// ("ab", "c") and ("a", "bc") produce different values.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}
