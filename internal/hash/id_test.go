package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestSum_MatchesID(t *testing.T) {
	for _, s := range []string{"", "1810", "F0105L012"} {
		require.Equal(t, ID(s), Sum([]byte(s)))
	}
}

func TestFingerprint(t *testing.T) {
	require.Equal(t, Fingerprint("1200", "4", "12"), Fingerprint("1200", "4", "12"))
	require.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
	require.NotEqual(t, Fingerprint("1200"), Fingerprint("1210"))
	require.NotEqual(t, Fingerprint(), Fingerprint(""))
}

func BenchmarkSum(b *testing.B) {
	frame := []byte("0193" + "1200" + "PURCHASE-REQUEST-FRAME-BODY")
	for b.Loop() {
		Sum(frame)
	}
}
