package encoding

import (
	"strings"
	"testing"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
	"github.com/stretchr/testify/require"
)

func TestVariableText_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		prefix int
		maxLen int
		value  string
		want   string
	}{
		{"LVar", 1, 9, "aaaa", "4aaaa"},
		{"LLVar pan", 2, 19, "7801310000009999490", "197801310000009999490"},
		{"LLVar acquirer", 2, 99, "280131", "06280131"},
		{"LLLVar", 3, 999, strings.Repeat("a", 499), "499" + strings.Repeat("a", 499)},
		{"empty", 2, 99, "", "00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newBuffer(t, 7)
			require.NoError(t, WriteVariableText(buf, tt.value, tt.prefix, tt.maxLen))
			require.Equal(t, tt.want, wireOf(t, buf))

			got, err := ReadVariableText(readerOf(t, buf), tt.prefix, tt.maxLen)
			require.NoError(t, err)
			require.Equal(t, tt.value, got)
		})
	}
}

func TestWriteVariableText_Overflow(t *testing.T) {
	buf := newBuffer(t, 64)

	err := WriteVariableText(buf, strings.Repeat("1", 20), 2, 19)
	require.ErrorIs(t, err, errs.ErrOverflow)

	err = WriteVariableText(buf, strings.Repeat("1", 10), 1, 99)
	require.ErrorIs(t, err, errs.ErrOverflow, "1-digit prefix cannot express 10")
}

func TestWriteVariableText_NonPrintable(t *testing.T) {
	buf := newBuffer(t, 64)

	err := WriteVariableText(buf, "ab\x01", 2, 99)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestReadVariableText_Errors(t *testing.T) {
	_, err := ReadVariableText(buffer.NewSliceCursor([]byte("20abc")), 2, 19)
	require.ErrorIs(t, err, errs.ErrFormat, "declared length beyond maximum")

	_, err = ReadVariableText(buffer.NewSliceCursor([]byte("03a\x7fc")), 2, 19)
	require.ErrorIs(t, err, errs.ErrFormat, "non-printable content")

	_, err = ReadVariableText(buffer.NewSliceCursor([]byte("05abc")), 2, 19)
	require.ErrorIs(t, err, errs.ErrBounds)
}

func TestFixedText_RoundTrip(t *testing.T) {
	buf := newBuffer(t, 3)
	require.NoError(t, WriteFixedText(buf, "24001", 8))
	require.Equal(t, "24001   ", wireOf(t, buf))

	got, err := ReadFixedText(readerOf(t, buf), 8)
	require.NoError(t, err)
	require.Equal(t, "24001", got)
}

func TestFixedText_Errors(t *testing.T) {
	buf := newBuffer(t, 64)

	require.ErrorIs(t, WriteFixedText(buf, "B0010160014C1", 12), errs.ErrOverflow)
	require.ErrorIs(t, WriteFixedText(buf, "R\nU", 3), errs.ErrFormat)

	_, err := ReadFixedText(buffer.NewSliceCursor([]byte{'R', 0x00}), 2)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestText_NoPad(t *testing.T) {
	buf := newBuffer(t, 4)
	require.NoError(t, WriteText(buf, "12", 17))
	require.NoError(t, WriteFixedText(buf, `\`, 1))
	require.Equal(t, `12\`, wireOf(t, buf))

	got, err := ReadTextUntil(readerOf(t, buf), 17, '\\')
	require.NoError(t, err)
	require.Equal(t, "12", got)

	require.ErrorIs(t, WriteText(newBuffer(t, 4), strings.Repeat("x", 18), 17), errs.ErrOverflow)
}

func TestReadTextUntil_Bounded(t *testing.T) {
	c := buffer.NewSliceCursor([]byte("ABCDEFGH"))

	got, err := ReadTextUntil(c, 5)
	require.NoError(t, err)
	require.Equal(t, "ABCDE", got)

	got, err = ReadTextUntil(c, 17, '/')
	require.NoError(t, err)
	require.Equal(t, "FGH", got, "stops when the cursor is exhausted")
}
