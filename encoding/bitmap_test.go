package encoding

import (
	"testing"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
	"github.com/stretchr/testify/require"
)

func TestBitmap_PurchaseRequestFields(t *testing.T) {
	var b Bitmap
	for _, f := range []int{2, 3, 4, 7, 11, 12, 22, 24, 26, 32, 41, 48, 49, 52, 53, 63} {
		require.NoError(t, b.Set(f))
	}

	require.Equal(t, Bitmap{0x72, 0x30, 0x05, 0x41, 0x00, 0x81, 0x98, 0x02}, b)
	require.Equal(t, "7230054100819802", b.String())
}

func TestBitmap_CapturedResponses(t *testing.T) {
	tests := []struct {
		name   string
		bitmap Bitmap
		fields []int
	}{
		{"1810", Bitmap{0x02, 0x20, 0x00, 0x01, 0x02, 0, 0, 0}, []int{7, 11, 32, 39}},
		{"1110", Bitmap{0x22, 0x30, 0x00, 0x01, 0x0E, 0x90, 0, 0}, []int{3, 7, 11, 12, 32, 37, 38, 39, 41, 44}},
		{"DE44", Bitmap{0x70, 0, 0, 0, 0, 0, 0, 0}, []int{2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.fields, tt.bitmap.Fields())
		})
	}
}

func TestBitmap_Uint64Numbering(t *testing.T) {
	for f := 1; f <= MaxBitmapField; f++ {
		var b Bitmap
		require.NoError(t, b.Set(f))

		require.Equal(t, uint64(1)<<(64-f), b.Uint64(), "field %d", f)
		require.Equal(t, b, BitmapFromUint64(b.Uint64()))
		require.Equal(t, []int{f}, b.Fields())
	}
}

func TestBitmap_SetClear(t *testing.T) {
	var b Bitmap

	require.ErrorIs(t, b.Set(0), errs.ErrUnregisteredField)
	require.ErrorIs(t, b.Set(65), errs.ErrUnregisteredField)
	require.False(t, b.IsSet(65))

	require.NoError(t, b.Set(48))
	require.True(t, b.IsSet(48))
	b.Clear(48)
	require.False(t, b.IsSet(48))
	require.Empty(t, b.Fields())
}

func TestBitmap_WriteRead(t *testing.T) {
	want := Bitmap{0x72, 0x30, 0x05, 0x41, 0x00, 0x81, 0x98, 0x02}

	buf := newBuffer(t, 3)
	require.NoError(t, WriteBitmap(buf, want))
	require.Equal(t, 8, buf.Len())

	got, err := ReadBitmap(readerOf(t, buf))
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = ReadBitmap(buffer.NewSliceCursor([]byte{1, 2, 3}))
	require.ErrorIs(t, err, errs.ErrBounds)
}
