package encoding

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/endian"
	"github.com/arloliu/ifsf/errs"
)

const (
	// BitmapSize is the wire size of a presence bitmap.
	BitmapSize = 8
	// MaxBitmapField is the highest field number a bitmap can flag.
	MaxBitmapField = 64
)

// Bitmap is a 64-bit presence bitmap with MSB-first numbering: field f is bit
// 7-(f-1)%8 of byte (f-1)/8.
type Bitmap [BitmapSize]byte

func checkFieldNumber(field int) error {
	if field < 1 || field > MaxBitmapField {
		return fmt.Errorf("%w: field number %d outside 1..%d", errs.ErrUnregisteredField, field, MaxBitmapField)
	}

	return nil
}

// Set flags field as present.
func (b *Bitmap) Set(field int) error {
	if err := checkFieldNumber(field); err != nil {
		return err
	}
	b[(field-1)/8] |= 1 << (7 - (field-1)%8)

	return nil
}

// Clear removes the presence flag of field.
func (b *Bitmap) Clear(field int) {
	if checkFieldNumber(field) != nil {
		return
	}
	b[(field-1)/8] &^= 1 << (7 - (field-1)%8)
}

// IsSet reports whether field is flagged. Out-of-range numbers report false.
func (b Bitmap) IsSet(field int) bool {
	if checkFieldNumber(field) != nil {
		return false
	}

	return b[(field-1)/8]&(1<<(7-(field-1)%8)) != 0
}

// Fields returns the flagged field numbers in ascending order.
func (b Bitmap) Fields() []int {
	fields := make([]int, 0, 16)
	for f := 1; f <= MaxBitmapField; f++ {
		if b.IsSet(f) {
			fields = append(fields, f)
		}
	}

	return fields
}

// Uint64 returns the bitmap as a big-endian integer, in which field f is bit 64-f.
func (b Bitmap) Uint64() uint64 {
	return endian.GetBigEndianEngine().Uint64(b[:])
}

// BitmapFromUint64 is the inverse of Bitmap.Uint64.
func BitmapFromUint64(v uint64) Bitmap {
	var b Bitmap
	endian.GetBigEndianEngine().PutUint64(b[:], v)

	return b
}

// String renders the bitmap as hex, the way it appears in host traces.
func (b Bitmap) String() string {
	return fmt.Sprintf("%016X", b.Uint64())
}

// WriteBitmap writes the 8 raw bitmap bytes.
func WriteBitmap(w buffer.Writer, b Bitmap) error {
	return writeFull(w, b[:])
}

// ReadBitmap reads 8 raw bitmap bytes.
func ReadBitmap(c buffer.Cursor) (Bitmap, error) {
	var b Bitmap
	raw, err := readScalar(c, BitmapSize)
	if err != nil {
		return b, err
	}
	copy(b[:], raw)

	return b, nil
}
