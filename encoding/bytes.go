package encoding

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
)

// WriteRawBytes copies exactly length bytes of b verbatim.
func WriteRawBytes(w buffer.Writer, b []byte, length int) error {
	if len(b) > length {
		return fmt.Errorf("%w: %d bytes exceed width %d", errs.ErrOverflow, len(b), length)
	}
	if len(b) < length {
		return fmt.Errorf("%w: %d bytes, field width is %d", errs.ErrFormat, len(b), length)
	}

	return writeFull(w, b)
}

// ReadRawBytes reads exactly length bytes and returns an owned copy.
//
// The run is taken with Cursor.ReadBytes, so on a segment cursor it is subject to
// the buffer's cross-segment policy.
func ReadRawBytes(c buffer.Cursor, length int) ([]byte, error) {
	b, err := c.ReadBytes(length)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out, nil
}

// WriteLengthPrefixedBytes writes a 2-digit length prefix and the raw bytes.
func WriteLengthPrefixedBytes(w buffer.Writer, b []byte, maxLen int) error {
	if len(b) > maxLen || len(b) > prefixLimits[2] {
		return fmt.Errorf("%w: %d bytes exceed maximum %d", errs.ErrOverflow, len(b), min(maxLen, prefixLimits[2]))
	}

	if err := WriteFixedNumeric(w, int64(len(b)), 2); err != nil {
		return err
	}

	return writeFull(w, b)
}

// ReadLengthPrefixedBytes reads a 2-digit length prefix and that many raw bytes.
func ReadLengthPrefixedBytes(c buffer.Cursor, maxLen int) ([]byte, error) {
	n, err := ReadLengthPrefix(c, 2, maxLen)
	if err != nil {
		return nil, err
	}

	return ReadRawBytes(c, n)
}
