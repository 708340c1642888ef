package encoding

import (
	"fmt"
	"strconv"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
)

// MaxNumericDigits is the widest FixedNumeric field that fits an int64.
const MaxNumericDigits = 18

// WriteFixedNumeric zero-pads v to exactly length decimal digits.
//
// The padding and digits are streamed through TryGetAvailable, so the field may
// straddle segments.
//
// Parameters:
//   - w: Destination buffer
//   - v: Non-negative value
//   - length: Field width in digits, 1..MaxNumericDigits
//
// Returns:
//   - error: errs.ErrOverflow if v needs more than length digits,
//     errs.ErrUnsupportedFormat for negative values or invalid widths
func WriteFixedNumeric(w buffer.Writer, v int64, length int) error {
	if length <= 0 || length > MaxNumericDigits {
		return fmt.Errorf("%w: numeric width %d", errs.ErrUnsupportedFormat, length)
	}
	if v < 0 {
		return fmt.Errorf("%w: negative value %d", errs.ErrUnsupportedFormat, v)
	}

	var scratch [20]byte
	digits := strconv.AppendInt(scratch[:0], v, 10)
	if len(digits) > length {
		return fmt.Errorf("%w: %d needs %d digits, width is %d", errs.ErrOverflow, v, len(digits), length)
	}

	if err := writeRepeat(w, '0', length-len(digits)); err != nil {
		return err
	}

	return writeFull(w, digits)
}

// AppendFixedNumeric appends v zero-padded to length digits to dst. It is used to
// build the length fixups written back with Patch.
func AppendFixedNumeric(dst []byte, v int64, length int) ([]byte, error) {
	if length <= 0 || length > MaxNumericDigits {
		return dst, fmt.Errorf("%w: numeric width %d", errs.ErrUnsupportedFormat, length)
	}
	if v < 0 {
		return dst, fmt.Errorf("%w: negative value %d", errs.ErrUnsupportedFormat, v)
	}

	var scratch [20]byte
	digits := strconv.AppendInt(scratch[:0], v, 10)
	if len(digits) > length {
		return dst, fmt.Errorf("%w: %d needs %d digits, width is %d", errs.ErrOverflow, v, len(digits), length)
	}
	for i := len(digits); i < length; i++ {
		dst = append(dst, '0')
	}

	return append(dst, digits...), nil
}

// ReadFixedNumeric reads exactly length ASCII digits, accumulating left to right.
//
// Returns errs.ErrFormat on the first non-digit byte.
func ReadFixedNumeric(c buffer.Cursor, length int) (int64, error) {
	if length <= 0 || length > MaxNumericDigits {
		return 0, fmt.Errorf("%w: numeric width %d", errs.ErrUnsupportedFormat, length)
	}

	var v int64
	for i := 0; i < length; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isDigit(b) {
			return 0, fmt.Errorf("%w: non-digit 0x%02x at digit %d", errs.ErrFormat, b, i)
		}
		v = v*10 + int64(b-'0')
	}

	return v, nil
}

// writeDigitString writes an unsigned decimal digit string zero-padded to length.
func writeDigitString(w buffer.Writer, digits string, length int) error {
	if len(digits) > length {
		return fmt.Errorf("%w: %s needs %d digits, width is %d", errs.ErrOverflow, digits, len(digits), length)
	}
	if err := writeRepeat(w, '0', length-len(digits)); err != nil {
		return err
	}

	return writeFull(w, []byte(digits))
}

// readDigitString reads exactly length ASCII digits.
func readDigitString(c buffer.Cursor, length int) (string, error) {
	raw, err := readScalar(c, length)
	if err != nil {
		return "", err
	}
	for i, b := range raw {
		if !isDigit(b) {
			return "", fmt.Errorf("%w: non-digit 0x%02x at digit %d", errs.ErrFormat, b, i)
		}
	}

	return string(raw), nil
}
