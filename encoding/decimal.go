package encoding

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
	"github.com/shopspring/decimal"
)

// WriteScaledDecimal encodes d multiplied by 10^scale as a zero-padded FixedNumeric
// of length digits. Amounts are written this way, e.g. 413.57 at scale 2 in 12
// digits becomes "000000041357".
//
// Returns errs.ErrFormat if d has more than scale fraction digits, and
// errs.ErrOverflow if the scaled value needs more than length digits.
func WriteScaledDecimal(w buffer.Writer, d decimal.Decimal, scale, length int) error {
	if d.Sign() < 0 {
		return fmt.Errorf("%w: negative amount %s", errs.ErrUnsupportedFormat, d)
	}

	scaled := d.Shift(int32(scale)) //nolint:gosec
	if !scaled.IsInteger() {
		return fmt.Errorf("%w: %s has more than %d fraction digits", errs.ErrFormat, d, scale)
	}

	return writeDigitString(w, scaled.String(), length)
}

// ReadScaledDecimal reads length digits and divides the result by 10^scale.
func ReadScaledDecimal(c buffer.Cursor, scale, length int) (decimal.Decimal, error) {
	digits, err := readDigitString(c, length)
	if err != nil {
		return decimal.Zero, err
	}

	v, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errs.ErrFormat, err)
	}

	return v.Shift(-int32(scale)), nil //nolint:gosec
}

// FormatFreeDecimal returns the minimal ASCII form of d: integer digits, then a
// point and the fraction only when the fraction is non-zero. 20.000 formats as
// "20" and 413.570 as "413.57".
func FormatFreeDecimal(d decimal.Decimal, scale int) (string, error) {
	if d.Sign() < 0 {
		return "", fmt.Errorf("%w: negative value %s", errs.ErrUnsupportedFormat, d)
	}
	if !d.Equal(d.Truncate(int32(scale))) { //nolint:gosec
		return "", fmt.Errorf("%w: %s has more than %d fraction digits", errs.ErrFormat, d, scale)
	}

	return d.String(), nil
}

// WriteFreeDecimal writes d in its minimal ASCII form without padding.
//
// Returns errs.ErrOverflow when the text is longer than maxLen.
func WriteFreeDecimal(w buffer.Writer, d decimal.Decimal, scale, maxLen int) error {
	s, err := FormatFreeDecimal(d, scale)
	if err != nil {
		return err
	}
	if len(s) > maxLen {
		return fmt.Errorf("%w: %q is longer than %d", errs.ErrOverflow, s, maxLen)
	}

	return writeFull(w, []byte(s))
}

// ReadFreeDecimal reads a minimal ASCII decimal. Reading stops before any byte in
// stops, after maxLen bytes, or when the cursor is exhausted. The stop byte is
// left unread.
//
// Only digits and a single '.' are accepted, and at most scale digits may follow
// the point. An empty field is errs.ErrFormat.
func ReadFreeDecimal(c buffer.Cursor, scale, maxLen int, stops ...byte) (decimal.Decimal, error) {
	raw := make([]byte, 0, maxLen)
	point := -1

	for len(raw) < maxLen && c.Remaining() > 0 {
		b, err := c.PeekByte()
		if err != nil {
			return decimal.Zero, err
		}
		if hasStop(b, stops) {
			break
		}

		switch {
		case isDigit(b):
		case b == '.' && point < 0:
			point = len(raw)
		default:
			return decimal.Zero, fmt.Errorf("%w: unexpected byte 0x%02x in decimal %q", errs.ErrFormat, b, raw)
		}

		if _, err := c.ReadByte(); err != nil {
			return decimal.Zero, err
		}
		raw = append(raw, b)
	}

	if len(raw) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty decimal", errs.ErrFormat)
	}
	if point == 0 || point == len(raw)-1 {
		return decimal.Zero, fmt.Errorf("%w: malformed decimal %q", errs.ErrFormat, raw)
	}
	if point > 0 && len(raw)-point-1 > scale {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d fraction digits", errs.ErrFormat, raw, scale)
	}

	v, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errs.ErrFormat, err)
	}

	return v, nil
}
