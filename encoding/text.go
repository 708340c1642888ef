package encoding

import (
	"fmt"
	"strings"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
)

var prefixLimits = [...]int{0, 9, 99, 999}

// WriteVariableText writes a prefixDigits wide decimal length prefix followed by
// the content, unpadded. This is the LVar, LLVar and LLLVar encoding.
//
// Parameters:
//   - w: Destination buffer
//   - s: Printable ASCII content (0x20-0x7E)
//   - prefixDigits: Width of the length prefix, 1..3
//   - maxLen: Field maximum length
//
// Returns:
//   - error: errs.ErrOverflow if s is longer than maxLen or the prefix can express,
//     errs.ErrFormat for non-printable content
func WriteVariableText(w buffer.Writer, s string, prefixDigits, maxLen int) error {
	if prefixDigits < 1 || prefixDigits > 3 {
		return fmt.Errorf("%w: prefix width %d", errs.ErrUnsupportedFormat, prefixDigits)
	}
	if len(s) > maxLen || len(s) > prefixLimits[prefixDigits] {
		return fmt.Errorf("%w: text length %d exceeds maximum %d", errs.ErrOverflow, len(s), min(maxLen, prefixLimits[prefixDigits]))
	}
	if err := checkPrintable(s); err != nil {
		return err
	}

	if err := WriteFixedNumeric(w, int64(len(s)), prefixDigits); err != nil {
		return err
	}

	return writeFull(w, []byte(s))
}

// ReadVariableText reads the length prefix and then that many printable bytes.
func ReadVariableText(c buffer.Cursor, prefixDigits, maxLen int) (string, error) {
	n, err := ReadLengthPrefix(c, prefixDigits, maxLen)
	if err != nil {
		return "", err
	}

	raw, err := readScalar(c, n)
	if err != nil {
		return "", err
	}
	s := string(raw)
	if err := checkPrintable(s); err != nil {
		return "", err
	}

	return s, nil
}

// ReadLengthPrefix reads a prefixDigits wide length and checks it against maxLen.
func ReadLengthPrefix(c buffer.Cursor, prefixDigits, maxLen int) (int, error) {
	if prefixDigits < 1 || prefixDigits > 3 {
		return 0, fmt.Errorf("%w: prefix width %d", errs.ErrUnsupportedFormat, prefixDigits)
	}

	n, err := ReadFixedNumeric(c, prefixDigits)
	if err != nil {
		return 0, err
	}
	if int(n) > maxLen {
		return 0, fmt.Errorf("%w: declared length %d exceeds maximum %d", errs.ErrFormat, n, maxLen)
	}

	return int(n), nil
}

// WriteFixedText writes s right-padded with spaces to exactly length bytes.
func WriteFixedText(w buffer.Writer, s string, length int) error {
	if len(s) > length {
		return fmt.Errorf("%w: text length %d exceeds width %d", errs.ErrOverflow, len(s), length)
	}
	if err := checkPrintable(s); err != nil {
		return err
	}

	if err := writeFull(w, []byte(s)); err != nil {
		return err
	}

	return writeRepeat(w, ' ', length-len(s))
}

// ReadFixedText reads length bytes and trims trailing spaces.
func ReadFixedText(c buffer.Cursor, length int) (string, error) {
	raw, err := readScalar(c, length)
	if err != nil {
		return "", err
	}
	s := string(raw)
	if err := checkPrintable(s); err != nil {
		return "", err
	}

	return strings.TrimRight(s, " "), nil
}

// WriteText writes s verbatim with neither padding nor prefix.
func WriteText(w buffer.Writer, s string, maxLen int) error {
	if len(s) > maxLen {
		return fmt.Errorf("%w: text length %d exceeds maximum %d", errs.ErrOverflow, len(s), maxLen)
	}
	if err := checkPrintable(s); err != nil {
		return err
	}

	return writeFull(w, []byte(s))
}

// ReadTextUntil reads printable bytes up to maxLen, stopping before any byte in
// stops or when the cursor is exhausted. The stop byte is left unread.
func ReadTextUntil(c buffer.Cursor, maxLen int, stops ...byte) (string, error) {
	var sb strings.Builder

	for sb.Len() < maxLen && c.Remaining() > 0 {
		b, err := c.PeekByte()
		if err != nil {
			return "", err
		}
		if hasStop(b, stops) {
			break
		}
		if !isPrintable(b) {
			return "", fmt.Errorf("%w: non-printable byte 0x%02x at index %d", errs.ErrFormat, b, sb.Len())
		}
		if _, err := c.ReadByte(); err != nil {
			return "", err
		}
		sb.WriteByte(b)
	}

	return sb.String(), nil
}
