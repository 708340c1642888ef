package encoding

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
)

// writeFull streams p into w in as many pieces as the segment layout requires.
func writeFull(w buffer.Writer, p []byte) error {
	for len(p) > 0 {
		span, err := w.TryGetAvailable(len(p))
		if err != nil {
			return err
		}
		p = p[copy(span, p):]
	}

	return nil
}

// writeRepeat writes n copies of c.
func writeRepeat(w buffer.Writer, c byte, n int) error {
	for n > 0 {
		span, err := w.TryGetAvailable(n)
		if err != nil {
			return err
		}
		for i := range span {
			span[i] = c
		}
		n -= len(span)
	}

	return nil
}

// readScalar reads n bytes one at a time so the run may cross segment
// boundaries, and returns an owned copy.
func readScalar(c buffer.Cursor, n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes, %d remaining", errs.ErrBounds, n, c.Remaining())
	}

	out := make([]byte, n)
	for i := range out {
		b, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}

	return out, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isPrintable(c byte) bool {
	return c >= 0x20 && c <= 0x7E
}

func hasStop(c byte, stops []byte) bool {
	for _, s := range stops {
		if c == s {
			return true
		}
	}

	return false
}

// checkPrintable validates that every byte of s is printable ASCII.
func checkPrintable(s string) error {
	for i := 0; i < len(s); i++ {
		if !isPrintable(s[i]) {
			return fmt.Errorf("%w: non-printable byte 0x%02x at index %d", errs.ErrFormat, s[i], i)
		}
	}

	return nil
}
