package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/message"
)

// WriteFrame writes a complete frame whose header must match its body length.
func WriteFrame(w io.Writer, frame []byte) error {
	if _, err := message.SplitFrame(frame); err != nil {
		return err
	}
	_, err := w.Write(frame)

	return err
}

// WriteBody writes body behind a freshly built length header.
func WriteBody(w io.Writer, body []byte) error {
	if len(body) > message.MaxBodyLength {
		return fmt.Errorf("%w: body of %d bytes exceeds %d", errs.ErrOverflow, len(body), message.MaxBodyLength)
	}
	frame := make([]byte, 0, message.HeaderLength+len(body))
	frame, err := encoding.AppendFixedNumeric(frame, int64(len(body)), message.HeaderLength)
	if err != nil {
		return err
	}
	_, err = w.Write(append(frame, body...))

	return err
}

// ReadFrame reads one frame and returns its body.
//
// A connection closed cleanly before the header is io.EOF; one closed inside
// a frame is io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	frame, err := readFrame(r)
	if err != nil {
		return nil, err
	}

	return frame[message.HeaderLength:], nil
}

// readFrame returns the frame with its header.
func readFrame(r io.Reader) ([]byte, error) {
	var header [message.HeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	n := 0
	for _, c := range header {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: frame header %q is not numeric", errs.ErrFormat, header[:])
		}
		n = n*10 + int(c-'0')
	}

	frame := make([]byte, message.HeaderLength+n)
	copy(frame, header[:])
	if _, err := io.ReadFull(r, frame[message.HeaderLength:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("reading %d byte frame body: %w", n, err)
	}

	return frame, nil
}
