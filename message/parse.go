package message

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/schema"
)

// Parse decodes a body that starts at the MTI. Bytes left after the last field
// are errs.ErrFormat.
func (a *Assembler) Parse(body []byte, desc *schema.MessageDescriptor) (*Fields, error) {
	c := buffer.NewSliceCursor(body)
	f, err := a.Decode(c, desc)
	if err != nil {
		return nil, err
	}
	if !c.IsEnd() {
		return nil, trailingError(c)
	}

	return f, nil
}

// ParseFrame checks the 4-digit length header against the frame size and parses
// the body behind it.
func (a *Assembler) ParseFrame(frame []byte, desc *schema.MessageDescriptor) (*Fields, error) {
	body, err := SplitFrame(frame)
	if err != nil {
		return nil, err
	}

	return a.Parse(body, desc)
}

// DecodeBuffer decodes a body held in a SegmentBuffer that is in its read phase.
// The whole remaining content must belong to the message.
func (a *Assembler) DecodeBuffer(sb *buffer.SegmentBuffer, desc *schema.MessageDescriptor) (*Fields, error) {
	if sb.State() != buffer.StateReading {
		return nil, fmt.Errorf("%w: decode from %s buffer", errs.ErrBufferState, sb.State())
	}

	r := sb.Reader()
	f, err := a.Decode(r, desc)
	if err != nil {
		return nil, err
	}
	if r.Remaining() > 0 {
		return nil, trailingError(r)
	}

	return f, nil
}

// ParseAny selects the descriptor by the body's MTI and parses the body.
//
// Returns errs.ErrUnknownMessageType when the MTI is not registered.
func (a *Assembler) ParseAny(body []byte, reg *schema.Registry) (*schema.MessageDescriptor, *Fields, error) {
	mti, err := PeekMTI(body)
	if err != nil {
		return nil, nil, err
	}
	desc, err := reg.Lookup(mti)
	if err != nil {
		return nil, nil, err
	}

	f, err := a.Parse(body, desc)
	if err != nil {
		return desc, nil, err
	}

	return desc, f, nil
}

// PeekMTI returns the MTI at the start of body without decoding anything else.
func PeekMTI(body []byte) (string, error) {
	if len(body) < schema.MTILength {
		return "", errs.WrapField("MTI", 0, body,
			fmt.Errorf("%w: body of %d bytes has no MTI", errs.ErrBounds, len(body)))
	}

	mti := string(body[:schema.MTILength])
	if err := schema.ValidateMTI(mti); err != nil {
		return "", errs.WrapField("MTI", 0, body[:schema.MTILength], err)
	}

	return mti, nil
}

// SplitFrame validates the 4-digit length header of frame and returns the body.
func SplitFrame(frame []byte) ([]byte, error) {
	c := buffer.NewSliceCursor(frame)
	n, err := encoding.ReadFixedNumeric(c, HeaderLength)
	if err != nil {
		return nil, errs.WrapField("header", 0, frame[:min(len(frame), HeaderLength)], err)
	}
	if int(n) != c.Remaining() {
		return nil, errs.WrapField("header", 0, frame[:HeaderLength],
			fmt.Errorf("%w: header declares %d bytes, frame carries %d", errs.ErrFormat, n, c.Remaining()))
	}

	return frame[HeaderLength:], nil
}

func trailingError(c buffer.Cursor) error {
	return errs.WrapField("body", c.Position(), nil,
		fmt.Errorf("%w: %d bytes after the last field", errs.ErrFormat, c.Remaining()))
}
