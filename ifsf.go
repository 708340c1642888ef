// Package ifsf implements the IFSF host-to-host message set used by fuel card
// terminals: network management (1800/1810), card information (1100/1110) and
// purchase (1200/1210).
//
// Messages travel as frames of a 4-digit ASCII body length followed by the body:
// a 4-digit MTI, an 8-byte presence bitmap and the present data elements in
// ascending order. Composite elements such as DE48 carry their own sub-bitmap,
// and DE63 is a delimited list of sale items.
//
// # Basic Usage
//
// Encoding a purchase request:
//
//	req := &ifsf.PurchaseRequest{
//	    Amount:       decimal.RequireFromString("413.57"),
//	    STAN:         22,
//	    AcquirerID:   "280131",
//	    TerminalID:   "24001",
//	    CurrencyCode: 643,
//	    // ...
//	}
//	frame, err := ifsf.Encode(message.Default, req)
//
// Decoding whatever the host returned:
//
//	msg, err := ifsf.ParseFrame(message.Default, frame)
//	if resp, ok := msg.(*ifsf.PurchaseResponse); ok {
//	    fmt.Println(resp.ActionCode)
//	}
//
// # Package Structure
//
// The typed messages in this package are thin wrappers over the schema and
// message packages, which can be used directly for message types not modeled
// here.
package ifsf

import (
	"fmt"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/schema"
)

// Message is a typed IFSF message.
type Message interface {
	// MTI returns the 4-digit message type indicator.
	MTI() string
	// Descriptor returns the wire layout of the message type.
	Descriptor() *schema.MessageDescriptor
	// Fields converts the message to field values.
	Fields() (*message.Fields, error)
	// SetFields populates the message from decoded field values.
	SetFields(f *message.Fields) error
}

var registry = mustRegistry(
	NetworkManagementRequestDescriptor,
	NetworkManagementResponseDescriptor,
	CardInformationRequestDescriptor,
	CardInformationResponseDescriptor,
	PurchaseRequestDescriptor,
	PurchaseResponseDescriptor,
)

func mustRegistry(descs ...*schema.MessageDescriptor) *schema.Registry {
	r, err := schema.NewRegistry(descs...)
	if err != nil {
		panic(err)
	}

	return r
}

// Registry returns the registry of every modeled message type.
func Registry() *schema.Registry {
	return registry
}

// New returns an empty typed message for mti.
//
// Returns errs.ErrUnknownMessageType for MTIs without a typed model.
func New(mti string) (Message, error) {
	switch mti {
	case MTINetworkManagementRequest:
		return &NetworkManagementRequest{}, nil
	case MTINetworkManagementResponse:
		return &NetworkManagementResponse{}, nil
	case MTICardInformationRequest:
		return &CardInformationRequest{}, nil
	case MTICardInformationResponse:
		return &CardInformationResponse{}, nil
	case MTIPurchaseRequest:
		return &PurchaseRequest{}, nil
	case MTIPurchaseResponse:
		return &PurchaseResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownMessageType, mti)
	}
}

// Encode converts m to fields and assembles its frame.
func Encode(a *message.Assembler, m Message) ([]byte, error) {
	f, err := m.Fields()
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", m.MTI(), err)
	}

	return a.Encode(m.Descriptor(), f)
}

// Decode parses body, which starts at the MTI, into m.
func Decode(a *message.Assembler, body []byte, m Message) error {
	f, err := a.Parse(body, m.Descriptor())
	if err != nil {
		return err
	}

	return m.SetFields(f)
}

// Parse decodes body into the typed message selected by its MTI.
func Parse(a *message.Assembler, body []byte) (Message, error) {
	mti, err := message.PeekMTI(body)
	if err != nil {
		return nil, err
	}
	m, err := New(mti)
	if err != nil {
		return nil, err
	}
	if err := Decode(a, body, m); err != nil {
		return nil, err
	}

	return m, nil
}

// ParseFrame validates the frame header and decodes the body like Parse.
func ParseFrame(a *message.Assembler, frame []byte) (Message, error) {
	body, err := message.SplitFrame(frame)
	if err != nil {
		return nil, err
	}

	return Parse(a, body)
}

// ResponseMTI returns the response MTI paired with request MTI mti, e.g. 1210
// for 1200.
func ResponseMTI(mti string) (string, error) {
	if err := schema.ValidateMTI(mti); err != nil {
		return "", err
	}
	if mti[2] != '0' {
		return "", fmt.Errorf("%w: %s is not a request", errs.ErrUnknownMessageType, mti)
	}

	return mti[:2] + "1" + mti[3:], nil
}
