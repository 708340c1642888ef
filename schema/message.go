package schema

import (
	"fmt"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/internal/hash"
)

// MTILength is the width of the message type indicator.
const MTILength = 4

// MessageDescriptor is the validated layout of one message type.
type MessageDescriptor struct {
	MTI    string
	Name   string
	Fields []*FieldDescriptor // ascending field numbers

	fingerprint uint64
}

// NewMessage validates fields and builds a message descriptor.
//
// Fields may be given in any order; they are sorted by number.
//
// Parameters:
//   - mti: 4-digit message type indicator, e.g. "1200"
//   - name: Message name used in diagnostics
//   - fields: Field descriptors created with NewField
//
// Returns:
//   - *MessageDescriptor: The immutable descriptor
//   - error: errs.ErrDuplicateField for repeated numbers, errs.ErrUnsupportedFormat
//     for invalid kinds, widths or composites, errs.ErrFormat for a malformed MTI
func NewMessage(mti, name string, fields ...*FieldDescriptor) (*MessageDescriptor, error) {
	if err := ValidateMTI(mti); err != nil {
		return nil, err
	}

	sorted, err := sortFields(fields)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", mti, err)
	}
	for _, f := range sorted {
		if err := f.validate(scopeBitmap); err != nil {
			return nil, fmt.Errorf("message %s: %w", mti, err)
		}
	}

	m := &MessageDescriptor{MTI: mti, Name: name, Fields: sorted}
	m.fingerprint = m.computeFingerprint()

	return m, nil
}

// MustNewMessage is like NewMessage but panics on error. It is meant for
// package level descriptor tables.
func MustNewMessage(mti, name string, fields ...*FieldDescriptor) *MessageDescriptor {
	m, err := NewMessage(mti, name, fields...)
	if err != nil {
		panic(err)
	}

	return m
}

// ValidateMTI checks that mti is exactly four ASCII digits.
func ValidateMTI(mti string) error {
	if len(mti) != MTILength {
		return fmt.Errorf("%w: MTI %q is not %d digits", errs.ErrFormat, mti, MTILength)
	}
	for i := 0; i < len(mti); i++ {
		if mti[i] < '0' || mti[i] > '9' {
			return fmt.Errorf("%w: MTI %q is not numeric", errs.ErrFormat, mti)
		}
	}

	return nil
}

// Field returns field n.
func (m *MessageDescriptor) Field(n int) (*FieldDescriptor, bool) {
	return Lookup(m.Fields, n)
}

// Fingerprint returns an xxHash64 over every wire-relevant attribute of the
// layout. Two descriptors with equal fingerprints encode identically.
func (m *MessageDescriptor) Fingerprint() uint64 {
	return m.fingerprint
}

func (m *MessageDescriptor) computeFingerprint() uint64 {
	parts := []string{m.MTI}
	for _, f := range m.Fields {
		parts = append(parts, f.signature()...)
	}

	return hash.Fingerprint(parts...)
}

func (m *MessageDescriptor) String() string {
	return m.MTI + " " + m.Name
}
