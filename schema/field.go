package schema

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/internal/options"
)

const (
	// MaxFieldNumber is the highest field number addressable by a bitmap.
	MaxFieldNumber = 64
	// MaxScaledDigits bounds the width of ScaledDecimal fields.
	MaxScaledDigits = 32
)

// FieldDescriptor describes one field of a message, composite or item.
type FieldDescriptor struct {
	Number   int
	Name     string
	Kind     format.Kind
	Length   int  // fixed width, or maximum length for variable kinds
	Optional bool // only meaningful where a bitmap gates presence
	Before   byte // delimiter written before the field inside an item, 0 for none

	Composite *CompositeDescriptor

	err error
}

// FieldOption configures a FieldDescriptor.
type FieldOption = options.Option[*FieldDescriptor]

// Optional marks the field as optional. Absent optional fields are left out of
// the bitmap.
func Optional() FieldOption {
	return options.NoError(func(f *FieldDescriptor) {
		f.Optional = true
	})
}

// Before sets the delimiter written before the field inside a repeating group
// item. Decoding the preceding variable field stops at this byte.
func Before(delim byte) FieldOption {
	return options.New(func(f *FieldDescriptor) error {
		if delim == 0 {
			return fmt.Errorf("%w: zero before-delimiter", errs.ErrUnsupportedFormat)
		}
		f.Before = delim

		return nil
	})
}

// Nested attaches the composite layout of a BitmapComposite or
// DelimitedComposite field.
func Nested(c *CompositeDescriptor) FieldOption {
	return options.New(func(f *FieldDescriptor) error {
		if c == nil {
			return fmt.Errorf("%w: nil composite", errs.ErrUnsupportedFormat)
		}
		f.Composite = c

		return nil
	})
}

// NewField creates a field descriptor.
//
// Option errors are kept and reported when the enclosing message is built, so
// descriptors can be declared inline in package level tables.
//
// Parameters:
//   - number: Field number, 1..64 within its bitmap scope
//   - name: Human readable name used in diagnostics
//   - kind: Wire format
//   - length: Fixed width or maximum length, depending on kind
//   - opts: Optional(), Before(delim), Nested(composite)
//
// Returns:
//   - *FieldDescriptor: The descriptor, validated by NewMessage
func NewField(number int, name string, kind format.Kind, length int, opts ...FieldOption) *FieldDescriptor {
	f := &FieldDescriptor{
		Number: number,
		Name:   name,
		Kind:   kind,
		Length: length,
	}
	f.err = options.Apply(f, opts...)

	return f
}

// IsVariable reports whether the field's encoded width depends on its value and
// is not carried in a length prefix.
func (f *FieldDescriptor) IsVariable() bool {
	switch f.Kind {
	case format.FixedTextNoPad, format.FreeDecimal2, format.FreeDecimal3:
		return true
	default:
		return false
	}
}

func (f *FieldDescriptor) String() string {
	return fmt.Sprintf("%d:%s(%s,%d)", f.Number, f.Name, f.Kind, f.Length)
}

// signature renders every wire-relevant attribute for fingerprinting.
func (f *FieldDescriptor) signature() []string {
	parts := []string{
		strconv.Itoa(f.Number),
		f.Kind.String(),
		strconv.Itoa(f.Length),
		strconv.FormatBool(f.Optional),
		strconv.Itoa(int(f.Before)),
	}
	if f.Composite != nil {
		parts = append(parts, f.Composite.signature()...)
	}

	return parts
}

// scope tells validation where a field lives.
type scope uint8

const (
	scopeBitmap scope = iota // top level or bitmap composite
	scopeHeader              // repeating group header
	scopeItem                // repeating group item
)

func (f *FieldDescriptor) validate(sc scope) error {
	if f.err != nil {
		return f.err
	}
	if f.Number < 1 || f.Number > MaxFieldNumber {
		return fmt.Errorf("%w: field number %d outside 1..%d", errs.ErrUnregisteredField, f.Number, MaxFieldNumber)
	}
	if f.Optional && sc != scopeBitmap {
		return fmt.Errorf("%w: optional field %s without a bitmap", errs.ErrUnsupportedFormat, f)
	}
	if f.Before != 0 && sc != scopeItem {
		return fmt.Errorf("%w: before-delimiter on %s outside an item", errs.ErrUnsupportedFormat, f)
	}
	if f.IsVariable() && sc == scopeBitmap {
		return fmt.Errorf("%w: variable field %s has no delimiter", errs.ErrUnsupportedFormat, f)
	}

	switch f.Kind {
	case format.FixedNumeric:
		return f.checkLength(1, 18)
	case format.ScaledDecimal:
		return f.checkLength(1, MaxScaledDigits)
	case format.LVar, format.LLVar, format.LLLVar, format.LengthPrefixedBytes:
		return f.checkLength(1, prefixLimit(f.Kind.PrefixDigits()))
	case format.FixedText, format.FixedTextNoPad, format.FreeDecimal2, format.FreeDecimal3, format.RawBytes:
		return f.checkLength(1, 999)
	case format.ShortTimestamp:
		return f.checkLength(10, 10)
	case format.LongTimestamp:
		return f.checkLength(12, 12)
	case format.BitmapComposite, format.DelimitedComposite:
		if sc == scopeItem {
			return fmt.Errorf("%w: composite %s inside an item", errs.ErrUnsupportedFormat, f)
		}
		if f.Composite == nil {
			return fmt.Errorf("%w: composite %s without layout", errs.ErrUnsupportedFormat, f)
		}
		if err := f.Composite.validate(f.Kind); err != nil {
			return fmt.Errorf("field %d: %w", f.Number, err)
		}

		return f.checkLength(1, prefixLimit(f.Composite.PrefixDigits))
	default:
		return fmt.Errorf("%w: field %d has unknown kind 0x%02x", errs.ErrUnsupportedFormat, f.Number, uint8(f.Kind))
	}
}

func (f *FieldDescriptor) checkLength(lo, hi int) error {
	if f.Composite != nil && !f.Kind.IsComposite() {
		return fmt.Errorf("%w: %s is not a composite kind", errs.ErrUnsupportedFormat, f)
	}
	if f.Length < lo || f.Length > hi {
		return fmt.Errorf("%w: %s length outside %d..%d", errs.ErrUnsupportedFormat, f, lo, hi)
	}

	return nil
}

func prefixLimit(digits int) int {
	switch digits {
	case 1:
		return 9
	case 2:
		return 99
	case 3:
		return 999
	default:
		return 0
	}
}

// sortFields orders fields by number and rejects duplicates.
func sortFields(fields []*FieldDescriptor) ([]*FieldDescriptor, error) {
	out := make([]*FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: nil field descriptor", errs.ErrUnsupportedFormat)
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	for i := 1; i < len(out); i++ {
		if out[i].Number == out[i-1].Number {
			return nil, fmt.Errorf("%w: %d", errs.ErrDuplicateField, out[i].Number)
		}
	}

	return out, nil
}

// Lookup finds field number n in an ascending field list.
func Lookup(fields []*FieldDescriptor, n int) (*FieldDescriptor, bool) {
	i := sort.Search(len(fields), func(i int) bool { return fields[i].Number >= n })
	if i < len(fields) && fields[i].Number == n {
		return fields[i], true
	}

	return nil, false
}
