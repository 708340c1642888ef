package schema

import (
	"fmt"
	"strconv"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
)

// ItemsField is the field number under which a repeating group stores its items.
const ItemsField = 64

// CompositeDescriptor is the nested layout of a composite field.
//
// A bitmap composite (SubBitmap set) is written as its length prefix, an 8-byte
// sub-bitmap and the present sub-fields. A repeating group is written as its
// length prefix, the header fields in order and the items, separated by the
// item template's separator.
type CompositeDescriptor struct {
	Name         string
	PrefixDigits int
	SubBitmap    bool
	Fields       []*FieldDescriptor // sub-fields, or header fields of a repeating group
	Item         *ItemTemplate
	CountField   int // header field carrying the item count, 0 for none

	err error
}

// ItemTemplate is the layout of one repeating group item.
type ItemTemplate struct {
	Fields    []*FieldDescriptor
	Separator byte
}

// NewBitmapComposite describes bitmap-gated sub-fields behind a prefixDigits
// wide length prefix.
func NewBitmapComposite(name string, prefixDigits int, fields ...*FieldDescriptor) *CompositeDescriptor {
	c := &CompositeDescriptor{Name: name, PrefixDigits: prefixDigits, SubBitmap: true}
	c.Fields, c.err = sortFields(fields)

	return c
}

// NewRepeatingGroup describes a delimited repeating group: the header fields in
// ascending order followed by any number of items.
func NewRepeatingGroup(name string, prefixDigits int, item *ItemTemplate, header ...*FieldDescriptor) *CompositeDescriptor {
	c := &CompositeDescriptor{Name: name, PrefixDigits: prefixDigits, Item: item}
	c.Fields, c.err = sortFields(header)

	return c
}

// NewItemTemplate describes an item whose fields appear in ascending order and
// whose successive occurrences are joined by separator.
func NewItemTemplate(separator byte, fields ...*FieldDescriptor) *ItemTemplate {
	sorted, err := sortFields(fields)
	if err != nil {
		// surfaced by the enclosing composite's validation
		return &ItemTemplate{Separator: separator, Fields: fields}
	}

	return &ItemTemplate{Separator: separator, Fields: sorted}
}

// CountedBy names the FixedNumeric header field that carries the number of
// items. The encoder derives it from the item list and the decoder checks it.
func (c *CompositeDescriptor) CountedBy(field int) *CompositeDescriptor {
	c.CountField = field

	return c
}

// Field returns sub-field or header field n.
func (c *CompositeDescriptor) Field(n int) (*FieldDescriptor, bool) {
	return Lookup(c.Fields, n)
}

// IsRepeatingGroup reports whether the composite carries items.
func (c *CompositeDescriptor) IsRepeatingGroup() bool {
	return c.Item != nil
}

func (c *CompositeDescriptor) validate(kind format.Kind) error {
	if c.err != nil {
		return c.err
	}
	if c.PrefixDigits < 1 || c.PrefixDigits > 3 {
		return fmt.Errorf("%w: composite %s prefix width %d", errs.ErrUnsupportedFormat, c.Name, c.PrefixDigits)
	}

	switch kind {
	case format.BitmapComposite:
		if !c.SubBitmap || c.Item != nil {
			return fmt.Errorf("%w: composite %s is not a bitmap composite", errs.ErrUnsupportedFormat, c.Name)
		}
		for _, f := range c.Fields {
			if err := f.validate(scopeBitmap); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}
	case format.DelimitedComposite:
		if c.SubBitmap || c.Item == nil {
			return fmt.Errorf("%w: composite %s is not a repeating group", errs.ErrUnsupportedFormat, c.Name)
		}
		for _, f := range c.Fields {
			if err := f.validate(scopeHeader); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			if f.Number >= ItemsField {
				return fmt.Errorf("%w: header field %d collides with items field %d", errs.ErrDuplicateField, f.Number, ItemsField)
			}
			if f.IsVariable() {
				return fmt.Errorf("%w: header field %s has no delimiter", errs.ErrUnsupportedFormat, f)
			}
		}
		if c.CountField != 0 {
			f, ok := c.Field(c.CountField)
			if !ok || f.Kind != format.FixedNumeric {
				return fmt.Errorf("%w: count field %d is not a numeric header field", errs.ErrUnsupportedFormat, c.CountField)
			}
		}
		if err := c.Item.validate(); err != nil {
			return fmt.Errorf("%s item: %w", c.Name, err)
		}
	default:
		return fmt.Errorf("%w: %s is not a composite kind", errs.ErrUnsupportedFormat, kind)
	}

	return nil
}

func (t *ItemTemplate) validate() error {
	if t.Separator == 0 {
		return fmt.Errorf("%w: zero item separator", errs.ErrUnsupportedFormat)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("%w: empty item template", errs.ErrUnsupportedFormat)
	}
	if _, err := sortFields(t.Fields); err != nil {
		return err
	}

	for i, f := range t.Fields {
		if err := f.validate(scopeItem); err != nil {
			return err
		}
		if f.Before == t.Separator {
			return fmt.Errorf("%w: %s delimiter equals item separator", errs.ErrUnsupportedFormat, f)
		}
		// a variable field ends where the next field's delimiter begins
		if f.IsVariable() && i+1 < len(t.Fields) && t.Fields[i+1].Before == 0 {
			return fmt.Errorf("%w: %s is followed by %s without a delimiter",
				errs.ErrUnsupportedFormat, f, t.Fields[i+1])
		}
	}

	return nil
}

// Field returns item field n.
func (t *ItemTemplate) Field(n int) (*FieldDescriptor, bool) {
	return Lookup(t.Fields, n)
}

func (c *CompositeDescriptor) signature() []string {
	parts := []string{"{", c.Name, strconv.Itoa(c.PrefixDigits), strconv.FormatBool(c.SubBitmap), strconv.Itoa(c.CountField)}
	for _, f := range c.Fields {
		parts = append(parts, f.signature()...)
	}
	if c.Item != nil {
		parts = append(parts, "[", strconv.Itoa(int(c.Item.Separator)))
		for _, f := range c.Item.Fields {
			parts = append(parts, f.signature()...)
		}
		parts = append(parts, "]")
	}

	return append(parts, "}")
}
