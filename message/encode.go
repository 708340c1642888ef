package message

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/schema"
)

// Encode assembles a complete frame: the 4-digit body length, the MTI, the
// bitmap and the present fields.
//
// Parameters:
//   - desc: Message layout
//   - f: Field values keyed by field number
//
// Returns:
//   - []byte: The frame, owned by the caller
//   - error: A *errs.FieldError wrapping errs.ErrFormat for a missing mandatory
//     field, errs.ErrUnregisteredField for a field not in desc,
//     errs.ErrUnsupportedFormat for a value of the wrong variant, or a codec error
func (a *Assembler) Encode(desc *schema.MessageDescriptor, f *Fields) ([]byte, error) {
	buf, err := a.NewBuffer()
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	if err := a.EncodeTo(buf, desc, f); err != nil {
		return nil, err
	}

	return buf.Bytes()
}

// EncodeTo appends the frame of f to w. The length header is written as a
// placeholder first and patched once the body is complete.
func (a *Assembler) EncodeTo(w buffer.Writer, desc *schema.MessageDescriptor, f *Fields) error {
	start := w.Len()
	if err := encoding.WriteFixedNumeric(w, 0, HeaderLength); err != nil {
		return err
	}
	if err := encoding.WriteFixedText(w, desc.MTI, schema.MTILength); err != nil {
		return errs.WrapField("MTI", start+HeaderLength, nil, err)
	}

	if err := a.encodeBitmapped(w, desc.Fields, f, ""); err != nil {
		return err
	}

	body := w.Len() - start - HeaderLength
	if body > MaxBodyLength {
		return fmt.Errorf("%w: body of %d bytes exceeds %d", errs.ErrOverflow, body, MaxBodyLength)
	}
	header, err := encoding.AppendFixedNumeric(make([]byte, 0, HeaderLength), int64(body), HeaderLength)
	if err != nil {
		return err
	}

	return w.Patch(start, header)
}

func fieldPath(parent string, n int) string {
	if parent == "" {
		return strconv.Itoa(n)
	}

	return fmt.Sprintf("%s.%d", parent, n)
}

func itemPath(parent string, i int) string {
	return fmt.Sprintf("%s.%d[%d]", parent, schema.ItemsField, i)
}

// checkRegistered rejects values for numbers the layout does not know.
func checkRegistered(f *Fields, path string, offset int, known func(int) bool) error {
	for _, n := range f.Numbers() {
		if !known(n) {
			return errs.WrapField(fieldPath(path, n), offset, nil,
				fmt.Errorf("%w: field %d", errs.ErrUnregisteredField, n))
		}
	}

	return nil
}

func (a *Assembler) encodeBitmapped(w buffer.Writer, fields []*schema.FieldDescriptor, f *Fields, path string) error {
	err := checkRegistered(f, path, w.Len(), func(n int) bool {
		_, ok := schema.Lookup(fields, n)
		return ok
	})
	if err != nil {
		return err
	}

	var bm encoding.Bitmap
	for _, fd := range fields {
		if f.Has(fd.Number) {
			if err := bm.Set(fd.Number); err != nil {
				return err
			}
			continue
		}
		if !fd.Optional {
			return errs.WrapField(fieldPath(path, fd.Number), w.Len(), nil,
				fmt.Errorf("%w: mandatory field %s missing", errs.ErrFormat, fd))
		}
	}
	if err := encoding.WriteBitmap(w, bm); err != nil {
		return err
	}

	for _, fd := range fields {
		v, ok := f.Get(fd.Number)
		if !ok {
			continue
		}
		if err := a.encodeField(w, fd, v, fieldPath(path, fd.Number)); err != nil {
			return err
		}
	}

	return nil
}

func (a *Assembler) encodeField(w buffer.Writer, fd *schema.FieldDescriptor, v Value, path string) error {
	offset := w.Len()

	var err error
	if fd.Kind.IsComposite() {
		err = a.encodeComposite(w, fd, v, path)
	} else {
		err = a.encodeScalar(w, fd, v)
	}

	return errs.WrapField(path, offset, nil, err)
}

// encodeScalar writes timestamps as wall clock time in the assembler location,
// the location Decode rebuilds them in.
func (a *Assembler) encodeScalar(w buffer.Writer, fd *schema.FieldDescriptor, v Value) error {
	switch fd.Kind {
	case format.FixedNumeric:
		i, err := v.AsInt()
		if err != nil {
			return err
		}

		return encoding.WriteFixedNumeric(w, i, fd.Length)
	case format.ScaledDecimal, format.FreeDecimal2, format.FreeDecimal3:
		d, err := v.AsDecimal()
		if err != nil {
			return err
		}
		if fd.Kind == format.ScaledDecimal {
			return encoding.WriteScaledDecimal(w, d, fd.Kind.Scale(), fd.Length)
		}

		return encoding.WriteFreeDecimal(w, d, fd.Kind.Scale(), fd.Length)
	case format.LVar, format.LLVar, format.LLLVar, format.FixedText, format.FixedTextNoPad:
		s, err := v.AsText()
		if err != nil {
			return err
		}
		switch fd.Kind {
		case format.FixedText:
			return encoding.WriteFixedText(w, s, fd.Length)
		case format.FixedTextNoPad:
			return encoding.WriteText(w, s, fd.Length)
		default:
			return encoding.WriteVariableText(w, s, fd.Kind.PrefixDigits(), fd.Length)
		}
	case format.ShortTimestamp, format.LongTimestamp:
		t, err := v.AsTime()
		if err != nil {
			return err
		}
		t = t.In(a.location)
		if fd.Kind == format.ShortTimestamp {
			return encoding.WriteShortTimestamp(w, t)
		}

		return encoding.WriteLongTimestamp(w, t)
	case format.RawBytes, format.LengthPrefixedBytes:
		b, err := v.AsBytes()
		if err != nil {
			return err
		}
		if fd.Kind == format.RawBytes {
			return encoding.WriteRawBytes(w, b, fd.Length)
		}

		return encoding.WriteLengthPrefixedBytes(w, b, fd.Length)
	default:
		return fmt.Errorf("%w: kind %s", errs.ErrUnsupportedFormat, fd.Kind)
	}
}

// encodeComposite writes a zero prefix placeholder, the nested content and then
// patches the prefix with the content length.
func (a *Assembler) encodeComposite(w buffer.Writer, fd *schema.FieldDescriptor, v Value, path string) error {
	nested, err := v.AsComposite()
	if err != nil {
		return err
	}

	c := fd.Composite
	prefixAt := w.Len()
	if err := encoding.WriteFixedNumeric(w, 0, c.PrefixDigits); err != nil {
		return err
	}

	contentAt := w.Len()
	if c.IsRepeatingGroup() {
		err = a.encodeGroup(w, c, nested, path)
	} else {
		err = a.encodeBitmapped(w, c.Fields, nested, path)
	}
	if err != nil {
		return err
	}

	n := w.Len() - contentAt
	if n > fd.Length {
		return fmt.Errorf("%w: composite content of %d bytes exceeds %d", errs.ErrOverflow, n, fd.Length)
	}
	prefix, err := encoding.AppendFixedNumeric(make([]byte, 0, c.PrefixDigits), int64(n), c.PrefixDigits)
	if err != nil {
		return err
	}

	return w.Patch(prefixAt, prefix)
}

func (a *Assembler) encodeGroup(w buffer.Writer, c *schema.CompositeDescriptor, f *Fields, path string) error {
	err := checkRegistered(f, path, w.Len(), func(n int) bool {
		_, ok := c.Field(n)
		return ok || n == schema.ItemsField
	})
	if err != nil {
		return err
	}

	var items []*Fields
	if v, ok := f.Get(schema.ItemsField); ok {
		if items, err = v.AsItems(); err != nil {
			return errs.WrapField(fieldPath(path, schema.ItemsField), w.Len(), nil, err)
		}
	}

	for _, fd := range c.Fields {
		p := fieldPath(path, fd.Number)
		v, ok := f.Get(fd.Number)
		if fd.Number == c.CountField {
			v, ok = Int(int64(len(items))), true
		}
		if !ok {
			return errs.WrapField(p, w.Len(), nil, fmt.Errorf("%w: mandatory field %s missing", errs.ErrFormat, fd))
		}
		if err := a.encodeField(w, fd, v, p); err != nil {
			return err
		}
	}

	for i, item := range items {
		if i > 0 {
			if err := writeDelimiter(w, c.Item.Separator); err != nil {
				return err
			}
		}
		if err := a.encodeItem(w, c.Item, item, itemPath(path, i)); err != nil {
			return err
		}
	}

	return nil
}

func (a *Assembler) encodeItem(w buffer.Writer, t *schema.ItemTemplate, item *Fields, path string) error {
	err := checkRegistered(item, path, w.Len(), func(n int) bool {
		_, ok := t.Field(n)
		return ok
	})
	if err != nil {
		return err
	}

	for i, fd := range t.Fields {
		p := fieldPath(path, fd.Number)
		offset := w.Len()

		v, ok := item.Get(fd.Number)
		if !ok {
			return errs.WrapField(p, offset, nil, fmt.Errorf("%w: mandatory field %s missing", errs.ErrFormat, fd))
		}
		if err := checkDelimiters(t, i, fd, v); err != nil {
			return errs.WrapField(p, offset, nil, err)
		}
		if fd.Before != 0 {
			if err := writeDelimiter(w, fd.Before); err != nil {
				return errs.WrapField(p, offset, nil, err)
			}
		}
		if err := a.encodeScalar(w, fd, v); err != nil {
			return errs.WrapField(p, offset, nil, err)
		}
	}

	return nil
}

func writeDelimiter(w buffer.Writer, delim byte) error {
	span, err := w.WriteSpan(1)
	if err != nil {
		return err
	}
	span[0] = delim

	return nil
}

// checkDelimiters rejects variable text that would end the field early on decode.
func checkDelimiters(t *schema.ItemTemplate, i int, fd *schema.FieldDescriptor, v Value) error {
	if fd.Kind != format.FixedTextNoPad {
		return nil
	}

	s, err := v.AsText()
	if err != nil {
		return err
	}

	stops := itemStops(t, i)
	if strings.ContainsAny(s, string(stops)) {
		return fmt.Errorf("%w: %q contains a delimiter of %q", errs.ErrFormat, s, stops)
	}

	return nil
}

// itemStops returns the bytes that end variable item field i: the next field's
// delimiter (if any) and the item separator.
func itemStops(t *schema.ItemTemplate, i int) []byte {
	stops := make([]byte, 0, 2)
	if i+1 < len(t.Fields) && t.Fields[i+1].Before != 0 {
		stops = append(stops, t.Fields[i+1].Before)
	}

	return append(stops, t.Separator)
}
