package message

import (
	"fmt"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/encoding"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/schema"
)

// recorder tees every byte consumed from its parent so that a failing field can
// report the raw bytes it saw. It is reset at each top level field.
type recorder struct {
	parent buffer.Cursor
	seen   []byte
}

var _ buffer.Cursor = (*recorder)(nil)

func (r *recorder) ReadByte() (byte, error) {
	b, err := r.parent.ReadByte()
	if err == nil {
		r.seen = append(r.seen, b)
	}

	return b, err
}

func (r *recorder) PeekByte() (byte, error) {
	return r.parent.PeekByte()
}

func (r *recorder) ReadBytes(n int) ([]byte, error) {
	b, err := r.parent.ReadBytes(n)
	if err == nil {
		r.seen = append(r.seen, b...)
	}

	return b, err
}

func (r *recorder) Position() int  { return r.parent.Position() }
func (r *recorder) Remaining() int { return r.parent.Remaining() }

func (r *recorder) since(mark int) []byte {
	if mark >= len(r.seen) {
		return nil
	}
	out := make([]byte, len(r.seen)-mark)
	copy(out, r.seen[mark:])

	return out
}

// decoder carries the state of one decode pass.
type decoder struct {
	a   *Assembler
	rec *recorder
}

// Decode reads one message body from c: the MTI, the bitmap and every flagged
// field. The MTI must match desc.
//
// Parameters:
//   - c: Cursor positioned at the MTI
//   - desc: Expected message layout
//
// Returns:
//   - *Fields: Decoded values, with nested composites as Composite values
//   - error: A *errs.FieldError locating the failure
func (a *Assembler) Decode(c buffer.Cursor, desc *schema.MessageDescriptor) (*Fields, error) {
	d := &decoder{a: a, rec: &recorder{parent: c}}

	offset := c.Position()
	mti, err := encoding.ReadFixedText(d.rec, schema.MTILength)
	if err != nil {
		return nil, errs.WrapField("MTI", offset, d.rec.since(0), err)
	}
	if mti != desc.MTI {
		return nil, errs.WrapField("MTI", offset, []byte(mti),
			fmt.Errorf("%w: MTI %q, expected %s", errs.ErrFormat, mti, desc.MTI))
	}

	return d.bitmapped(d.rec, desc.Fields, "")
}

func (d *decoder) bitmapped(c buffer.Cursor, fields []*schema.FieldDescriptor, path string) (*Fields, error) {
	top := path == ""

	bitmapPath := "bitmap"
	if !top {
		bitmapPath = path + ".bitmap"
	}
	offset := c.Position()
	mark := len(d.rec.seen)
	bm, err := encoding.ReadBitmap(c)
	if err != nil {
		return nil, errs.WrapField(bitmapPath, offset, d.rec.since(mark), err)
	}

	present := bm.Fields()
	for _, n := range present {
		if _, ok := schema.Lookup(fields, n); !ok {
			return nil, errs.WrapField(fieldPath(path, n), offset, bm[:],
				fmt.Errorf("%w: bit %d set in bitmap %s", errs.ErrUnregisteredField, n, bm))
		}
	}
	for _, fd := range fields {
		if !fd.Optional && !bm.IsSet(fd.Number) {
			return nil, errs.WrapField(fieldPath(path, fd.Number), offset, bm[:],
				fmt.Errorf("%w: mandatory field %s not in bitmap %s", errs.ErrFormat, fd, bm))
		}
	}

	out := NewFields()
	for _, n := range present {
		fd, _ := schema.Lookup(fields, n)
		if top {
			d.rec.seen = d.rec.seen[:0]
		}
		v, err := d.field(c, fd, fieldPath(path, n), nil)
		if err != nil {
			return nil, err
		}
		out.Set(n, v)
	}

	return out, nil
}

func (d *decoder) field(c buffer.Cursor, fd *schema.FieldDescriptor, path string, stops []byte) (Value, error) {
	offset := c.Position()
	mark := len(d.rec.seen)

	var (
		v   Value
		err error
	)
	if fd.Kind.IsComposite() {
		v, err = d.composite(c, fd, path)
	} else {
		v, err = d.scalar(c, fd, stops)
	}
	if err != nil {
		return Value{}, errs.WrapField(path, offset, d.rec.since(mark), err)
	}

	return v, nil
}

func (d *decoder) scalar(c buffer.Cursor, fd *schema.FieldDescriptor, stops []byte) (Value, error) {
	switch fd.Kind {
	case format.FixedNumeric:
		i, err := encoding.ReadFixedNumeric(c, fd.Length)
		return Int(i), err
	case format.ScaledDecimal:
		v, err := encoding.ReadScaledDecimal(c, fd.Kind.Scale(), fd.Length)
		return Decimal(v), err
	case format.FreeDecimal2, format.FreeDecimal3:
		v, err := encoding.ReadFreeDecimal(c, fd.Kind.Scale(), fd.Length, stops...)
		return Decimal(v), err
	case format.LVar, format.LLVar, format.LLLVar:
		s, err := encoding.ReadVariableText(c, fd.Kind.PrefixDigits(), fd.Length)
		return Text(s), err
	case format.FixedText:
		s, err := encoding.ReadFixedText(c, fd.Length)
		return Text(s), err
	case format.FixedTextNoPad:
		s, err := encoding.ReadTextUntil(c, fd.Length, stops...)
		return Text(s), err
	case format.ShortTimestamp:
		t, err := encoding.ReadShortTimestamp(c, d.a.year(), d.a.location)
		return Time(t), err
	case format.LongTimestamp:
		t, err := encoding.ReadLongTimestamp(c, d.a.location)
		return Time(t), err
	case format.RawBytes:
		b, err := encoding.ReadRawBytes(c, fd.Length)
		return Bytes(b), err
	case format.LengthPrefixedBytes:
		b, err := encoding.ReadLengthPrefixedBytes(c, fd.Length)
		return Bytes(b), err
	default:
		return Value{}, fmt.Errorf("%w: kind %s", errs.ErrUnsupportedFormat, fd.Kind)
	}
}

// composite reads the length prefix and decodes the content through a cursor
// limited to exactly that many bytes. The content must be consumed completely.
func (d *decoder) composite(c buffer.Cursor, fd *schema.FieldDescriptor, path string) (Value, error) {
	comp := fd.Composite
	n, err := encoding.ReadLengthPrefix(c, comp.PrefixDigits, fd.Length)
	if err != nil {
		return Value{}, err
	}
	lc, err := buffer.Limit(c, n)
	if err != nil {
		return Value{}, err
	}

	var nested *Fields
	if comp.IsRepeatingGroup() {
		nested, err = d.group(lc, comp, path)
	} else {
		nested, err = d.bitmapped(lc, comp.Fields, path)
	}
	if err != nil {
		return Value{}, err
	}
	if lc.Remaining() > 0 {
		return Value{}, fmt.Errorf("%w: %d unread bytes in %s", errs.ErrFormat, lc.Remaining(), comp.Name)
	}

	return Composite(nested), nil
}

func (d *decoder) group(c buffer.Cursor, comp *schema.CompositeDescriptor, path string) (*Fields, error) {
	out := NewFields()
	for _, fd := range comp.Fields {
		v, err := d.field(c, fd, fieldPath(path, fd.Number), nil)
		if err != nil {
			return nil, err
		}
		out.Set(fd.Number, v)
	}

	items := make([]*Fields, 0, 4)
	for c.Remaining() > 0 {
		if len(items) > 0 {
			offset := c.Position()
			sep, err := c.ReadByte()
			if err != nil {
				return nil, err
			}
			if sep != comp.Item.Separator {
				return nil, errs.WrapField(itemPath(path, len(items)), offset, []byte{sep},
					fmt.Errorf("%w: expected item separator %q, got %q", errs.ErrFormat, comp.Item.Separator, sep))
			}
		}

		item, err := d.item(c, comp.Item, itemPath(path, len(items)))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if comp.CountField != 0 {
		count, err := out.Int(comp.CountField)
		if err != nil {
			return nil, err
		}
		if count != int64(len(items)) {
			return nil, errs.WrapField(fieldPath(path, comp.CountField), c.Position(), nil,
				fmt.Errorf("%w: item count %d, decoded %d items", errs.ErrFormat, count, len(items)))
		}
	}
	out.Set(schema.ItemsField, Items(items...))

	return out, nil
}

func (d *decoder) item(c buffer.Cursor, t *schema.ItemTemplate, path string) (*Fields, error) {
	out := NewFields()
	for i, fd := range t.Fields {
		p := fieldPath(path, fd.Number)
		if fd.Before != 0 {
			offset := c.Position()
			b, err := c.ReadByte()
			if err != nil {
				return nil, errs.WrapField(p, offset, nil, err)
			}
			if b != fd.Before {
				return nil, errs.WrapField(p, offset, []byte{b},
					fmt.Errorf("%w: expected delimiter %q, got %q", errs.ErrFormat, fd.Before, b))
			}
		}

		v, err := d.field(c, fd, p, itemStops(t, i))
		if err != nil {
			return nil, err
		}
		out.Set(fd.Number, v)
	}

	return out, nil
}
