package message

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/ifsf/errs"
	"github.com/shopspring/decimal"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindInt
	KindDecimal
	KindText
	KindTime
	KindBytes
	KindComposite
	KindItems
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	case KindComposite:
		return "composite"
	case KindItems:
		return "items"
	default:
		return "invalid"
	}
}

// Value is a field value: an integer, decimal, text, time, byte string, nested
// field set or repeating group item list.
//
// The zero Value is invalid and is rejected by the encoder.
type Value struct {
	kind  ValueKind
	i     int64
	d     decimal.Decimal
	s     string
	t     time.Time
	b     []byte
	c     *Fields
	items []*Fields
}

// Int returns a FixedNumeric value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Decimal returns a ScaledDecimal or FreeDecimal value.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

// Text returns a value for the text kinds.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Bytes returns a RawBytes or LengthPrefixedBytes value. b is not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, b: b} }

// Composite returns the value of a bitmap composite or repeating group.
func Composite(f *Fields) Value { return Value{kind: KindComposite, c: f} }

// Items returns the item list of a repeating group.
func Items(items ...*Fields) Value { return Value{kind: KindItems, items: items} }

// Kind returns the variant of v.
func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) mismatch(want ValueKind) error {
	return fmt.Errorf("%w: %s value where %s is required", errs.ErrUnsupportedFormat, v.kind, want)
}

// AsInt returns the integer, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsInt() (int64, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}

	return v.i, nil
}

// AsDecimal returns the decimal, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsDecimal() (decimal.Decimal, error) {
	if v.kind != KindDecimal {
		return decimal.Zero, v.mismatch(KindDecimal)
	}

	return v.d, nil
}

// AsText returns the text, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsText() (string, error) {
	if v.kind != KindText {
		return "", v.mismatch(KindText)
	}

	return v.s, nil
}

// AsTime returns the time, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsTime() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, v.mismatch(KindTime)
	}

	return v.t, nil
}

// AsBytes returns the bytes, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, v.mismatch(KindBytes)
	}

	return v.b, nil
}

// AsComposite returns the nested fields, or errs.ErrUnsupportedFormat for other
// variants.
func (v Value) AsComposite() (*Fields, error) {
	if v.kind != KindComposite || v.c == nil {
		return nil, v.mismatch(KindComposite)
	}

	return v.c, nil
}

// AsItems returns the item list, or errs.ErrUnsupportedFormat for other variants.
func (v Value) AsItems() ([]*Fields, error) {
	if v.kind != KindItems {
		return nil, v.mismatch(KindItems)
	}

	return v.items, nil
}

// Equal reports whether v and o hold the same variant and value. Decimals
// compare numerically and times by instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindDecimal:
		return v.d.Equal(o.d)
	case KindText:
		return v.s == o.s
	case KindTime:
		return v.t.Equal(o.t)
	case KindBytes:
		return bytes.Equal(v.b, o.b)
	case KindComposite:
		return v.c.Equal(o.c)
	case KindItems:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}

		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return v.d.String()
	case KindText:
		return strconv.Quote(v.s)
	case KindTime:
		return v.t.Format("2006-01-02 15:04:05")
	case KindBytes:
		return fmt.Sprintf("%X", v.b)
	case KindComposite:
		return v.c.String()
	case KindItems:
		parts := make([]string, len(v.items))
		for i, it := range v.items {
			parts[i] = it.String()
		}

		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}
