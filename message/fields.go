package message

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/ifsf/errs"
	"github.com/shopspring/decimal"
)

type entry struct {
	number int
	value  Value
}

// Fields is a set of field values ordered by field number.
//
// The same type holds the top level fields of a message, the sub-fields of a
// bitmap composite, the header fields of a repeating group and each item.
type Fields struct {
	entries []entry
}

// NewFields creates an empty field set.
func NewFields() *Fields {
	return &Fields{}
}

func (f *Fields) index(n int) (int, bool) {
	i := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].number >= n })
	return i, i < len(f.entries) && f.entries[i].number == n
}

// Set stores v under field n, replacing any previous value, and returns f so
// calls can be chained.
func (f *Fields) Set(n int, v Value) *Fields {
	i, ok := f.index(n)
	if ok {
		f.entries[i].value = v
		return f
	}

	f.entries = append(f.entries, entry{})
	copy(f.entries[i+1:], f.entries[i:])
	f.entries[i] = entry{number: n, value: v}

	return f
}

// Get returns the value of field n.
func (f *Fields) Get(n int) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	i, ok := f.index(n)
	if !ok {
		return Value{}, false
	}

	return f.entries[i].value, true
}

// Has reports whether field n is present.
func (f *Fields) Has(n int) bool {
	_, ok := f.Get(n)
	return ok
}

// Delete removes field n.
func (f *Fields) Delete(n int) {
	if i, ok := f.index(n); ok {
		f.entries = append(f.entries[:i], f.entries[i+1:]...)
	}
}

// Len returns the number of present fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}

	return len(f.entries)
}

// Numbers returns the present field numbers in ascending order.
func (f *Fields) Numbers() []int {
	out := make([]int, 0, f.Len())
	if f == nil {
		return out
	}
	for _, e := range f.entries {
		out = append(out, e.number)
	}

	return out
}

// Equal reports whether f and o hold the same fields with equal values.
func (f *Fields) Equal(o *Fields) bool {
	if f.Len() != o.Len() {
		return false
	}
	for i := 0; i < f.Len(); i++ {
		a, b := f.entries[i], o.entries[i]
		if a.number != b.number || !a.value.Equal(b.value) {
			return false
		}
	}

	return true
}

func (f *Fields) String() string {
	if f == nil {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range f.entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(e.number))
		sb.WriteByte(':')
		sb.WriteString(e.value.String())
	}
	sb.WriteByte('}')

	return sb.String()
}

func (f *Fields) require(n int) (Value, error) {
	v, ok := f.Get(n)
	if !ok {
		return Value{}, fmt.Errorf("%w: field %d missing", errs.ErrFormat, n)
	}

	return v, nil
}

// Int returns field n as an integer.
func (f *Fields) Int(n int) (int64, error) {
	v, err := f.require(n)
	if err != nil {
		return 0, err
	}

	return v.AsInt()
}

// Decimal returns field n as a decimal.
func (f *Fields) Decimal(n int) (decimal.Decimal, error) {
	v, err := f.require(n)
	if err != nil {
		return decimal.Zero, err
	}

	return v.AsDecimal()
}

// Text returns field n as text.
func (f *Fields) Text(n int) (string, error) {
	v, err := f.require(n)
	if err != nil {
		return "", err
	}

	return v.AsText()
}

// Time returns field n as a time.
func (f *Fields) Time(n int) (time.Time, error) {
	v, err := f.require(n)
	if err != nil {
		return time.Time{}, err
	}

	return v.AsTime()
}

// Bytes returns field n as bytes.
func (f *Fields) Bytes(n int) ([]byte, error) {
	v, err := f.require(n)
	if err != nil {
		return nil, err
	}

	return v.AsBytes()
}

// Composite returns the nested fields of field n.
func (f *Fields) Composite(n int) (*Fields, error) {
	v, err := f.require(n)
	if err != nil {
		return nil, err
	}

	return v.AsComposite()
}

// Items returns the item list stored under field n.
func (f *Fields) Items(n int) ([]*Fields, error) {
	v, err := f.require(n)
	if err != nil {
		return nil, err
	}

	return v.AsItems()
}
