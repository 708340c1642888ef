package ifsf

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arloliu/ifsf/message"
	"github.com/shopspring/decimal"
)

// fieldReader pulls typed values out of decoded fields. The first failure is
// kept and every later call becomes a no-op, so SetFields can read a whole
// message and check the error once.
type fieldReader struct {
	f    *message.Fields
	path string
	err  *error
}

func newFieldReader(f *message.Fields) *fieldReader {
	var err error

	return &fieldReader{f: f, err: &err}
}

func (r *fieldReader) failed() bool {
	return *r.err != nil
}

func (r *fieldReader) fail(n int, err error) {
	if *r.err == nil {
		*r.err = fmt.Errorf("field %s: %w", r.fieldPath(n), err)
	}
}

func (r *fieldReader) fieldPath(n int) string {
	if r.path == "" {
		return strconv.Itoa(n)
	}

	return r.path + "." + strconv.Itoa(n)
}

func (r *fieldReader) Err() error {
	return *r.err
}

func (r *fieldReader) int(n int) int {
	if r.failed() {
		return 0
	}
	v, err := r.f.Int(n)
	if err != nil {
		r.fail(n, err)
	}

	return int(v)
}

func (r *fieldReader) int64(n int) int64 {
	if r.failed() {
		return 0
	}
	v, err := r.f.Int(n)
	if err != nil {
		r.fail(n, err)
	}

	return v
}

func (r *fieldReader) optInt64(n int) *int64 {
	if r.failed() || !r.f.Has(n) {
		return nil
	}
	v := r.int64(n)

	return &v
}

func (r *fieldReader) optInt(n int) *int {
	if r.failed() || !r.f.Has(n) {
		return nil
	}
	v := r.int(n)

	return &v
}

func (r *fieldReader) decimal(n int) decimal.Decimal {
	if r.failed() {
		return decimal.Zero
	}
	v, err := r.f.Decimal(n)
	if err != nil {
		r.fail(n, err)
	}

	return v
}

func (r *fieldReader) optDecimal(n int) *decimal.Decimal {
	if r.failed() || !r.f.Has(n) {
		return nil
	}
	v := r.decimal(n)

	return &v
}

func (r *fieldReader) text(n int) string {
	if r.failed() {
		return ""
	}
	v, err := r.f.Text(n)
	if err != nil {
		r.fail(n, err)
	}

	return v
}

// optText returns "" for an absent field.
func (r *fieldReader) optText(n int) string {
	if r.failed() || !r.f.Has(n) {
		return ""
	}

	return r.text(n)
}

func (r *fieldReader) time(n int) time.Time {
	if r.failed() {
		return time.Time{}
	}
	v, err := r.f.Time(n)
	if err != nil {
		r.fail(n, err)
	}

	return v
}

func (r *fieldReader) optTime(n int) *time.Time {
	if r.failed() || !r.f.Has(n) {
		return nil
	}
	v := r.time(n)

	return &v
}

func (r *fieldReader) bytes(n int) []byte {
	if r.failed() {
		return nil
	}
	v, err := r.f.Bytes(n)
	if err != nil {
		r.fail(n, err)
	}

	return v
}

// optBytes returns nil for an absent field.
func (r *fieldReader) optBytes(n int) []byte {
	if r.failed() || !r.f.Has(n) {
		return nil
	}

	return r.bytes(n)
}

// composite returns a reader over composite field n that shares r's error.
func (r *fieldReader) composite(n int) *fieldReader {
	sub := &fieldReader{f: message.NewFields(), path: r.fieldPath(n), err: r.err}
	if r.failed() {
		return sub
	}
	v, err := r.f.Composite(n)
	if err != nil {
		r.fail(n, err)

		return sub
	}
	sub.f = v

	return sub
}

// items returns one reader per repeating group item under field n.
func (r *fieldReader) items(n int) []*fieldReader {
	if r.failed() {
		return nil
	}
	items, err := r.f.Items(n)
	if err != nil {
		r.fail(n, err)

		return nil
	}
	readers := make([]*fieldReader, len(items))
	for i, item := range items {
		readers[i] = &fieldReader{f: item, path: fmt.Sprintf("%s[%d]", r.fieldPath(n), i), err: r.err}
	}

	return readers
}

func setOptText(f *message.Fields, n int, s string) {
	if s != "" {
		f.Set(n, message.Text(s))
	}
}

func setOptBytes(f *message.Fields, n int, b []byte) {
	if b != nil {
		f.Set(n, message.Bytes(b))
	}
}

func setOptInt64(f *message.Fields, n int, v *int64) {
	if v != nil {
		f.Set(n, message.Int(*v))
	}
}

func setOptInt(f *message.Fields, n int, v *int) {
	if v != nil {
		f.Set(n, message.Int(int64(*v)))
	}
}

func setOptDecimal(f *message.Fields, n int, v *decimal.Decimal) {
	if v != nil {
		f.Set(n, message.Decimal(*v))
	}
}

func setOptTime(f *message.Fields, n int, v *time.Time) {
	if v != nil {
		f.Set(n, message.Time(*v))
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}

	return v
}

func orDefaultText(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

// clock supplies default request timestamps.
var clock = time.Now

// orNowUTC fills a zero DE7 transmission time with the current UTC time.
func orNowUTC(t time.Time) time.Time {
	if t.IsZero() {
		return clock().UTC()
	}

	return t
}

// orNowLocal fills a zero DE12 local time with the current local time.
func orNowLocal(t time.Time) time.Time {
	if t.IsZero() {
		return clock().Local()
	}

	return t
}
