package encoding

import (
	"fmt"
	"time"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/errs"
)

const (
	ShortTimestampLength = 10 // MMDDhhmmss
	LongTimestampLength  = 12 // YYMMDDhhmmss
)

func writePairs(w buffer.Writer, parts ...int) error {
	var scratch [LongTimestampLength]byte
	out := scratch[:0]
	for _, p := range parts {
		out = append(out, byte('0'+p/10), byte('0'+p%10))
	}

	return writeFull(w, out)
}

func readPairs(c buffer.Cursor, n int) ([]int, error) {
	digits, err := readDigitString(c, n*2)
	if err != nil {
		return nil, err
	}

	parts := make([]int, n)
	for i := range parts {
		parts[i] = int(digits[2*i]-'0')*10 + int(digits[2*i+1]-'0')
	}

	return parts, nil
}

// WriteShortTimestamp packs month, day, hour, minute and second of t as 10 digits.
// The year is not transmitted.
func WriteShortTimestamp(w buffer.Writer, t time.Time) error {
	return writePairs(w, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ReadShortTimestamp unpacks MMDDhhmmss. The year is supplied by the caller,
// normally the current year of the decoding clock.
func ReadShortTimestamp(c buffer.Cursor, year int, loc *time.Location) (time.Time, error) {
	p, err := readPairs(c, 5)
	if err != nil {
		return time.Time{}, err
	}

	return makeTime(year, p[0], p[1], p[2], p[3], p[4], loc)
}

// WriteLongTimestamp packs t as YYMMDDhhmmss with YY = year mod 100.
func WriteLongTimestamp(w buffer.Writer, t time.Time) error {
	return writePairs(w, t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ReadLongTimestamp unpacks YYMMDDhhmmss into a time in year 2000+YY.
func ReadLongTimestamp(c buffer.Cursor, loc *time.Location) (time.Time, error) {
	p, err := readPairs(c, 6)
	if err != nil {
		return time.Time{}, err
	}

	return makeTime(2000+p[0], p[1], p[2], p[3], p[4], p[5], loc)
}

func makeTime(year, month, day, hour, minute, sec int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
	if month < 1 || month > 12 || t.Day() != day || t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		return time.Time{}, fmt.Errorf("%w: invalid date-time %04d-%02d-%02d %02d:%02d:%02d",
			errs.ErrFormat, year, month, day, hour, minute, sec)
	}

	return t, nil
}
