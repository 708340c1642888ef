// Package errs defines the error values returned by the ifsf packages.
//
// Callers match errors with errors.Is against the sentinels below. Field level
// failures are additionally wrapped in a *FieldError carrying the field path,
// the byte offset and the raw bytes seen, which can be extracted with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrOverflow is returned when a value needs more digits or bytes than the field width allows.
	ErrOverflow = errors.New("value overflows field width")
	// ErrFormat is returned for malformed wire data or values: a non-digit where a digit
	// is required, a non-printable text byte, a malformed decimal, a missing mandatory
	// field or unconsumed trailing bytes.
	ErrFormat = errors.New("format error")
	// ErrBounds is returned when a read goes beyond the written data, or the read
	// phase was never started.
	ErrBounds = errors.New("read out of bounds")
	// ErrCrossSegment is returned when a raw byte read straddles a segment boundary.
	ErrCrossSegment = errors.New("raw read crosses segment boundary")
	// ErrUnsupportedFormat is returned when a field kind is not valid for the value's type.
	ErrUnsupportedFormat = errors.New("unsupported format for value")
)

// Schema errors.
var (
	ErrDuplicateField     = errors.New("duplicate field number")
	ErrUnregisteredField  = errors.New("field not registered in schema")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Buffer errors.
var (
	// ErrBufferState is returned when a buffer operation is not valid in its current
	// state, e.g. writing after the read phase has begun or using a released buffer.
	ErrBufferState = errors.New("invalid buffer state")
)

// Capture archive errors.
var (
	ErrInvalidCapture   = errors.New("invalid capture archive")
	ErrInvalidMagic     = errors.New("invalid capture magic number")
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
)

// FieldError attaches diagnostic context to a field level failure.
//
// Path identifies the field inside the message, e.g. "48.4" for sub-field 4 of
// DE48 or "63.64[1].5" for item field 5 of the second DE63 item. Offset is the
// cursor position where the failing field started and Raw holds the bytes seen,
// when known.
type FieldError struct {
	Path   string
	Offset int
	Raw    []byte
	Err    error
}

// Error implements error.
func (e *FieldError) Error() string {
	if len(e.Raw) > 0 {
		return fmt.Sprintf("field %s at offset %d (raw %q): %v", e.Path, e.Offset, e.Raw, e.Err)
	}

	return fmt.Sprintf("field %s at offset %d: %v", e.Path, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// WrapField wraps err with field context. A nil err returns nil, and an err that
// already carries a FieldError is returned unchanged so the innermost path wins.
func WrapField(path string, offset int, raw []byte, err error) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}

	return &FieldError{Path: path, Offset: offset, Raw: raw, Err: err}
}
