// Package encoding implements the IFSF field codec: the encode and decode rule of
// every wire format kind, and the presence bitmap.
//
// Encoders write into a buffer.Writer and decoders read from a buffer.Cursor.
// Numeric and text values are moved byte by byte through TryGetAvailable and
// ReadByte, so a field is free to straddle segment boundaries. No encoder buffers
// a whole field before writing it.
//
// # Formats
//
//	Kind                 Example (value -> wire)
//	FixedNumeric(6)      22          -> "000022"
//	ScaledDecimal(12)    413.57      -> "000000041357"
//	LLVar(19)            "78013..."  -> "19" + "78013..."
//	FixedText(8)         "24001"     -> "24001   "
//	ShortTimestamp       07-23 22:13 -> "0723221300"
//	LongTimestamp        2025-07-23  -> "250723221300"
//	FreeDecimal3(9)      20          -> "20"
//	RawBytes(8)          PIN block   -> 8 bytes verbatim
//	LengthPrefixed(48)   [0x01]      -> "01" + 0x01
//
// Every failure wraps one of the errs sentinels: errs.ErrOverflow when a value
// does not fit its width, errs.ErrFormat for malformed bytes or values and
// errs.ErrUnsupportedFormat for values the kind cannot represent.
package encoding
