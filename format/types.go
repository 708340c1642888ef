package format

type (
	Kind            uint8
	CompressionType uint8
)

const (
	FixedNumeric        Kind = 0x01 // FixedNumeric is a zero-padded decimal integer of fixed width.
	ScaledDecimal       Kind = 0x02 // ScaledDecimal is a decimal with two implied fraction digits.
	LVar                Kind = 0x03 // LVar is printable text with a 1-digit length prefix.
	LLVar               Kind = 0x04 // LLVar is printable text with a 2-digit length prefix.
	LLLVar              Kind = 0x05 // LLLVar is printable text with a 3-digit length prefix.
	FixedText           Kind = 0x06 // FixedText is space-padded printable text of fixed width.
	FixedTextNoPad      Kind = 0x07 // FixedTextNoPad is unpadded, unprefixed text bounded by the caller.
	ShortTimestamp      Kind = 0x08 // ShortTimestamp is MMDDhhmmss.
	LongTimestamp       Kind = 0x09 // LongTimestamp is YYMMDDhhmmss.
	FreeDecimal2        Kind = 0x0A // FreeDecimal2 is a minimal ASCII decimal with up to 2 fraction digits.
	FreeDecimal3        Kind = 0x0B // FreeDecimal3 is a minimal ASCII decimal with up to 3 fraction digits.
	RawBytes            Kind = 0x0C // RawBytes is a fixed-width verbatim byte run.
	LengthPrefixedBytes Kind = 0x0D // LengthPrefixedBytes is raw bytes with a 2-digit length prefix.
	BitmapComposite     Kind = 0x0E // BitmapComposite is a prefixed sub-message with its own bitmap.
	DelimitedComposite  Kind = 0x0F // DelimitedComposite is a prefixed repeating group joined by delimiters.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (k Kind) String() string {
	switch k {
	case FixedNumeric:
		return "FixedNumeric"
	case ScaledDecimal:
		return "ScaledDecimal"
	case LVar:
		return "LVar"
	case LLVar:
		return "LLVar"
	case LLLVar:
		return "LLLVar"
	case FixedText:
		return "FixedText"
	case FixedTextNoPad:
		return "FixedTextNoPad"
	case ShortTimestamp:
		return "ShortTimestamp"
	case LongTimestamp:
		return "LongTimestamp"
	case FreeDecimal2:
		return "FreeDecimal2"
	case FreeDecimal3:
		return "FreeDecimal3"
	case RawBytes:
		return "RawBytes"
	case LengthPrefixedBytes:
		return "LengthPrefixedBytes"
	case BitmapComposite:
		return "BitmapComposite"
	case DelimitedComposite:
		return "DelimitedComposite"
	default:
		return "Unknown"
	}
}

// PrefixDigits returns the width of the decimal length prefix written before the
// field content, or 0 for kinds without a prefix. Composite kinds report 0 since
// their prefix width is carried by the composite descriptor.
func (k Kind) PrefixDigits() int {
	switch k {
	case LVar:
		return 1
	case LLVar, LengthPrefixedBytes:
		return 2
	case LLLVar:
		return 3
	default:
		return 0
	}
}

// Scale returns the number of fraction digits of decimal kinds, 0 otherwise.
func (k Kind) Scale() int {
	switch k {
	case ScaledDecimal, FreeDecimal2:
		return 2
	case FreeDecimal3:
		return 3
	default:
		return 0
	}
}

// IsComposite reports whether the kind frames nested fields.
func (k Kind) IsComposite() bool {
	return k == BitmapComposite || k == DelimitedComposite
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a configuration name ("none", "zstd", "s2", "lz4") to a
// CompressionType. Unknown names return false.
func ParseCompression(name string) (CompressionType, bool) {
	switch name {
	case "none", "None", "":
		return CompressionNone, true
	case "zstd", "Zstd":
		return CompressionZstd, true
	case "s2", "S2":
		return CompressionS2, true
	case "lz4", "LZ4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
