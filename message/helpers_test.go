package message

import (
	"testing"
	"time"

	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testClock = time.Date(2025, 7, 23, 22, 13, 0, 0, time.UTC)

var (
	testItem = schema.NewItemTemplate('/',
		schema.NewField(1, "PaymentType", format.FixedText, 1),
		schema.NewField(2, "UnitOfMeasure", format.FixedText, 1),
		schema.NewField(3, "VatCode", format.FixedNumeric, 1),
		schema.NewField(4, "ProductCode", format.FixedTextNoPad, 17),
		schema.NewField(5, "Quantity", format.FreeDecimal3, 9, schema.Before('\\')),
		schema.NewField(6, "UnitPrice", format.FreeDecimal2, 9, schema.Before('\\')),
		schema.NewField(7, "Amount", format.FreeDecimal2, 12, schema.Before('\\')),
	)

	testPurchase = schema.MustNewMessage("1200", "Purchase",
		schema.NewField(3, "ProcessingCode", format.FixedNumeric, 6),
		schema.NewField(4, "Amount", format.ScaledDecimal, 12),
		schema.NewField(7, "TransmissionTime", format.ShortTimestamp, 10),
		schema.NewField(12, "LocalTime", format.LongTimestamp, 12),
		schema.NewField(32, "AcquirerID", format.LLVar, 99),
		schema.NewField(41, "TerminalID", format.FixedText, 8),
		schema.NewField(42, "MerchantID", format.FixedText, 15, schema.Optional()),
		schema.NewField(48, "AdditionalData", format.BitmapComposite, 999, schema.Nested(
			schema.NewBitmapComposite("AdditionalData", 3,
				schema.NewField(3, "Language", format.FixedText, 2),
				schema.NewField(4, "BatchNumber", format.FixedNumeric, 10),
				schema.NewField(14, "PinTries", format.FixedNumeric, 2, schema.Optional()),
			),
		)),
		schema.NewField(52, "PIN", format.RawBytes, 8, schema.Optional()),
		schema.NewField(53, "SecurityInfo", format.LengthPrefixedBytes, 48),
		schema.NewField(63, "ProductData", format.DelimitedComposite, 999, schema.Nested(
			schema.NewRepeatingGroup("ProductData", 3, testItem,
				schema.NewField(1, "ServiceLevel", format.FixedText, 1),
				schema.NewField(2, "ItemCount", format.FixedNumeric, 2),
				schema.NewField(3, "FormatID", format.FixedText, 1),
			).CountedBy(2),
		)),
	)

	testPing = schema.MustNewMessage("1800", "NetworkManagementRequest",
		schema.NewField(7, "TransmissionTime", format.ShortTimestamp, 10),
		schema.NewField(11, "STAN", format.FixedNumeric, 6),
		schema.NewField(24, "FunctionCode", format.FixedNumeric, 3),
		schema.NewField(32, "AcquirerID", format.LLVar, 99),
	)
)

func newTestAssembler(t *testing.T, opts ...AssemblerOption) *Assembler {
	t.Helper()

	base := []AssemblerOption{
		WithLocation(time.UTC),
		WithClock(func() time.Time { return testClock }),
	}
	a, err := NewAssembler(append(base, opts...)...)
	require.NoError(t, err)

	return a
}

func dec(s string) Value {
	return Decimal(decimal.RequireFromString(s))
}

func testProductItem(code, qty, price, amount string) *Fields {
	return NewFields().
		Set(1, Text("5")).
		Set(2, Text("L")).
		Set(3, Int(0)).
		Set(4, Text(code)).
		Set(5, dec(qty)).
		Set(6, dec(price)).
		Set(7, dec(amount))
}

func testPurchaseFields(items ...*Fields) *Fields {
	return NewFields().
		Set(3, Int(0)).
		Set(4, dec("413.57")).
		Set(7, Time(testClock)).
		Set(12, Time(testClock)).
		Set(32, Text("280131")).
		Set(41, Text("24001")).
		Set(48, Composite(NewFields().
			Set(3, Text("RU")).
			Set(4, Int(123456)))).
		Set(52, Bytes([]byte{0x75, 0x3c, 0x77, 0xc4, 0x89, 0x3c, 0x23, 0x78})).
		Set(53, Bytes([]byte{0x01})).
		Set(63, Composite(NewFields().
			Set(1, Text("F")).
			Set(3, Text("0")).
			Set(64, Items(items...))))
}

func testPingFields() *Fields {
	return NewFields().
		Set(7, Time(time.Date(2025, 6, 9, 19, 45, 5, 0, time.UTC))).
		Set(11, Int(1)).
		Set(24, Int(800)).
		Set(32, Text("280131"))
}
