package ifsf

import (
	"testing"
	"time"

	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var purchaseTime = time.Date(2025, 7, 23, 22, 13, 0, 0, time.UTC)

func newTestAssembler(t *testing.T, now time.Time) *message.Assembler {
	t.Helper()

	a, err := message.NewAssembler(
		message.WithLocation(time.UTC),
		message.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	return a
}

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

func testPurchaseRequest() *PurchaseRequest {
	methodology := 13

	return &PurchaseRequest{
		PAN:              "7801310000009999490",
		ProcessingCode:   0,
		Amount:           decimal.RequireFromString("413.57"),
		TransmissionTime: purchaseTime,
		STAN:             22,
		LocalTime:        purchaseTime,
		POSDataCode:      "B0010160014C",
		FunctionCode:     200,
		BusinessCode:     5541,
		AcquirerID:       "280131",
		TerminalID:       "24001",
		LanguageCode:     "RU",
		BatchSequence:    123456,
		PINEncryption:    &methodology,
		VATPercentages:   `0\0.00`,
		CurrencyCode:     643,
		PINData:          []byte{0x75, 0x3c, 0x77, 0xc4, 0x89, 0x3c, 0x23, 0x78},
		SecurityControl:  []byte{0x01},
		Products: ProductData{
			ServiceLevel: ServiceLevelFull,
			FormatID:     "0",
			Items: []SaleItem{{
				PaymentType:   "5",
				UnitOfMeasure: "L",
				VATCode:       0,
				ProductCode:   "12",
				Quantity:      decimal.RequireFromString("20.125"),
				UnitPrice:     decimal.RequireFromString("20.55"),
				Amount:        decimal.RequireFromString("413.57"),
			}},
		},
	}
}

func expectedPurchaseFrame() []byte {
	return join(
		[]byte("0193"),
		[]byte("1200"),
		[]byte{0x72, 0x30, 0x05, 0x41, 0x00, 0x81, 0x98, 0x02},
		[]byte("19"+"7801310000009999490"),
		[]byte("000000"),
		[]byte("000000041357"),
		[]byte("0723221300"),
		[]byte("000022"),
		[]byte("250723221300"),
		[]byte("B0010160014C"),
		[]byte("200"),
		[]byte("5541"),
		[]byte("06280131"),
		[]byte("24001   "),
		[]byte("030"),
		[]byte{0x30, 0x04, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		[]byte("RU"+"0000123456"+"13"+"06"+`0\0.00`),
		[]byte("643"),
		[]byte{0x75, 0x3c, 0x77, 0xc4, 0x89, 0x3c, 0x23, 0x78},
		[]byte("01"),
		[]byte{0x01},
		[]byte("029"+`F0105L012\20.125\20.55\413.57`),
	)
}

// captured from a live host
var (
	capturedNetworkResponse = join(
		[]byte("1810"),
		[]byte{0x02, 0x20, 0x00, 0x01, 0x02, 0x00, 0x00, 0x00},
		[]byte("0609194505"+"000001"+"06280131"+"800"),
	)

	capturedCardResponse = join(
		[]byte("1110"),
		[]byte{0x22, 0x30, 0x00, 0x01, 0x0E, 0x90, 0x00, 0x00},
		[]byte("350000"+"0614134337"+"000001"+"250614164337"+"06280131"+"000001568759"+"568759"+"000"+"24001   "),
		[]byte("014"),
		[]byte{0x70, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		[]byte("1"+"020"+"32"),
	)
)

// ==============================================================================
// Purchase
// ==============================================================================

func TestEncode_PurchaseRequestFrame(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)

	frame, err := Encode(a, testPurchaseRequest())
	require.NoError(t, err)
	require.Equal(t, expectedPurchaseFrame(), frame)
}

func TestParseFrame_PurchaseRequest(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)

	msg, err := ParseFrame(a, expectedPurchaseFrame())
	require.NoError(t, err)

	got, ok := msg.(*PurchaseRequest)
	require.True(t, ok)
	require.Equal(t, "7801310000009999490", got.PAN)
	require.True(t, got.Amount.Equal(decimal.RequireFromString("413.57")))
	require.Equal(t, 22, got.STAN)
	require.True(t, got.TransmissionTime.Equal(purchaseTime))
	require.True(t, got.LocalTime.Equal(purchaseTime))
	require.NotNil(t, got.PINEncryption)
	require.Equal(t, 13, *got.PINEncryption)
	require.Equal(t, `0\0.00`, got.VATPercentages)
	require.Equal(t, ServiceLevelFull, got.Products.ServiceLevel)
	require.Len(t, got.Products.Items, 1)
	require.Equal(t, "12", got.Products.Items[0].ProductCode)
	require.True(t, got.Products.Items[0].Quantity.Equal(decimal.RequireFromString("20.125")))
	require.True(t, got.Products.Total().Equal(got.Amount))

	want, err := testPurchaseRequest().Fields()
	require.NoError(t, err)
	gotFields, err := got.Fields()
	require.NoError(t, err)
	require.True(t, want.Equal(gotFields), "want %s\ngot  %s", want, gotFields)
}

func TestPurchaseRequest_Defaults(t *testing.T) {
	req := testPurchaseRequest()
	req.FunctionCode = 0
	req.BusinessCode = 0
	req.LanguageCode = ""
	req.PINData = nil
	req.PINEncryption = nil
	req.PAN = ""

	f, err := req.Fields()
	require.NoError(t, err)
	require.False(t, f.Has(FieldPAN))
	require.False(t, f.Has(FieldPINData))

	fc, err := f.Int(FieldFunctionCode)
	require.NoError(t, err)
	require.Equal(t, int64(FunctionPurchase), fc)
	bc, err := f.Int(FieldBusinessCode)
	require.NoError(t, err)
	require.Equal(t, int64(DefaultBusinessCode), bc)

	control, err := f.Composite(FieldMessageControl)
	require.NoError(t, err)
	lang, err := control.Text(SubFieldLanguageCode)
	require.NoError(t, err)
	require.Equal(t, DefaultLanguageCode, lang)
	require.False(t, control.Has(SubFieldPINEncryption))

	a := newTestAssembler(t, purchaseTime)
	frame, err := Encode(a, req)
	require.NoError(t, err)

	msg, err := ParseFrame(a, frame)
	require.NoError(t, err)
	got := msg.(*PurchaseRequest)
	require.Empty(t, got.PAN)
	require.Nil(t, got.PINData)
	require.Nil(t, got.PINEncryption)
}

func TestPurchaseResponse_RoundTrip(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)
	original := decimal.RequireFromString("500.00")
	rrn := int64(1568760)

	resp := &PurchaseResponse{
		Amount:             decimal.RequireFromString("413.57"),
		TransmissionTime:   purchaseTime,
		STAN:               22,
		LocalTime:          purchaseTime,
		OriginalAmounts:    &original,
		AcquirerID:         "280131",
		RetrievalReference: &rrn,
		ApprovalCode:       "568760",
		ActionCode:         ActionPartiallyApproved,
		TerminalID:         "24001",
		BatchSequence:      123456,
		CurrencyCode:       "643",
	}
	frame, err := Encode(a, resp)
	require.NoError(t, err)

	msg, err := ParseFrame(a, frame)
	require.NoError(t, err)
	got, ok := msg.(*PurchaseResponse)
	require.True(t, ok)
	require.True(t, got.Approved())
	require.NotNil(t, got.OriginalAmounts)
	require.True(t, got.OriginalAmounts.Equal(original))
	require.Equal(t, rrn, *got.RetrievalReference)
	require.Equal(t, "568760", got.ApprovalCode)
	require.Empty(t, got.CardAcceptorID)
	require.Empty(t, got.TransportData)
	require.Equal(t, int64(123456), got.BatchSequence)

	resp.OriginalAmounts = nil
	resp.RetrievalReference = nil
	resp.ApprovalCode = ""
	resp.ActionCode = ActionDoNotHonour
	frame, err = Encode(a, resp)
	require.NoError(t, err)
	msg, err = ParseFrame(a, frame)
	require.NoError(t, err)
	got = msg.(*PurchaseResponse)
	require.False(t, got.Approved())
	require.Nil(t, got.OriginalAmounts)
	require.Nil(t, got.RetrievalReference)
}

// ==============================================================================
// Captured responses
// ==============================================================================

func TestParse_CapturedNetworkResponse(t *testing.T) {
	a := newTestAssembler(t, time.Date(2025, 6, 9, 19, 45, 10, 0, time.UTC))

	msg, err := Parse(a, capturedNetworkResponse)
	require.NoError(t, err)

	got, ok := msg.(*NetworkManagementResponse)
	require.True(t, ok)
	require.True(t, got.TransmissionTime.Equal(time.Date(2025, 6, 9, 19, 45, 5, 0, time.UTC)))
	require.Equal(t, 1, got.STAN)
	require.Equal(t, "280131", got.AcquirerID)
	require.Equal(t, ActionNetworkAccepted, got.ActionCode)
	require.True(t, got.Approved())

	f, err := got.Fields()
	require.NoError(t, err)
	body, err := message.SplitFrame(mustEncode(t, a, got))
	require.NoError(t, err)
	require.Equal(t, capturedNetworkResponse, body)
	require.Equal(t, 4, f.Len())
}

func TestParse_CapturedCardResponse(t *testing.T) {
	a := newTestAssembler(t, time.Date(2025, 6, 14, 16, 43, 40, 0, time.UTC))

	msg, err := Parse(a, capturedCardResponse)
	require.NoError(t, err)

	got, ok := msg.(*CardInformationResponse)
	require.True(t, ok)
	require.Equal(t, 350000, got.ProcessingCode)
	require.True(t, got.TransmissionTime.Equal(time.Date(2025, 6, 14, 13, 43, 37, 0, time.UTC)))
	require.Equal(t, 1, got.STAN)
	require.True(t, got.LocalTime.Equal(time.Date(2025, 6, 14, 16, 43, 37, 0, time.UTC)))
	require.Equal(t, "280131", got.AcquirerID)
	require.Equal(t, int64(1568759), got.RetrievalReference)
	require.Equal(t, "568759", got.ApprovalCode)
	require.True(t, got.Approved())
	require.Equal(t, "24001", got.TerminalID)
	require.Empty(t, got.CardAcceptorID)
	require.Equal(t, CardDetails{PINProtection: 1, Type: CardTypeFleet, AllowedPaymentTypes: 32}, got.Card)
	require.Equal(t, "Fleet", got.Card.Type.String())

	body, err := message.SplitFrame(mustEncode(t, a, got))
	require.NoError(t, err)
	require.Equal(t, capturedCardResponse, body)
}

func mustEncode(t *testing.T, a *message.Assembler, m Message) []byte {
	t.Helper()

	frame, err := Encode(a, m)
	require.NoError(t, err)

	return frame
}

// ==============================================================================
// Requests
// ==============================================================================

func TestNetworkManagementRequest_RoundTrip(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)
	req := &NetworkManagementRequest{TransmissionTime: purchaseTime, STAN: 7, AcquirerID: "280131"}

	frame, err := Encode(a, req)
	require.NoError(t, err)
	require.Equal(t, []byte("0039"), frame[:4])

	got := &NetworkManagementRequest{}
	body, err := message.SplitFrame(frame)
	require.NoError(t, err)
	require.NoError(t, Decode(a, body, got))
	require.Equal(t, FunctionNetworkManagement, got.FunctionCode)
	require.Equal(t, 7, got.STAN)
}

func TestCardInformationRequest_Defaults(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)
	req := &CardInformationRequest{
		PAN:              "7801310000009999490",
		TransmissionTime: purchaseTime,
		STAN:             51,
		LocalTime:        purchaseTime,
		POSDataCode:      "B0010160014C",
		AcquirerID:       "280131",
		TerminalID:       "24001",
	}

	msg, err := ParseFrame(a, mustEncode(t, a, req))
	require.NoError(t, err)
	got, ok := msg.(*CardInformationRequest)
	require.True(t, ok)
	require.Equal(t, DefaultCardInformationProcessingCode, got.ProcessingCode)
	require.Equal(t, FunctionCardInformation, got.FunctionCode)
	require.Equal(t, DefaultBusinessCode, got.BusinessCode)
	require.Equal(t, DefaultLanguageCode, got.LanguageCode)
	require.Equal(t, req.PAN, got.PAN)
}

func TestRequests_DefaultTimestamps(t *testing.T) {
	clock = func() time.Time { return purchaseTime }
	t.Cleanup(func() { clock = time.Now })

	purchase := testPurchaseRequest()
	purchase.TransmissionTime = time.Time{}
	purchase.LocalTime = time.Time{}

	requests := []Message{
		&NetworkManagementRequest{STAN: 1, AcquirerID: "280131"},
		&CardInformationRequest{
			PAN:         "7801310000009999490",
			STAN:        51,
			POSDataCode: "B0010160014C",
			AcquirerID:  "280131",
			TerminalID:  "24001",
		},
		purchase,
	}
	for _, req := range requests {
		t.Run(req.MTI(), func(t *testing.T) {
			f, err := req.Fields()
			require.NoError(t, err)

			sent, err := f.Time(FieldTransmissionTime)
			require.NoError(t, err)
			require.True(t, purchaseTime.Equal(sent))
			require.Equal(t, time.UTC, sent.Location())

			if _, ok := req.Descriptor().Field(FieldLocalTime); ok {
				local, err := f.Time(FieldLocalTime)
				require.NoError(t, err)
				require.True(t, purchaseTime.Equal(local))
				require.Equal(t, time.Local, local.Location())
			}

			frame := string(mustEncode(t, newTestAssembler(t, purchaseTime), req))
			require.Contains(t, frame, "0723221300")
			require.NotContains(t, frame, "0101000000")
		})
	}
}

func TestCardInformationResponse_Expiration(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)
	exp := time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)
	resp := &CardInformationResponse{
		ProcessingCode:   DefaultCardInformationProcessingCode,
		TransmissionTime: purchaseTime,
		LocalTime:        purchaseTime,
		AcquirerID:       "280131",
		ApprovalCode:     "000001",
		TerminalID:       "24001",
		CardAcceptorID:   "MERCHANT-1",
		TransportData:    "opaque",
		Card:             CardDetails{Type: CardTypeGift, Expiration: &exp},
	}

	msg, err := ParseFrame(a, mustEncode(t, a, resp))
	require.NoError(t, err)
	got := msg.(*CardInformationResponse)
	require.NotNil(t, got.Card.Expiration)
	require.True(t, got.Card.Expiration.Equal(exp))
	require.Equal(t, "MERCHANT-1", got.CardAcceptorID)
	require.Equal(t, "opaque", got.TransportData)
}

// ==============================================================================
// Dispatch
// ==============================================================================

func TestNew(t *testing.T) {
	for _, mti := range Registry().MTIs() {
		m, err := New(mti)
		require.NoError(t, err)
		require.Equal(t, mti, m.MTI())
		require.Equal(t, mti, m.Descriptor().MTI)
	}

	_, err := New("1420")
	require.ErrorIs(t, err, errs.ErrUnknownMessageType)
	require.Equal(t, 6, Registry().Len())
}

func TestParse_Errors(t *testing.T) {
	a := newTestAssembler(t, purchaseTime)

	_, err := Parse(a, []byte("14"))
	require.ErrorIs(t, err, errs.ErrBounds)

	_, err = Parse(a, []byte("1420"+"\x00\x00\x00\x00\x00\x00\x00\x00"))
	require.ErrorIs(t, err, errs.ErrUnknownMessageType)

	_, err = Parse(a, capturedNetworkResponse[:len(capturedNetworkResponse)-1])
	require.ErrorIs(t, err, errs.ErrBounds)

	_, err = ParseFrame(a, []byte("0004180"))
	require.Error(t, err)
}

func TestResponseMTI(t *testing.T) {
	tests := []struct {
		name string
		mti  string
		want string
		err  error
	}{
		{"purchase", "1200", "1210", nil},
		{"card", "1100", "1110", nil},
		{"network", "1800", "1810", nil},
		{"response", "1210", "", errs.ErrUnknownMessageType},
		{"malformed", "12a0", "", errs.ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResponseMTI(tt.mti)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
